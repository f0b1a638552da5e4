package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"parkventure/config"
	bookingRepo "parkventure/database/repository/booking"
)

const (
	TypeCheckoutExpire = "checkout:expire"
	TypeCheckoutSweep  = "checkout:sweep"
)

type expirePayload struct {
	PaymentID string `json:"paymentId"`
}

// ReaperClient enqueues a delayed expiry task per checkout session. It
// satisfies the booking service's ExpiryScheduler port.
type ReaperClient struct {
	client *asynq.Client
}

func NewReaperClient() *ReaperClient {
	return &ReaperClient{client: asynq.NewClient(queueRedisOpts())}
}

func (r *ReaperClient) ScheduleCheckoutExpiry(ctx context.Context, paymentID string, delay time.Duration) error {
	b, err := json.Marshal(expirePayload{PaymentID: paymentID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeCheckoutExpire, b)
	_, err = r.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	return err
}

func (r *ReaperClient) Close() error {
	return r.client.Close()
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitCheckoutReaper runs the async worker plus a periodic sweep. The
// delayed per-session task is the primary expiry path; the sweep picks
// up sessions whose task was lost (e.g. the enqueue failed).
func InitCheckoutReaper(repo bookingRepo.BookingRepository) {
	srv := asynq.NewServer(
		queueRedisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCheckoutExpire, handleCheckoutExpire(repo))
	mux.HandleFunc(TypeCheckoutSweep, handleCheckoutSweep(repo))

	go func() {
		log.Println("[CheckoutReaper] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[CheckoutReaper] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[CheckoutReaper] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runSweepScheduler()
}

// runSweepScheduler enqueues the sweep task on a fixed interval.
func runSweepScheduler() {
	scheduler := asynq.NewScheduler(queueRedisOpts(), &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypeCheckoutSweep, nil)); err != nil {
		log.Printf("[CheckoutReaper] failed to register sweep: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[CheckoutReaper] sweep scheduler stopped: %v", err)
	}
}

func handleCheckoutExpire(repo bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p expirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CheckoutReaper] invalid payload: %v", err)
			return err
		}
		return expireSession(ctx, repo, p.PaymentID)
	}
}

func handleCheckoutSweep(repo bookingRepo.BookingRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		cutoff := time.Now().Add(-checkoutTTL())
		ids, err := repo.StalePaymentIDs(ctx, cutoff)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := expireSession(ctx, repo, id); err != nil {
				log.Printf("[CheckoutReaper] sweep failed for payment %s: %v", id, err)
			}
		}
		if len(ids) > 0 {
			log.Printf("[CheckoutReaper] swept %d stale checkout session(s)", len(ids))
		}
		return nil
	}
}

// expireSession marks a still-pending session failed. The settlement is
// guarded on pending status, so a webhook that landed first wins and
// the expiry becomes a no-op.
func expireSession(ctx context.Context, repo bookingRepo.BookingRepository, paymentID string) error {
	res, err := repo.SettlePayment(ctx, paymentID, bookingRepo.SettleOptions{
		Paid:             false,
		RestoreInventory: config.DecrementOnCheckout(),
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}
	if res.AlreadySettled {
		return nil
	}
	log.Printf("[CheckoutReaper] expired checkout session %s", paymentID)
	return nil
}

func checkoutTTL() time.Duration {
	return time.Duration(config.AppConfig.CheckoutTTLMinutes) * time.Minute
}
