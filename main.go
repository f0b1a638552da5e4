// File: parkventure/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkventure/config"
	"parkventure/cron"
	"parkventure/database"
	bookingRepoPkg "parkventure/database/repository/booking"
	cartRepoPkg "parkventure/database/repository/cart"
	pricingRepoPkg "parkventure/database/repository/pricing"
	timeslotRepoPkg "parkventure/database/repository/timeslot"
	"parkventure/handlers"
	"parkventure/routes"
	bookingSvc "parkventure/services/booking"
	cartSvc "parkventure/services/cart"
	paymentSvc "parkventure/services/payment"
	timeslotSvc "parkventure/services/timeslot"
	"parkventure/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitWebhookCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	cartRepo := cartRepoPkg.NewMongoCartRepo()
	pricingRepo := pricingRepoPkg.NewMongoPricingRepo()
	slotRepo := timeslotRepoPkg.NewMongoTimeSlotRepo()

	for name, ensure := range map[string]func() error{
		"bookings":  bookingRepo.EnsureIndexes,
		"carts":     cartRepo.EnsureIndexes,
		"timeslots": slotRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// services.
	slotService := &timeslotSvc.DefaultService{
		Repo:        slotRepo,
		Bookings:    bookingRepo,
		Cache:       utils.GetCacheClient(),
		HorizonDays: config.AppConfig.MaterializeHorizonDays,
		Logger:      logger,
	}

	cartService := &cartSvc.DefaultService{
		Carts:   cartRepo,
		Slots:   slotRepo,
		Pricing: pricingRepo,
		Logger:  logger,
	}

	reaper := cron.NewReaperClient()
	defer reaper.Close()

	bookingService := &bookingSvc.DefaultBookingService{
		Carts:          cartRepo,
		Bookings:       bookingRepo,
		Slots:          slotRepo,
		Gateway:        paymentSvc.NewStripeGateway(logger),
		Reaper:         reaper,
		QREncode:       utils.EncodeQRDataURL,
		EagerInventory: config.DecrementOnCheckout(),
		Currency:       config.AppConfig.Currency,
		SuccessURL:     config.AppConfig.CheckoutSuccessURL,
		CheckoutTTL:    time.Duration(config.AppConfig.CheckoutTTLMinutes) * time.Minute,
		Logger:         logger,
	}

	reconciler := &paymentSvc.Reconciler{
		Bookings:       bookingRepo,
		Verifier:       paymentSvc.NewStripeWebhookVerifier(config.AppConfig.StripeWebhookSecret),
		Dedupe:         &paymentSvc.RedisEventDeduper{Client: utils.GetWebhookCacheClient()},
		EagerInventory: config.DecrementOnCheckout(),
		Logger:         logger,
	}

	// Reap abandoned checkout sessions in the background.
	cron.InitCheckoutReaper(bookingRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Bookings:  handlers.NewBookingHandler(bookingService, logger),
		Carts:     handlers.NewCartHandler(cartService, logger),
		Payments:  handlers.NewPaymentHandler(bookingService, reconciler, logger),
		TimeSlots: handlers.NewTimeSlotHandler(slotService, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
