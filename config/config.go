package config

import (
	"log"

	"github.com/spf13/viper"
)

// Inventory policies decide when availableTickets is decremented.
const (
	InventoryOnConfirmation = "on_confirmation"
	InventoryOnCheckout     = "on_checkout"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`
	RedisWebhookDB int    `mapstructure:"REDIS_WEBHOOK_DB"`

	// Payment gateway (Stripe).
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	Currency            string `mapstructure:"CURRENCY"`

	// Inventory/booking policy.
	InventoryPolicy        string `mapstructure:"INVENTORY_POLICY"`
	CheckoutTTLMinutes     int    `mapstructure:"CHECKOUT_TTL_MIN"`
	MaterializeHorizonDays int    `mapstructure:"MATERIALIZE_HORIZON_DAYS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("REDIS_WEBHOOK_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "parkventure")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success")
	viper.SetDefault("INVENTORY_POLICY", InventoryOnConfirmation)
	viper.SetDefault("CHECKOUT_TTL_MIN", 30)
	viper.SetDefault("MATERIALIZE_HORIZON_DAYS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if AppConfig.InventoryPolicy != InventoryOnConfirmation && AppConfig.InventoryPolicy != InventoryOnCheckout {
		log.Fatalf("Invalid INVENTORY_POLICY %q", AppConfig.InventoryPolicy)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// DecrementOnCheckout reports whether tickets are reserved eagerly at
// checkout creation instead of on payment confirmation.
func DecrementOnCheckout() bool {
	return AppConfig.InventoryPolicy == InventoryOnCheckout
}
