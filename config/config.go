package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
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
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB       int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB        int    `mapstructure:"REDIS_LOCK_DB"`
	RedisNotifyQueueDB int    `mapstructure:"REDIS_NOTIFY_QUEUE_DB"`

	// Booking workflow.
	Currency        string `mapstructure:"CURRENCY"`
	StripeKey       string `mapstructure:"STRIPE_KEY"`
	SlotHoldMinutes int    `mapstructure:"SLOT_HOLD_MINUTES"`

	// Reminder sweeps.
	Timezone          string `mapstructure:"TIMEZONE"`
	ReminderBatchSize int    `mapstructure:"REMINDER_BATCH_SIZE"`

	// Notification transports.
	SendGridKey             string `mapstructure:"SENDGRID_KEY"`
	SenderEmail             string `mapstructure:"SENDER_EMAIL"`
	SenderName              string `mapstructure:"SENDER_NAME"`
	WhatsAppAPIURL          string `mapstructure:"WHATSAPP_API_URL"`
	WhatsAppPhoneNumberID   string `mapstructure:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAccessToken     string `mapstructure:"WHATSAPP_ACCESS_TOKEN"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	FrontendURL string `mapstructure:"FRONTEND_URL"`
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
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_NOTIFY_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "doctordash")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("SLOT_HOLD_MINUTES", 15)
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("REMINDER_BATCH_SIZE", 100)
	viper.SetDefault("SENDER_EMAIL", "no-reply@doctordash.app")
	viper.SetDefault("SENDER_NAME", "DoctorDash")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ReferenceLocation resolves the fixed timezone all reminder calendar math
// runs in. Falls back to UTC if the configured zone cannot be loaded.
func ReferenceLocation() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("invalid TIMEZONE %q, falling back to UTC", AppConfig.Timezone)
		return time.UTC
	}
	return loc
}
