package config

import (
	"errors"
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
	AdminToken        string `mapstructure:"ADMIN_TOKEN"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration. Cache, change feed and task queue use separate DBs.
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB       int           `mapstructure:"REDIS_CACHE_DB"`
	RedisFeedDB        int           `mapstructure:"REDIS_FEED_DB"`
	RedisQueueDB       int           `mapstructure:"REDIS_QUEUE_DB"`
	ReputationCacheTTL time.Duration `mapstructure:"REPUTATION_CACHE_TTL"`

	// Document storage: "cloudinary" or "firebase".
	StorageBackend      string `mapstructure:"STORAGE_BACKEND"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`
	FirebaseBucket      string `mapstructure:"FIREBASE_BUCKET"`

	// Payouts.
	StripeKey      string `mapstructure:"STRIPE_KEY"`
	PayoutCurrency string `mapstructure:"PAYOUT_CURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "skillbridge")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ADMIN_TOKEN", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_FEED_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("REPUTATION_CACHE_TTL", "10m")
	viper.SetDefault("STORAGE_BACKEND", "firebase")
	viper.SetDefault("FIREBASE_CREDENTIALS", "serviceAccountKey.json")
	viper.SetDefault("FIREBASE_BUCKET", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYOUT_CURRENCY", "usd")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// Validate reports settings the service cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.AdminToken == "" {
		errs = append(errs, errors.New("ADMIN_TOKEN must be set"))
	}
	return errors.Join(errs...)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
