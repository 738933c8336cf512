package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`
	Env        string        `mapstructure:"ENV"`
	LogLevel   string        `mapstructure:"LOG_LEVEL"`
	LogFile    string        `mapstructure:"LOG_FILE"`

	// Outbound throttle. Zero disables it.
	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Durable local storage (auth token, display currency).
	StorageDriver string `mapstructure:"STORAGE_DRIVER"` // "memory" or "redis"
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisPrefsDB  int    `mapstructure:"REDIS_PREFS_DB"`

	// Storefront behaviour.
	DefaultCurrency     string        `mapstructure:"DEFAULT_CURRENCY"`
	ItemsPerPage        int           `mapstructure:"ITEMS_PER_PAGE"`
	DetailCacheTTL      time.Duration `mapstructure:"DETAIL_CACHE_TTL"`
	AutoConfirmBookings bool          `mapstructure:"AUTO_CONFIRM_BOOKINGS"`
	AuthView            string        `mapstructure:"AUTH_VIEW"`

	// Exchange rates relative to one unit of local currency (INR).
	RateUSD float64 `mapstructure:"RATE_USD"`
	RateEUR float64 `mapstructure:"RATE_EUR"`
}

var AppConfig Config

// LoadConfig reads .env, an optional config.yaml and the environment into AppConfig.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.Normalize()
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("API_TIMEOUT", 15*time.Second)
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_PREFS_DB", 0)
	v.SetDefault("DEFAULT_CURRENCY", "INR")
	v.SetDefault("ITEMS_PER_PAGE", 9)
	v.SetDefault("DETAIL_CACHE_TTL", 5*time.Minute)
	v.SetDefault("AUTO_CONFIRM_BOOKINGS", false)
	v.SetDefault("AUTH_VIEW", "login")
	v.SetDefault("RATE_USD", 0.012)
	v.SetDefault("RATE_EUR", 0.011)
}

// Normalize trims and upper-cases values that are compared verbatim elsewhere.
func (c *Config) Normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.DefaultCurrency))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = 9
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
