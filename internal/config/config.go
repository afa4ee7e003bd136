package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Store     StoreConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Scheduler SchedulerConfig
	Events    EventsConfig
	Log       LogConfig
}

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	Debug          bool
	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	// SeedTables creates this many dining tables on an empty store
	SeedTables int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// StoreConfig selects the persistence engine: "postgres" or "memory"
type StoreConfig struct {
	Driver       string
	SnapshotPath string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
	Issuer      string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// PrinterConfig describes the kitchen ticket printer
type PrinterConfig struct {
	Type       string // usb, network or none
	DevicePath string
	Address    string
	PaperWidth int
	AutoPrint  bool
	Title      string
}

type SchedulerConfig struct {
	ClearServedSpec      string
	IdempotencyCleanSpec string
}

type EventsConfig struct {
	SubscriberBuffer int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_REQUEST_TIMEOUT", "10s")
	viper.SetDefault("APP_IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("APP_SEED_TABLES", 0)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Ho_Chi_Minh")
	viper.SetDefault("STORE_DRIVER", "postgres")
	viper.SetDefault("STORE_SNAPSHOT_PATH", "")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 720)
	viper.SetDefault("JWT_ISSUER", "pos-api")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_DEVICE_PATH", "/dev/usb/lp0")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("PRINTER_PAPER_WIDTH", 48)
	viper.SetDefault("PRINTER_AUTO_PRINT", true)
	viper.SetDefault("PRINTER_TITLE", "KITCHEN")
	viper.SetDefault("SCHEDULER_CLEAR_SERVED", "0 4 * * *")
	viper.SetDefault("SCHEDULER_IDEMPOTENCY_CLEANUP", "@hourly")
	viper.SetDefault("EVENTS_SUBSCRIBER_BUFFER", 64)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	return &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Env:            viper.GetString("APP_ENV"),
			Port:           viper.GetString("APP_PORT"),
			Debug:          viper.GetBool("APP_DEBUG"),
			RequestTimeout: viper.GetDuration("APP_REQUEST_TIMEOUT"),
			IdempotencyTTL: viper.GetDuration("APP_IDEMPOTENCY_TTL"),
			SeedTables:     viper.GetInt("APP_SEED_TABLES"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(viper.GetString("STORE_DRIVER")),
			SnapshotPath: viper.GetString("STORE_SNAPSHOT_PATH"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			Issuer:      viper.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:       viper.GetString("PRINTER_TYPE"),
			DevicePath: viper.GetString("PRINTER_DEVICE_PATH"),
			Address:    viper.GetString("PRINTER_ADDRESS"),
			PaperWidth: viper.GetInt("PRINTER_PAPER_WIDTH"),
			AutoPrint:  viper.GetBool("PRINTER_AUTO_PRINT"),
			Title:      viper.GetString("PRINTER_TITLE"),
		},
		Scheduler: SchedulerConfig{
			ClearServedSpec:      viper.GetString("SCHEDULER_CLEAR_SERVED"),
			IdempotencyCleanSpec: viper.GetString("SCHEDULER_IDEMPOTENCY_CLEANUP"),
		},
		Events: EventsConfig{
			SubscriberBuffer: viper.GetInt("EVENTS_SUBSCRIBER_BUFFER"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// UsesMemoryStore reports whether the in-memory document store is selected
func (c *StoreConfig) UsesMemoryStore() bool {
	return c.Driver == "memory"
}
