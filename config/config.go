package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName                       string        `mapstructure:"APP_NAME"`
	Version                       string        `mapstructure:"APP_VERSION"`
	Port                          int           `mapstructure:"PORT"`
	LogLevel                      string        `mapstructure:"LOG_LEVEL"`
	PrettyLogs                    bool          `mapstructure:"PRETTY_LOGS"`
	HttpServerWriteTimeoutSeconds int           `mapstructure:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS"`
	HttpServerReadTimeoutSeconds  int           `mapstructure:"HTTP_SERVER_READ_TIMEOUT_SECONDS"`
	HttpServerIdleTimeoutSeconds  int           `mapstructure:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS"`
	AllowOrigins                  []string      `mapstructure:"HTTP_SERVER_ALLOW_ORIGINS"`
	StartupMaxAttempts            int           `mapstructure:"STARTUP_MAX_ATTEMPTS"`
	ShutdownTimeout               time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// Store driver: postgres or memory
	StoreDriver string `mapstructure:"STORE_DRIVER"`

	DatabaseHost                string        `mapstructure:"DB_HOST"`
	DatabasePort                string        `mapstructure:"DB_PORT"`
	DatabaseUserName            string        `mapstructure:"DB_USER_NAME"`
	DatabasePassword            string        `mapstructure:"DB_PASSWORD"`
	DatabaseName                string        `mapstructure:"DB_NAME"`
	DatabaseSSLMode             string        `mapstructure:"DB_SSL_MODE"`
	DatabaseMaxOpenConns        int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DatabaseMaxIdleConns        int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DatabaseConnMaxLifetime     time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DatabaseMigrationFolderPath string        `mapstructure:"DB_MIGRATION_FOLDER_PATH"`
	DatabaseMigrationVersion    uint          `mapstructure:"DB_MIGRATION_VERSION"`
	// Apply pending migrations when serving
	DatabaseAutoMigrate bool `mapstructure:"DB_AUTO_MIGRATE"`

	RemoteBaseURL           string        `mapstructure:"REMOTE_BASE_URL"`
	RemoteTimeout           time.Duration `mapstructure:"REMOTE_TIMEOUT"`
	RemoteAPIKey            string        `mapstructure:"REMOTE_API_KEY"`
	RemoteRecordsExpression string        `mapstructure:"REMOTE_RECORDS_EXPRESSION"`
	RemoteListingsPath      string        `mapstructure:"REMOTE_LISTINGS_PATH"`
	RemoteVendorsPath       string        `mapstructure:"REMOTE_VENDORS_PATH"`
	RemoteToursPath         string        `mapstructure:"REMOTE_TOURS_PATH"`
	RemoteContactPath       string        `mapstructure:"REMOTE_CONTACT_PATH"`
	RemotePolicyPath        string        `mapstructure:"REMOTE_POLICY_PATH"`

	// Notice board driver: redis or memory
	NoticesDriver string        `mapstructure:"NOTICES_DRIVER"`
	NoticeTTL     time.Duration `mapstructure:"NOTICE_TTL"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	EventsEnabled    bool   `mapstructure:"EVENTS_ENABLED"`
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaEventsTopic string `mapstructure:"KAFKA_EVENTS_TOPIC"`

	OTLPEnabled  bool   `mapstructure:"OTLP_ENABLED"`
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	OTLPProtocol string `mapstructure:"OTLP_PROTOCOL"`
	OTLPInsecure bool   `mapstructure:"OTLP_INSECURE"`
}

var defaults = map[string]any{
	"APP_NAME":                          "primrose",
	"APP_VERSION":                       "dev",
	"PORT":                              3000,
	"LOG_LEVEL":                         "info",
	"PRETTY_LOGS":                       false,
	"HTTP_SERVER_WRITE_TIMEOUT_SECONDS": 10,
	"HTTP_SERVER_READ_TIMEOUT_SECONDS":  10,
	"HTTP_SERVER_IDLE_TIMEOUT_SECONDS":  10,
	"HTTP_SERVER_ALLOW_ORIGINS":         "*",
	"STARTUP_MAX_ATTEMPTS":              5,
	"SHUTDOWN_TIMEOUT":                  "10s",

	"STORE_DRIVER": "postgres",

	"DB_HOST":                  "localhost",
	"DB_PORT":                  "5432",
	"DB_USER_NAME":             "",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "primrose",
	"DB_SSL_MODE":              "disable",
	"DB_MAX_OPEN_CONNS":        25,
	"DB_MAX_IDLE_CONNS":        10,
	"DB_CONN_MAX_LIFETIME":     "10s",
	"DB_MIGRATION_FOLDER_PATH": "db/pg",
	"DB_MIGRATION_VERSION":     0,
	"DB_AUTO_MIGRATE":          true,

	"REMOTE_BASE_URL":           "",
	"REMOTE_TIMEOUT":            "10s",
	"REMOTE_API_KEY":            "",
	"REMOTE_RECORDS_EXPRESSION": "",
	"REMOTE_LISTINGS_PATH":      "",
	"REMOTE_VENDORS_PATH":       "",
	"REMOTE_TOURS_PATH":         "",
	"REMOTE_CONTACT_PATH":       "",
	"REMOTE_POLICY_PATH":        "",

	"NOTICES_DRIVER": "memory",
	"NOTICE_TTL":     "24h",

	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"EVENTS_ENABLED":     false,
	"KAFKA_BROKERS":      "localhost:9092",
	"KAFKA_EVENTS_TOPIC": "primrose-record-events",

	"OTLP_ENABLED":  false,
	"OTLP_ENDPOINT": "localhost:4317",
	"OTLP_PROTOCOL": "grpc",
	"OTLP_INSECURE": true,
}

// Load reads configuration from the environment. Values from the optional
// .env files are applied first and never override variables already set.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		// A missing file is fine.
		_ = godotenv.Load(file)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.AllowOrigins = splitList(cfg.AllowOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	switch c.NoticesDriver {
	case "redis", "memory":
	default:
		return fmt.Errorf("NOTICES_DRIVER must be redis or memory, got %q", c.NoticesDriver)
	}
	if c.RemoteBaseURL == "" {
		return fmt.Errorf("REMOTE_BASE_URL is required")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	return nil
}

// DatabaseDSN builds the postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DatabaseUserName, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName, c.DatabaseSSLMode)
}

// splitList trims entries and drops empties.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
