package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	Channel   ChannelConfig
	Scheduler SchedulerConfig
	Env       string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RabbitMQConfig holds RabbitMQ configuration
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// ChannelConfig holds the outbound messaging provider configuration.
// CountryPrefix and MinDigits drive address normalization and are
// deliberately configuration rather than constants.
type ChannelConfig struct {
	BaseURL       string
	APIKey        string
	CountryPrefix string
	MinDigits     int
	SendTimeout   time.Duration
}

// SchedulerConfig holds the campaign scheduler tunables
type SchedulerConfig struct {
	TickInterval   time.Duration
	BootstrapDelay time.Duration
	SendDelay      time.Duration
	StaleAfter     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "agendanotify"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "agendanotify_db"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_DEFAULT_USER", "guest"),
			Password: getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
		},
		Channel: ChannelConfig{
			BaseURL:       getEnv("CHANNEL_BASE_URL", ""),
			APIKey:        getEnv("CHANNEL_API_KEY", ""),
			CountryPrefix: getEnv("CHANNEL_COUNTRY_PREFIX", "55"),
			MinDigits:     getEnvAsInt("CHANNEL_MIN_DIGITS", 10),
			SendTimeout:   getEnvAsDuration("CHANNEL_SEND_TIMEOUT", 12*time.Second),
		},
		Scheduler: SchedulerConfig{
			TickInterval:   getEnvAsDuration("SCHEDULER_TICK_INTERVAL", 60*time.Second),
			BootstrapDelay: getEnvAsDuration("SCHEDULER_BOOTSTRAP_DELAY", 10*time.Second),
			SendDelay:      getEnvAsDuration("SCHEDULER_SEND_DELAY", time.Second),
			StaleAfter:     getEnvAsDuration("SCHEDULER_STALE_AFTER", 30*time.Minute),
		},
		Env: getEnv("ENV", "development"),
	}

	// Validate required fields
	if config.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if config.Channel.BaseURL == "" {
		return nil, fmt.Errorf("CHANNEL_BASE_URL is required")
	}
	if config.Channel.APIKey == "" {
		return nil, fmt.Errorf("CHANNEL_API_KEY is required")
	}

	return config, nil
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer or returns default
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets environment variable as duration or returns default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
