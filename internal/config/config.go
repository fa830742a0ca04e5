package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ApiPort string

	StoreProvider    string
	SettingsProvider string
	BusProvider      string
	OracleProvider   string

	DBUser  string
	DBPass  string
	DBHost  string
	DBPort  string
	DBName  string
	SSLMode string

	RedisHost string
	RedisPort string

	NatsHost string
	NatsPort string

	RabbitURL      string
	RabbitExchange string
	RabbitQueue    string

	OracleURL string

	SeedDemo bool
}

// New loads and validates configuration from environment variables. Every
// provider defaults to its in-memory flavor so the server runs with no
// external services, matching the demo deployment. Postgres, Redis, NATS
// and RabbitMQ are opted into per concern.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ApiPort:          getEnv("HABITAT_API_PORT", "8080"),
		StoreProvider:    getEnv("HABITAT_STORE_PROVIDER", "memory"),
		SettingsProvider: getEnv("HABITAT_SETTINGS_PROVIDER", "memory"),
		BusProvider:      getEnv("HABITAT_BUS_PROVIDER", "memory"),
		OracleProvider:   getEnv("HABITAT_ORACLE_PROVIDER", "static"),
		DBUser:           os.Getenv("HABITAT_POSTGRES_USER"),
		DBPass:           os.Getenv("HABITAT_POSTGRES_PASSWORD"),
		DBHost:           os.Getenv("HABITAT_POSTGRES_HOST"),
		DBPort:           getEnv("HABITAT_POSTGRES_PORT", "5432"),
		DBName:           os.Getenv("HABITAT_POSTGRES_DB"),
		SSLMode:          getEnv("HABITAT_POSTGRES_SSLMODE", "disable"),
		RedisHost:        os.Getenv("HABITAT_REDIS_HOST"),
		RedisPort:        getEnv("HABITAT_REDIS_PORT", "6379"),
		NatsHost:         os.Getenv("HABITAT_NATS_HOST"),
		NatsPort:         getEnv("HABITAT_NATS_PORT", "4222"),
		RabbitURL:        os.Getenv("HABITAT_RABBIT_URL"),
		RabbitExchange:   getEnv("HABITAT_RABBIT_EXCHANGE", "habitat.events"),
		RabbitQueue:      getEnv("HABITAT_RABBIT_QUEUE", "habitat.notifications"),
		OracleURL:        os.Getenv("HABITAT_ORACLE_URL"),
		SeedDemo:         getEnv("HABITAT_SEED_DEMO", "true") == "true",
	}

	switch cfg.StoreProvider {
	case "memory":
	case "postgres":
		if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("missing required env for postgres store: HABITAT_POSTGRES_USER/HOST/DB")
		}
	default:
		return nil, fmt.Errorf("invalid store provider %q, must be 'memory' or 'postgres'", cfg.StoreProvider)
	}

	switch cfg.SettingsProvider {
	case "memory":
	case "redis":
		if cfg.RedisHost == "" {
			return nil, fmt.Errorf("missing required env for redis settings: HABITAT_REDIS_HOST")
		}
	default:
		return nil, fmt.Errorf("invalid settings provider %q, must be 'memory' or 'redis'", cfg.SettingsProvider)
	}

	switch cfg.BusProvider {
	case "memory":
	case "nats":
		if cfg.NatsHost == "" {
			return nil, fmt.Errorf("missing required env for nats bus: HABITAT_NATS_HOST")
		}
	case "rabbit":
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env for rabbit bus: HABITAT_RABBIT_URL")
		}
	default:
		return nil, fmt.Errorf("invalid bus provider %q, must be 'memory', 'nats' or 'rabbit'", cfg.BusProvider)
	}

	switch cfg.OracleProvider {
	case "static":
	case "http":
		if cfg.OracleURL == "" {
			return nil, fmt.Errorf("missing required env for http oracle: HABITAT_ORACLE_URL")
		}
	default:
		return nil, fmt.Errorf("invalid oracle provider %q, must be 'static' or 'http'", cfg.OracleProvider)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) NatsAddr() string {
	return fmt.Sprintf("nats://%s:%s", c.NatsHost, c.NatsPort)
}

func (c *Config) ApiAddr() string {
	return ":" + c.ApiPort
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
