package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	kstrings "kudos/pkg/platform/strings"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the process configuration assembled from the environment.
type Config struct {
	Server    Server
	Store     Store
	Kudos     Kudos
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Store selects the persistence backend.
type Store struct {
	Backend       string
	DatabaseURL   string
	DirectoryFile string
	AutoMigrate   bool
}

// Kudos holds the issuance policy.
type Kudos struct {
	WeeklyQuota      int
	MaxMessageLength int
	Timezone         string
}

// Location resolves the configured timezone used for week boundaries.
func (k Kudos) Location() (*time.Location, error) {
	if k.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(k.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", k.Timezone, err)
	}
	return loc, nil
}

// RedisConfig configures the optional Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional event publisher. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// RateLimitConfig bounds how fast a single caller may issue kudos.
type RateLimitConfig struct {
	Disabled bool
	Requests int
	Window   time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("KUDOS_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("KUDOS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: Store{
			Backend:       strings.ToLower(getEnv("KUDOS_STORE", StoreMemory)),
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			DirectoryFile: os.Getenv("KUDOS_DIRECTORY_FILE"),
			AutoMigrate:   getEnvBool("KUDOS_AUTO_MIGRATE", false),
		},
		Kudos: Kudos{
			WeeklyQuota:      getEnvInt("KUDOS_WEEKLY_QUOTA", 3),
			MaxMessageLength: getEnvInt("KUDOS_MAX_MESSAGE_LENGTH", 1000),
			Timezone:         getEnv("KUDOS_TIMEZONE", "UTC"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           kstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:             getEnv("KAFKA_TOPIC", "kudos.issued"),
			Partitions:        int32(getEnvInt("KAFKA_TOPIC_PARTITIONS", 1)),
			ReplicationFactor: int16(getEnvInt("KAFKA_TOPIC_REPLICATION", 1)),
		},
		RateLimit: RateLimitConfig{
			Disabled: getEnvBool("KUDOS_RATE_LIMIT_DISABLED", false),
			Requests: getEnvInt("KUDOS_RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvDuration("KUDOS_RATE_LIMIT_WINDOW", time.Minute),
		},
		LogLevel: getEnv("KUDOS_LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when KUDOS_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory or postgres)", c.Store.Backend)
	}
	if c.Kudos.WeeklyQuota < 1 {
		return fmt.Errorf("KUDOS_WEEKLY_QUOTA must be positive, got %d", c.Kudos.WeeklyQuota)
	}
	if c.Kudos.MaxMessageLength < 1 {
		return fmt.Errorf("KUDOS_MAX_MESSAGE_LENGTH must be positive, got %d", c.Kudos.MaxMessageLength)
	}
	if _, err := c.Kudos.Location(); err != nil {
		return err
	}
	if !c.RateLimit.Disabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return errors.New("rate limit requires positive KUDOS_RATE_LIMIT_REQUESTS and KUDOS_RATE_LIMIT_WINDOW")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
