package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo for TIMEZONE on minimal images

	pkgstrings "visitflow/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	Environment   string

	// DatabaseURL selects the PostgreSQL store. Empty means in-memory.
	DatabaseURL string
	// Location is the time zone scheduled dates and clock times are interpreted in.
	Location *time.Location
	SeedFile string

	Redis RedisConfig
	Kafka KafkaConfig

	ScanInterval    time.Duration
	ComplianceScope string
	AuditQueueSize  int
}

// RedisConfig enables the distributed visitor lock when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LockTTL      time.Duration
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	ClientID          string
	Partitions        int32
	ReplicationFactor int16
}

// DefaultScanInterval is the overdue scan period when SCAN_INTERVAL is unset.
const DefaultScanInterval = 10 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            getenv("VISITFLOW_ADDR", ":8080"),
		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:       getenv("JWT_ISSUER", "visitflow"),
		Environment:     getenv("ENVIRONMENT", "local"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SeedFile:        os.Getenv("SEED_FILE"),
		ComplianceScope: getenv("COMPLIANCE_SCOPE", "visitor_lifetime"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LockTTL:      30 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           pkgstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:             getenv("KAFKA_TOPIC", "visitflow.visit-events"),
			ClientID:          getenv("KAFKA_CLIENT_ID", "visitflow"),
			Partitions:        3,
			ReplicationFactor: 1,
		},
	}

	if cfg.JWTSigningKey == "" {
		if cfg.Environment != "local" {
			return Server{}, fmt.Errorf("JWT_SIGNING_KEY is required outside local environment")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	var err error
	if cfg.Location, err = time.LoadLocation(getenv("TIMEZONE", "America/Sao_Paulo")); err != nil {
		return Server{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if cfg.ScanInterval, err = durationEnv("SCAN_INTERVAL", DefaultScanInterval); err != nil {
		return Server{}, err
	}
	if cfg.Redis.LockTTL, err = durationEnv("REDIS_LOCK_TTL", cfg.Redis.LockTTL); err != nil {
		return Server{}, err
	}
	if cfg.AuditQueueSize, err = intEnv("AUDIT_QUEUE_SIZE", 1024); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return n, nil
}
