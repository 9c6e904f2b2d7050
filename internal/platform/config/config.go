// Package config builds runtime configuration from environment variables so
// main stays lean. Every backend is optional: with no Postgres, Redis, or
// Kafka configured the service runs on in-memory stores, which is the
// development and unit-test posture.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Addr          string
	JWTSigningKey string

	// EvaluationMode is the engine's initial mode; one of short_circuit,
	// all_must_pass, any_must_pass.
	EvaluationMode string

	PolicyDefaultDelay time.Duration
	PolicyMinDelay     time.Duration

	Rules RulesConfig

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// RulesConfig seeds the built-in compliance rules.
type RulesConfig struct {
	// KYCMinTier and KYCMinCounterpartyTier are tier names; see the
	// identity package for the ordering.
	KYCMinTier             string
	KYCMinCounterpartyTier string

	// JurisdictionMode is "allowlist" or "denylist".
	JurisdictionMode  string
	JurisdictionCodes []string

	// MaxSupply enables the supply cap rule when positive.
	MaxSupply uint64

	// VelocityMaxAmount enables the velocity rule when positive.
	VelocityMaxAmount uint64
	VelocityWindow    time.Duration
}

// PostgresConfig selects the Postgres-backed stores when DSN is set.
type PostgresConfig struct {
	DSN string
}

// RedisConfig selects the Redis velocity store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the Kafka audit sink when SeedBrokers is non-empty.
type KafkaConfig struct {
	SeedBrokers     []string
	Topic           string
	TopicPartitions int32
}

// FromEnv reads configuration from the environment, applying development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("TRANSFERGUARD_ADDR", ":8080"),
		JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		EvaluationMode:     envOr("EVALUATION_MODE", "short_circuit"),
		PolicyDefaultDelay: envDurationOr("POLICY_ACTIVATION_DELAY", 24*time.Hour),
		PolicyMinDelay:     envDurationOr("POLICY_ACTIVATION_DELAY_FLOOR", time.Hour),
		Rules: RulesConfig{
			KYCMinTier:             envOr("KYC_MIN_TIER", "basic"),
			KYCMinCounterpartyTier: envOr("KYC_MIN_COUNTERPARTY_TIER", "basic"),
			JurisdictionMode:       envOr("JURISDICTION_MODE", "denylist"),
			MaxSupply:              envUintOr("MAX_SUPPLY", 0),
			VelocityMaxAmount:      envUintOr("VELOCITY_MAX_AMOUNT", 0),
			VelocityWindow:         envDurationOr("VELOCITY_WINDOW", 24*time.Hour),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic:           envOr("KAFKA_AUDIT_TOPIC", "transferguard.audit"),
			TopicPartitions: int32(envIntOr("KAFKA_AUDIT_PARTITIONS", 3)),
		},
	}
	if brokers := os.Getenv("KAFKA_SEED_BROKERS"); brokers != "" {
		cfg.Kafka.SeedBrokers = strings.Split(brokers, ",")
	}
	if codes := os.Getenv("JURISDICTION_CODES"); codes != "" {
		cfg.Rules.JurisdictionCodes = strings.Split(codes, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUintOr(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
