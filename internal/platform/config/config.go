package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr string

	// TokenKey is the base64-encoded 32-byte secret for the registration
	// token sealer. Absence is fatal at startup.
	TokenKey string

	// StaffJWTKey verifies staff bearer tokens issued by the identity
	// provider in front of this service.
	StaffJWTKey string

	PostgresDSN string
	Redis       RedisConfig
	SMTP        SMTPConfig
	AMQP        AMQPConfig

	// ProofDir is the filesystem root for uploaded payment proofs.
	ProofDir string
}

// RedisConfig configures the registration view cache. URL empty means the
// cache is disabled; every read then goes to the system of record, which is
// always correct, just slower.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SMTPConfig configures confirmation email dispatch.
type SMTPConfig struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

// AMQPConfig configures the optional audit event fan-out. URL empty disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("GATEPASS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	proofDir := os.Getenv("PROOF_DIR")
	if proofDir == "" {
		proofDir = "/var/lib/gatepass/proofs"
	}

	return Config{
		Addr:        addr,
		TokenKey:    os.Getenv("TOKEN_KEY"),
		StaffJWTKey: os.Getenv("STAFF_JWT_KEY"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: envInt("SMTP_PORT", 587),
			From: os.Getenv("SMTP_FROM"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
		},
		AMQP: AMQPConfig{
			URL:      os.Getenv("AMQP_URL"),
			Exchange: envDefault("AMQP_EXCHANGE", "gatepass.audit"),
		},
		ProofDir: proofDir,
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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
