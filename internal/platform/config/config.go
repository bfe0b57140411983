package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Collaborator endpoints (chain LCD, signer relay, verification
// provider) are plain URLs; their clients own the wire details.
type Config struct {
	Addr     string
	LogLevel string

	Redis RedisConfig

	// Verification provider selection and credentials.
	ProviderID          string
	SynapsBaseURL       string
	SynapsClientID      string
	SynapsAPIKey        string
	SynapsWebhookSecret string

	// Chain collaborators.
	ChainLCDURL              string
	SignerRelayURL           string
	CheckmarkContractAddress string
	PaymentContractAddress   string

	// Expected payment for one verification session.
	PaymentAmount    string
	PaymentDenom     string
	PaymentDenomCW20 bool

	// Wallet auth.
	NonceTTL time.Duration

	// Public endpoint throttling. Zero disables.
	RateLimitPerMinute int

	// Admin surface.
	JWTSigningKey string
}

// RedisConfig mirrors the options the redis client wrapper applies.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables with dev-safe defaults.
func FromEnv() Config {
	jwtSigningKey := getenv("JWT_SIGNING_KEY", "")
	if jwtSigningKey == "" {
		// Use a default for development - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr:     getenv("CHECKMARK_ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		Redis: RedisConfig{
			URL:          getenv("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},

		ProviderID:          getenv("PROVIDER_ID", "synaps"),
		SynapsBaseURL:       getenv("SYNAPS_BASE_URL", "https://individual-api.synaps.io"),
		SynapsClientID:      os.Getenv("SYNAPS_CLIENT_ID"),
		SynapsAPIKey:        os.Getenv("SYNAPS_API_KEY"),
		SynapsWebhookSecret: os.Getenv("SYNAPS_WEBHOOK_SECRET"),

		ChainLCDURL:              getenv("CHAIN_LCD_URL", "https://lcd.juno.strange.love"),
		SignerRelayURL:           os.Getenv("SIGNER_RELAY_URL"),
		CheckmarkContractAddress: os.Getenv("CHECKMARK_CONTRACT_ADDRESS"),
		PaymentContractAddress:   os.Getenv("PAYMENT_CONTRACT_ADDRESS"),

		PaymentAmount:    getenv("PAYMENT_AMOUNT", "5000000"),
		PaymentDenom:     getenv("PAYMENT_DENOM", "ujuno"),
		PaymentDenomCW20: os.Getenv("PAYMENT_DENOM_TYPE") == "cw20",

		NonceTTL: getenvDuration("NONCE_TTL", 5*time.Minute),

		RateLimitPerMinute: getenvInt("RATE_LIMIT_PER_MINUTE", 60),

		JWTSigningKey: jwtSigningKey,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
