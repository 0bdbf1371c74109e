package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Module provides *Config loaded from the process arguments and environment.
var Module = fx.Provide(Load)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For is
	// honored. Empty means the peer address is the client address.
	TrustedProxies []string
	LogLevel       string
	AppURL         string

	RedisAddr       string
	KafkaBrokers    []string
	KafkaEmailTopic string

	AdminTokenSecret string

	Payment PaymentConfig
	GenAPI  GenAPIConfig

	WorkerPoolSize       int
	QueueSize            int
	ShutdownTimeout      time.Duration
	TextPollInterval     time.Duration
	TextPollAttempts     int
	AudioPollInterval    time.Duration
	AudioPollAttempts    int
	StaleSweepInterval   time.Duration
	StaleProcessingAfter time.Duration

	TriggerRateLimit  int
	TriggerRateWindow time.Duration
}

// PaymentConfig carries credentials of every supported payment provider.
type PaymentConfig struct {
	Provider string

	YooKassaShopID    string
	YooKassaSecretKey string

	OnePlatShopID string
	OnePlatSecret string

	FreeKassaMerchantID  string
	FreeKassaSecretWord1 string
	FreeKassaSecretWord2 string
	FreeKassaAPIKey      string
}

// GenAPIConfig configures the text and audio generation backend.
type GenAPIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

const (
	defaultRunAddress           = ":8080"
	defaultLogLevel             = "info"
	defaultAppURL               = "http://localhost:3000"
	defaultKafkaEmailTopic      = "youwow.emails"
	defaultAdminTokenSecret     = "change-me-in-production"
	defaultPaymentProvider      = "oneplat"
	defaultGenAPIBaseURL        = "https://api.gen-api.ru/api/v1"
	defaultAIModel              = "gpt-4o-mini"
	defaultWorkerPoolSize       = 4
	defaultQueueSize            = 256
	defaultShutdownTimeout      = 10 * time.Second
	defaultTextPollInterval     = 3 * time.Second
	defaultTextPollAttempts     = 30
	defaultAudioPollInterval    = 5 * time.Second
	defaultAudioPollAttempts    = 60
	defaultStaleSweepInterval   = time.Minute
	defaultStaleProcessingAfter = 15 * time.Minute
	defaultTriggerRateLimit     = 10
	defaultTriggerRateWindow    = time.Minute
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

// LoadDatabase reads only what administrative commands need: the
// database DSN, the admin token secret and the log level.
func LoadDatabase(dsn string) (*Config, error) {
	return loadDatabase(dsn, os.LookupEnv)
}

func loadDatabase(dsn string, lookup envLookup) (*Config, error) {
	cfg := fromEnv(lookup)
	if dsn != "" {
		cfg.DatabaseURI = dsn
	}
	normalize(cfg)
	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	return cfg, nil
}

func fromEnv(lookup envLookup) *Config {
	return &Config{
		RunAddress:       getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:      getString(lookup, "DATABASE_URI", ""),
		LogLevel:         getString(lookup, "LOG_LEVEL", defaultLogLevel),
		AppURL:           strings.TrimRight(getString(lookup, "NEXT_PUBLIC_APP_URL", defaultAppURL), "/"),
		TrustedProxies:   getList(lookup, "TRUSTED_PROXIES"),
		RedisAddr:        getString(lookup, "REDIS_ADDR", ""),
		KafkaBrokers:     getList(lookup, "KAFKA_BROKERS"),
		KafkaEmailTopic:  getString(lookup, "KAFKA_EMAIL_TOPIC", defaultKafkaEmailTopic),
		AdminTokenSecret: getString(lookup, "ADMIN_TOKEN_SECRET", defaultAdminTokenSecret),
		Payment: PaymentConfig{
			Provider:             strings.ToLower(getString(lookup, "PAYMENT_PROVIDER", defaultPaymentProvider)),
			YooKassaShopID:       getString(lookup, "YOOKASSA_SHOP_ID", ""),
			YooKassaSecretKey:    getString(lookup, "YOOKASSA_SECRET_KEY", ""),
			OnePlatShopID:        getString(lookup, "ONEPLAT_SHOP_ID", ""),
			OnePlatSecret:        getString(lookup, "ONEPLAT_SECRET", ""),
			FreeKassaMerchantID:  getString(lookup, "FK_MERCHANT_ID", ""),
			FreeKassaSecretWord1: getString(lookup, "FK_SECRET_WORD_1", ""),
			FreeKassaSecretWord2: getString(lookup, "FK_SECRET_WORD_2", ""),
			FreeKassaAPIKey:      getString(lookup, "FK_API_KEY", ""),
		},
		GenAPI: GenAPIConfig{
			APIKey:  getString(lookup, "GENAPI_API_KEY", ""),
			BaseURL: getString(lookup, "GENAPI_BASE_URL", defaultGenAPIBaseURL),
			Model:   getString(lookup, "AI_MODEL", defaultAIModel),
		},
		WorkerPoolSize:       getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		QueueSize:            getInt(lookup, "QUEUE_SIZE", defaultQueueSize),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TextPollInterval:     getDuration(lookup, "TEXT_POLL_INTERVAL", defaultTextPollInterval),
		TextPollAttempts:     getInt(lookup, "TEXT_POLL_ATTEMPTS", defaultTextPollAttempts),
		AudioPollInterval:    getDuration(lookup, "AUDIO_POLL_INTERVAL", defaultAudioPollInterval),
		AudioPollAttempts:    getInt(lookup, "AUDIO_POLL_ATTEMPTS", defaultAudioPollAttempts),
		StaleSweepInterval:   getDuration(lookup, "STALE_SWEEP_INTERVAL", defaultStaleSweepInterval),
		StaleProcessingAfter: getDuration(lookup, "STALE_PROCESSING_AFTER", defaultStaleProcessingAfter),
		TriggerRateLimit:     getInt(lookup, "TRIGGER_RATE_LIMIT", defaultTriggerRateLimit),
		TriggerRateWindow:    getDuration(lookup, "TRIGGER_RATE_WINDOW", defaultTriggerRateWindow),
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := fromEnv(lookup)

	fs := flag.NewFlagSet("youwow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		brokersStr         = strings.Join(cfg.KafkaBrokers, ",")
		proxiesStr         = strings.Join(cfg.TrustedProxies, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&proxiesStr, "trusted-proxies", proxiesStr, "Comma separated proxies allowed to set X-Forwarded-For")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for rate limiting")
	fs.StringVar(&brokersStr, "kafka-brokers", brokersStr, "Comma separated Kafka brokers for email dispatch")
	fs.StringVar(&cfg.Payment.Provider, "payment-provider", cfg.Payment.Provider, "Active payment provider")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent generation workers")
	fs.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "Capacity of the generation queue")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	cfg.KafkaBrokers = splitList(brokersStr)
	cfg.TrustedProxies = splitList(proxiesStr)

	if secretFile, ok := lookup("ADMIN_TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read admin token secret file: %w", err)
		}
		cfg.AdminTokenSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GenAPI.APIKey == "" {
		return nil, fmt.Errorf("GENAPI_API_KEY must be provided")
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.TextPollInterval <= 0 {
		cfg.TextPollInterval = defaultTextPollInterval
	}
	if cfg.TextPollAttempts <= 0 {
		cfg.TextPollAttempts = defaultTextPollAttempts
	}
	if cfg.AudioPollInterval <= 0 {
		cfg.AudioPollInterval = defaultAudioPollInterval
	}
	if cfg.AudioPollAttempts <= 0 {
		cfg.AudioPollAttempts = defaultAudioPollAttempts
	}
	if cfg.StaleSweepInterval <= 0 {
		cfg.StaleSweepInterval = defaultStaleSweepInterval
	}
	if cfg.StaleProcessingAfter <= 0 {
		cfg.StaleProcessingAfter = defaultStaleProcessingAfter
	}
	if cfg.TriggerRateLimit <= 0 {
		cfg.TriggerRateLimit = defaultTriggerRateLimit
	}
	if cfg.TriggerRateWindow <= 0 {
		cfg.TriggerRateWindow = defaultTriggerRateWindow
	}
	cfg.Payment.Provider = strings.ToLower(strings.TrimSpace(cfg.Payment.Provider))
	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = defaultPaymentProvider
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, _ := lookup(key)
	return splitList(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
