package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Queue provider names accepted in NOTIFY_QUEUE_PROVIDER.
const (
	QueueProviderRedis  = "redis"
	QueueProviderSQS    = "sqs"
	QueueProviderMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	SessionSecret string

	CORSAllowedOrigins []string
	RateLimitPerSecond int
	RateLimitBurst     int

	// Notification dispatcher
	NotifyQueueProvider string
	NotifyQueueName     string
	NotifyQueueURL      string
	WorkerCount         int
	NotifyMaxAttempts   int
	NotifyBaseDelay     time.Duration
	NotifySendTimeout   time.Duration

	// Redis queue backing
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// AWS (SQS queue backing and SES email)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Outbound email
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	SESEnabled     bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),

		NotifyQueueProvider: strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_QUEUE_PROVIDER", QueueProviderRedis))),
		NotifyQueueName:     getEnv("NOTIFY_QUEUE_NAME", "email-notifications"),
		NotifyQueueURL:      getEnv("NOTIFY_QUEUE_URL", ""),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 2),
		NotifyMaxAttempts:   getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
		NotifyBaseDelay:     getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),
		NotifySendTimeout:   getEnvAsDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Clinic360"),
		SESEnabled:     getEnvAsBool("SES_ENABLED", false),
	}
}

// MailConfigured reports whether an outbound mail credential pair is present.
// The notification dispatcher treats a missing mail relay as a fatal startup
// error.
func (c *Config) MailConfigured() bool {
	if c.EmailFrom == "" {
		return false
	}
	return c.SendGridAPIKey != "" || c.SESEnabled
}

// QueueConfigured reports whether the selected queue provider has the backing
// it needs to start.
func (c *Config) QueueConfigured() bool {
	switch c.NotifyQueueProvider {
	case QueueProviderMemory:
		return true
	case QueueProviderSQS:
		return c.NotifyQueueURL != ""
	default:
		return strings.TrimSpace(c.RedisAddr) != ""
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
