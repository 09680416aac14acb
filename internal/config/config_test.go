package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, QueueProviderRedis, cfg.NotifyQueueProvider)
	assert.Equal(t, "email-notifications", cfg.NotifyQueueName)
	assert.Equal(t, 3, cfg.NotifyMaxAttempts)
	assert.Equal(t, time.Second, cfg.NotifyBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.NotifySendTimeout)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 20, cfg.RateLimitPerSecond)
	assert.Equal(t, 40, cfg.RateLimitBurst)
}

func TestLoadWithoutRedisAddrReportsQueueMissing(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()

	assert.Equal(t, QueueProviderRedis, cfg.NotifyQueueProvider)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.QueueConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NOTIFY_QUEUE_PROVIDER", "SQS")
	t.Setenv("NOTIFY_QUEUE_URL", "http://localhost:4566/000000000000/email-notifications")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "5")
	t.Setenv("NOTIFY_BASE_DELAY", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://clinic360.example, https://staging.clinic360.example")
	t.Setenv("RATE_LIMIT_PER_SECOND", "100")
	t.Setenv("RATE_LIMIT_BURST", "200")

	cfg := Load()

	assert.Equal(t, QueueProviderSQS, cfg.NotifyQueueProvider)
	assert.Equal(t, 5, cfg.NotifyMaxAttempts)
	assert.Equal(t, 100, cfg.RateLimitPerSecond)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyBaseDelay)
	assert.Equal(t, []string{"https://clinic360.example", "https://staging.clinic360.example"}, cfg.CORSAllowedOrigins)
}

func TestMailConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.MailConfigured())

	cfg.EmailFrom = "noreply@clinic360.example"
	assert.False(t, cfg.MailConfigured())

	cfg.SendGridAPIKey = "SG.test"
	assert.True(t, cfg.MailConfigured())

	cfg.SendGridAPIKey = ""
	cfg.SESEnabled = true
	assert.True(t, cfg.MailConfigured())
}

func TestQueueConfigured(t *testing.T) {
	cfg := &Config{NotifyQueueProvider: QueueProviderMemory}
	assert.True(t, cfg.QueueConfigured())

	cfg = &Config{NotifyQueueProvider: QueueProviderSQS}
	assert.False(t, cfg.QueueConfigured())
	cfg.NotifyQueueURL = "http://localhost:4566/000000000000/email-notifications"
	assert.True(t, cfg.QueueConfigured())

	cfg = &Config{NotifyQueueProvider: QueueProviderRedis}
	assert.False(t, cfg.QueueConfigured())
	cfg.RedisAddr = "localhost:6379"
	assert.True(t, cfg.QueueConfigured())
}
