// Package mainconfig centralizes wiring shared by the api and notify-worker
// binaries: AWS SDK setup, queue backend selection and mail sender selection.
package mainconfig

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/clinic360/platform/internal/config"
	"github.com/clinic360/platform/internal/notify"
	"github.com/clinic360/platform/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case sqs.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// BuildQueue selects the notification queue backend from configuration.
// Redis is the default; SQS and an in-memory queue are the alternates.
func BuildQueue(ctx context.Context, cfg *appconfig.Config) (notify.Queue, error) {
	switch cfg.NotifyQueueProvider {
	case appconfig.QueueProviderMemory:
		return notify.NewMemoryQueue(256), nil
	case appconfig.QueueProviderSQS:
		if cfg.NotifyQueueURL == "" {
			return nil, fmt.Errorf("mainconfig: NOTIFY_QUEUE_URL required for the sqs queue provider")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
		}
		return notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL), nil
	case appconfig.QueueProviderRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("mainconfig: REDIS_ADDR required for the redis queue provider")
		}
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		return notify.NewRedisQueue(redis.NewClient(opts), cfg.NotifyQueueName), nil
	default:
		return nil, fmt.Errorf("mainconfig: unknown queue provider %q", cfg.NotifyQueueProvider)
	}
}

// BuildEmailSender selects the outbound mail relay from configuration.
// Production refuses to fall back to the stub sender.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch {
	case cfg.SendGridAPIKey != "" && cfg.EmailFrom != "":
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case cfg.SESEnabled && cfg.EmailFrom != "":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case cfg.Env != "production":
		logger.Warn("no mail relay configured, using stub email sender")
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("mainconfig: no mail relay configured (set SENDGRID_API_KEY or SES_ENABLED with EMAIL_FROM)")
	}
}
