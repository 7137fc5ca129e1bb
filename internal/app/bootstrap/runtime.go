// Package bootstrap builds the process-level dependency graph shared by the
// API and worker binaries.
package bootstrap

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/mawidhq/clinic-bot/internal/config"
	"github.com/mawidhq/clinic-bot/internal/intent"
	"github.com/mawidhq/clinic-bot/internal/tasks"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// BuildRedisClient connects to Redis, optionally verifying with a ping.
// Returns nil when Redis is not configured or (with verify) unreachable.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDBPool connects the shared pgx pool.
func BuildDBPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, cfg.DatabaseURL)
}

// BuildTaskQueue picks the delayed-task queue implementation: in-memory for
// single-process development runs, Redis otherwise.
func BuildTaskQueue(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) tasks.Queue {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UseMemoryQueue || redisClient == nil {
		logger.Warn("using in-memory task queue; scheduled reminders do not survive restarts")
		return tasks.NewMemoryQueue()
	}
	return tasks.NewRedisQueue(redisClient)
}

// BuildIntentExtractor returns the Bedrock classifier when a model is
// configured, else the keyword fallback.
func BuildIntentExtractor(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (intent.Extractor, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.BedrockModelID) == "" {
		logger.Info("intent extractor: keyword fallback (BEDROCK_MODEL_ID not set)")
		return intent.NewKeywordExtractor(), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	client := bedrockruntime.NewFromConfig(awsCfg)
	logger.Info("intent extractor: bedrock", "model_id", cfg.BedrockModelID)
	return intent.NewBedrockExtractor(client, cfg.BedrockModelID, logger.Logger), nil
}
