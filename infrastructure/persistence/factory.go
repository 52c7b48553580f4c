package persistence

import (
	"context"
	"fmt"

	"ideaboard/application/ports"
	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/persistence/kv/dynamodb"
	"ideaboard/infrastructure/persistence/kv/file"
	"ideaboard/infrastructure/persistence/kv/memory"
	"ideaboard/infrastructure/persistence/kv/redis"
	"ideaboard/infrastructure/persistence/kv/sqlite"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// NewKeyValueStore opens the backend selected by cfg.StorageBackend
func NewKeyValueStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.KeyValueStore, error) {
	logger.Info("Opening storage backend", zap.String("backend", cfg.StorageBackend))

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendFile:
		return file.New(cfg.DataDir), nil

	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
		if err := store.Ping(ctx); err != nil {
			// Loads and saves degrade on their own; an unreachable server is not fatal
			logger.Warn("Redis is not reachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return store, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return dynamodb.NewStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
