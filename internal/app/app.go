package app

import (
	"FileVault/config"
	"FileVault/internal/mq"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"
	"FileVault/utils"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// App holds the process-wide dependencies shared by the server and worker.
type App struct {
	Records   *repo.RecordStore
	Files     *service.FileService
	publisher *mq.Publisher
	logger    *zap.Logger
}

// Build opens the database and storage, then the optional Redis cache and
// RabbitMQ publisher. Optional backends that fail to start are logged and
// left disabled.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := repo.InitDatabase(cfg); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := storage.InitStorage(ctx, repo.Db); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Info("storage ready",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("backend", config.StorageConfigInstance.Backend),
	)

	a := &App{Records: repo.NewRecordStore(repo.Db), logger: logger}

	var hashCache *utils.HashIndexCache
	if cfg.RedisEnabled {
		if err := repo.InitRedis(ctx, cfg); err != nil {
			logger.Warn("redis unavailable, hash cache disabled", zap.Error(err))
		} else {
			hashCache = utils.NewHashIndexCache(utils.NewRedisCache(repo.Redis), cfg.HashCacheTTL)
		}
	}

	var indexer service.SearchIndexer = service.NopIndexer{}
	if cfg.RabbitMQEnabled {
		pub := mq.NewPublisher(cfg.RabbitMQURL)
		if err := pub.Connect(); err != nil {
			// The publisher re-dials on the next event.
			logger.Warn("rabbitmq unavailable at startup", zap.Error(err))
		}
		a.publisher = pub
		indexer = pub
	}

	a.Files = service.NewFileService(a.Records, storage.Default, service.Options{
		MaxUploadSize: cfg.MaxUploadSize,
		HashCache:     hashCache,
		Indexer:       indexer,
		Logger:        logger.Named("files"),
	})
	return a, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if repo.Redis != nil {
		if err := repo.Redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.Records.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}
