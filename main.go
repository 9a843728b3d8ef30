package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cloudapp/webapp/config"
	"github.com/cloudapp/webapp/models"
	"github.com/cloudapp/webapp/repository"
	"github.com/cloudapp/webapp/routes"
	"github.com/cloudapp/webapp/storage"
	"github.com/cloudapp/webapp/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger early
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	metrics, err := utils.NewMetrics(ctx, cfg)
	if err != nil {
		logger.Fatal("init metrics", zap.Error(err))
	}

	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}

	store, err := storage.NewMinioStorage(storage.Options{
		Endpoint:   cfg.S3Endpoint,
		Region:     cfg.S3Region,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		UseSSL:     cfg.S3UseSSL,
		Bucket:     cfg.BucketName,
		PublicBase: cfg.S3PublicBase,
	})
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = store.CheckBucket(checkCtx)
	cancel()
	if err != nil {
		logger.Fatal("storage bucket unavailable", zap.Error(err))
	}

	r := routes.SetupRouter(routes.Deps{
		Config:     cfg,
		Repository: repository.New(db),
		Storage:    store,
		Logger:     logger,
		Metrics:    metrics,
	})

	logger.Info("starting server (graceful)", zap.String("port", cfg.AppPort), zap.String("bucket", cfg.BucketName))
	err = utils.GraceServer(":"+cfg.AppPort, r, logger,
		func(context.Context) error { return sqlDB.Close() },
		metrics.Shutdown,
	)
	if err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}
