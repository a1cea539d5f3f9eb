// cmd/classifier/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"menu-classifier/internal/classify/aggregate"
	"menu-classifier/internal/classify/keyword"
	"menu-classifier/internal/classify/oracle"
	"menu-classifier/internal/classify/retrieval"
	"menu-classifier/internal/common/config"
	"menu-classifier/internal/common/database"
	"menu-classifier/internal/common/logger"
	"menu-classifier/internal/common/observability"
	"menu-classifier/internal/review"
	"menu-classifier/internal/server"
	"menu-classifier/internal/service"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Retrieval backend.
	var searcher retrieval.Searcher
	switch cfg.Retrieval.Backend {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var connErr error
			esClient, connErr = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if connErr != nil {
				return connErr
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("Failed to connect to Elasticsearch", zap.Error(err))
		}
		searcher = retrieval.NewElasticSearcher(esClient.Client, cfg.Retrieval.Index)
	default:
		index := retrieval.NewIndex()
		if cfg.Retrieval.SeedBuiltins {
			retrieval.SeedBuiltins(index)
		}
		if cfg.Retrieval.SeedFromDB {
			var pg *database.PostgresClient
			err = retryWithBackoff(func() error {
				var connErr error
				pg, connErr = database.NewPostgres(cfg.Database.Postgres)
				if connErr != nil {
					return connErr
				}
				return pg.Ping(ctx)
			}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
			if err != nil {
				zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
			}
			loaded, seedErr := retrieval.SeedFromPostgres(ctx, pg.GetDB(), index, log)
			if seedErr != nil {
				zapLog.Fatal("Failed to seed retrieval corpus", zap.Error(seedErr))
			}
			zapLog.Info("Seeded retrieval corpus from database", zap.Int("dishes", loaded))
			pg.Close()
		}
		zapLog.Info("Using in-memory retrieval index", zap.Int("size", index.Len()))
		searcher = index
	}

	// Review session store.
	var store review.Store
	switch cfg.Review.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var connErr error
			redisClient, connErr = database.NewRedis(cfg.Database.Redis)
			if connErr != nil {
				return connErr
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = review.NewRedisStore(redisClient.GetClient(), log)
	default:
		memStore := review.NewMemoryStore()
		defer memStore.Stop()
		store = memStore
	}

	// Reviewer notifications.
	var notifier review.Notifier = review.NopNotifier{}
	if cfg.Notifications.SNS.Enabled || cfg.Notifications.Email.Enabled {
		awsNotifier, notifyErr := review.NewAWSNotifier(ctx, cfg.Notifications, log)
		if notifyErr != nil {
			zapLog.Fatal("Failed to initialize reviewer notifications", zap.Error(notifyErr))
		}
		notifier = awsNotifier
	}

	judge := oracle.NewClient(oracle.Config{
		BaseURL:    cfg.Oracle.BaseURL,
		APIKey:     cfg.Oracle.APIKey,
		Timeout:    time.Duration(cfg.Oracle.Timeout) * time.Millisecond,
		MaxRetries: cfg.Oracle.MaxRetries,
	}, log)

	strategy := &aggregate.DefaultStrategy{
		AgreementBonus:        cfg.Classification.AgreementBonus,
		DisagreementPenalty:   cfg.Classification.DisagreementPenalty,
		RetrievalFloor:        cfg.Classification.RetrievalFloor,
		MaxFallbackConfidence: cfg.Classification.MaxFallbackConfidence,
	}
	aggregator := aggregate.New(aggregate.Config{
		Workers: cfg.Classification.Workers,
		TopK:    cfg.Retrieval.TopK,
	}, keyword.NewMatcher(), searcher, judge, strategy, log)

	svc := service.New(service.Config{
		ConfidenceThreshold: cfg.Classification.ConfidenceThreshold,
		SessionTTL:          time.Duration(cfg.Review.TTLMinutes) * time.Minute,
	}, aggregator, store, notifier, obs, log)

	srv := server.New(cfg.Server, svc, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	zapLog.Info("Classifier started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("retrieval_backend", cfg.Retrieval.Backend),
		zap.String("review_backend", cfg.Review.Backend),
	)

	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping server...")
	case err = <-errCh:
		if err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Classifier stopped")
}
