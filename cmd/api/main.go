package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/bootstrap"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	infrafile "github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/lock"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get sql pool", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create pgx pool", zap.Error(err))
	}
	defer pool.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	notifier := app.LogNotifier{Logger: logger.Named("notifier")}
	identityStore := repository.NewIdentityStore(pool)
	waitlist := repository.NewWaitlistRepository(sqlDB)
	creator := app.NewCreator(identityStore, logger.Named("creator"), app.WithCreateRateLimit(cfg.IdentityCreateRPS))

	var locker app.Locker = app.NewMutexLocker()
	if cfg.RedisURL != "" {
		client, err := lock.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, 0, logger.Named("lock"))
	}

	sweeper := app.NewSweeper(waitlist, creator, locker, logger.Named("sweeper"), app.WithSweepNotifier(notifier))
	scheduler := app.NewSweepScheduler(sweeper, logger.Named("scheduler"), app.SweepSchedulerConfig{
		Interval: cfg.SweepInterval,
		Offsets:  cfg.SweepOffsets,
		Location: cfg.Location,
	})
	scheduler.Start(workerCtx)

	worker := app.NewImportWorker(
		repository.NewImportJobRepository(db),
		infrafile.NewLocalSource(cfg.ImportBaseDir),
		creator,
		waitlist,
		logger.Named("worker"),
		app.ImportWorkerConfig{
			Workers:       cfg.ImportWorkers,
			ChunkSize:     cfg.ImportChunkSize,
			LeaseDuration: cfg.ImportJobLease,
			Location:      cfg.Location,
			Notifier:      notifier,
		},
	)
	worker.Start(workerCtx)

	server := bootstrap.NewHTTPServer(db, app.NewSweepWaitlist(sweeper, cfg.Location, nil), logger.Named("http"))

	go func() {
		logger.Info("http server starting", zap.String("port", cfg.Port))
		if err := server.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
