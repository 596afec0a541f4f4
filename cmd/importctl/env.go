package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/mohammadpnp/csv-user-import/internal/bootstrap"
	"github.com/mohammadpnp/csv-user-import/internal/config"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/lock"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// env holds the stores a command works against.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	creator  *app.Creator
	waitlist *repository.WaitlistRepository
	locker   app.Locker
	closers  []func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func() { _ = logger.Sync() })

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		e.close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			e.close()
			return nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		e.close()
		return nil, fmt.Errorf("get sql pool: %w", err)
	}
	e.closers = append(e.closers, func() { _ = sqlDB.Close() })

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	e.closers = append(e.closers, pool.Close)

	e.creator = app.NewCreator(repository.NewIdentityStore(pool), logger.Named("creator"),
		app.WithCreateRateLimit(cfg.IdentityCreateRPS))
	e.waitlist = repository.NewWaitlistRepository(sqlDB)

	e.locker = app.NewMutexLocker()
	if cfg.RedisURL != "" {
		client, err := lock.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			e.close()
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = client.Close() })
		e.locker = lock.NewRedisLocker(client, 0, logger.Named("lock"))
	}

	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}
