package sqlpage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/resilience"
)

// Open connects through dialector, retrying failed attempts, and configures
// the connection pool.
func Open(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*gorm.DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrGlobal(log)

	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, cfg.SlowQueryThreshold, parseLogLevel(cfg.LogLevel)),
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.MaxRetries
	retry.InitialBackoff = 200 * time.Millisecond
	retry.RetryIf = func(err error) bool { return ctx.Err() == nil }
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("database connection failed", logger.MergeWithError(
			logger.Fields(logger.FieldAttempt, attempt, "backoff", backoff.String()), err))
	}

	db, err := resilience.Retry(ctx, retry, func() (*gorm.DB, error) {
		db, err := gorm.Open(dialector, gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fromDatabase(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fromDatabase(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database connection established", logger.Fields("dialect", dialector.Name(), "max_open_conns", cfg.MaxOpenConns))
	return db, nil
}
