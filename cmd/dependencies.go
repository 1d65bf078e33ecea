package cmd

import (
	"context"
	"errors"

	"golang-backtest/config"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/middleware"
	"golang-backtest/pkg/postgres"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

const redisKeyPrefix = "golang-backtest"

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	metrics   *metrics.Recorder
}

// NewAppDependency builds the shared dependencies. The database is only
// opened when withDB is set, so offline commands run without Postgres.
func NewAppDependency(ctx context.Context, withDB bool) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	var db *postgres.DB
	if withDB {
		db, err = postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", logger.ErrorField(err))
			return nil, err
		}
	}

	var c cache.Cache = cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisKeyPrefix)
		if err != nil {
			log.Error("Failed to connect to redis", logger.ErrorField(err), logger.StringField("addr", cfg.Redis.Addr))
			return nil, err
		}
		c = cache.NewLayeredCache(c, redisCache, cfg.Cache.DefaultExpiration)
		log.Info("Using layered cache", logger.StringField("redis_addr", cfg.Redis.Addr))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.NewRateLimiterMiddleware(cfg.API.RequestsPerSecond, cfg.API.Burst, cfg.API.RateLimitExpiry))
	if cfg.API.RequestTimeout > 0 {
		e.Use(echoMiddleware.ContextTimeout(cfg.API.RequestTimeout))
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      e,
		cache:     c,
		metrics:   metrics.New(),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	var errs []error
	if d.cache != nil {
		errs = append(errs, d.cache.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	_ = d.log.Sync()
	return errors.Join(errs...)
}
