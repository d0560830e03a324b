// Command api runs the billing HTTP service: plan catalog, coupon
// validation, subscriptions, payment methods and billing history.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cinestream/billing/internal/api"
	"github.com/cinestream/billing/internal/billing"
	"github.com/cinestream/billing/internal/billing/pgstore"
	"github.com/cinestream/billing/internal/config"
	"github.com/cinestream/billing/internal/httpserver"
	"github.com/cinestream/billing/internal/logger"
	"github.com/cinestream/billing/internal/pg"
	"github.com/cinestream/billing/internal/ratelimit"
	"github.com/cinestream/billing/internal/redis"
)

type appConfig struct {
	RateLimit         int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"` // requests per window, per user or IP
	RateLimitInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`
	RequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.New(logCfg, os.Stdout)
	logger.SetAsDefault(log)

	var (
		appCfg  appConfig
		pgCfg   pg.Config
		rdsCfg  redis.Config
		httpCfg httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&rdsCfg)
	config.MustLoad(&httpCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// The limiter counter lives in Redis so replicas share one budget. When
	// Redis is unreachable the service still starts with a per-process
	// fallback; limits are then enforced per replica instead of globally.
	var (
		limitStore  ratelimit.Store
		healthcheck []func(context.Context) error
	)
	healthcheck = append(healthcheck, pg.Healthcheck(pool))

	rds, err := redis.Connect(ctx, rdsCfg)
	if err != nil {
		log.WarnContext(ctx, "redis unavailable, using in-process rate limiting", "error", err)
		limitStore = ratelimit.NewMemoryStore()
	} else {
		defer func() { _ = rds.Close() }()
		limitStore = ratelimit.NewRedisStore(rds, "billing:ratelimit")
		healthcheck = append(healthcheck, redis.Healthcheck(rds))
	}

	limiter, err := ratelimit.NewFixedWindow(limitStore, appCfg.RateLimit, appCfg.RateLimitInterval)
	if err != nil {
		return fmt.Errorf("build rate limiter: %w", err)
	}

	svc := billing.NewService(pgstore.New(pool))

	router := api.NewRouter(svc, log, api.RouterOptions{
		RateLimit:      ratelimit.Middleware(limiter, ratelimit.ByHeaderOrIP(api.UserIDHeader)),
		Health:         httpserver.HealthCheckHandler(log, healthcheck...),
		RequestTimeout: appCfg.RequestTimeout,
	})

	return httpserver.New(httpCfg, log).Run(ctx, router)
}
