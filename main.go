package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lapu-lapu-poc/server/internal/calllog"
	"github.com/lapu-lapu-poc/server/internal/catalog"
	"github.com/lapu-lapu-poc/server/internal/core"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/lapu-lapu-poc/server/internal/observers"
	"github.com/lapu-lapu-poc/server/internal/ratelimit"
	"github.com/lapu-lapu-poc/server/internal/server"
	"github.com/lapu-lapu-poc/server/internal/tools"
	"github.com/lapu-lapu-poc/server/internal/webhook"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	pkgredis "github.com/lapu-lapu-poc/server/pkg/redis"
	"github.com/lapu-lapu-poc/server/pkg/retell"
)

// AppConfig defines all configurable parameters of the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure. Redis is optional; without it rate limits are per process.
	Redis pkgredis.Config

	model.ServerConfig
	model.CatalogConfig
	model.RetellConfig
	model.RateLimitConfig
}

func main() {
	envErr := godotenv.Load(".env")

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})
	if envErr != nil {
		logx.Warn().Err(envErr).Msg("could not load .env file, using process environment")
	}
	gin.SetMode(env.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore(catalog.DefaultPaths(cfg.CatalogConfig.Path)...)
	logx.Info().Int("products", store.Len()).Str("source", store.Source()).Msg("catalog ready")

	limiter := ratelimit.NewMemory(cfg.RateLimitConfig)
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()

		limiter, err = ratelimit.NewRedis(cfg.RateLimitConfig, rdb)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis rate limit store")
		}
		logx.Info().Msg("rate limits shared through Redis")
	}

	if cfg.RetellConfig.APIKey == "" {
		logx.Warn().Msg("RETELL_API_KEY is not set; web call endpoints will fail")
	}

	metrics := observers.NewMetrics()
	ledger := fulfillment.NewLedger()
	calls := calllog.NewRecorder()

	srv := server.New(server.Deps{
		Catalog: store,
		Calls:   calls,
		Ledger:  ledger,
		Dispatcher: tools.NewDispatcher(store, ledger, calls,
			tools.WithCallbacks(observers.NewToolCallbacks(metrics)),
			tools.WithMetrics(metrics),
		),
		Webhooks:  webhook.NewValidator(calls, metrics),
		Limiter:   limiter,
		Platform:  retell.New(cfg.RetellConfig),
		Metrics:   metrics,
		StaticDir: cfg.ServerConfig.StaticDir,
	})

	logx.Info().
		Str("environment", env.String()).
		Int64("per_identity_hourly", cfg.RateLimitConfig.PerIdentityHourly).
		Int64("daily_calls", cfg.RateLimitConfig.DailyCalls).
		Msg("starting pharmacy voice agent server")

	if err := srv.Run(ctx, ":"+cfg.ServerConfig.Port); err != nil {
		logx.Fatal().Err(err).Msg("http server stopped")
	}
	logx.Info().Msg("server stopped")
}
