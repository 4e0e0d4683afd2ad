package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/anilink/modules/account"
	"github.com/dmitrymomot/anilink/pkg/anilist"
	"github.com/dmitrymomot/anilink/pkg/cookie"
	"github.com/dmitrymomot/anilink/pkg/httpserver"
	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/redis"
	"github.com/dmitrymomot/anilink/pkg/requestid"
	"github.com/dmitrymomot/anilink/svc/exchange"
	"github.com/dmitrymomot/anilink/svc/linking"
	"github.com/dmitrymomot/anilink/svc/workspace"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigs()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.http.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg configs) error {
	log := logger.New(
		logger.WithEnvironment(cfg.app.Env, "anilink"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	loc, err := time.LoadLocation(cfg.account.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.account.Timezone, err)
	}

	cookies, err := cookie.NewFromConfig(cfg.cookie)
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}

	var (
		store       kvstore.Store
		readiness   []func(context.Context) error
		shutdownFns []httpserver.Option
	)
	if cfg.redis.ConnectionURL != "" {
		client, err := redis.Connect(ctx, cfg.redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		rs := redis.NewStorage(client,
			redis.WithKeyPrefix(cfg.redis.KeyPrefix),
			redis.WithTTL(cfg.redis.KeyTTL),
		)
		store = rs
		readiness = append(readiness, redis.Healthcheck(client))
		shutdownFns = append(shutdownFns, httpserver.OnShutdown(func(context.Context) error {
			return rs.Close()
		}))
	} else {
		log.WarnContext(ctx, "REDIS_URL not set, sessions are kept in memory")
		store = kvstore.NewMemory()
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	service := exchange.NewService(cfg.exchange,
		exchange.WithLogger(log),
		exchange.WithHTTPClient(httpClient),
	)

	var exchanger linking.TokenExchanger = service.Direct()
	if cfg.app.ExchangeURL != "" {
		exchanger = exchange.NewClient(cfg.app.ExchangeURL, httpClient)
	}

	registry := workspace.NewRegistry(workspace.Config{
		PocketBaseURL: cfg.app.PocketBaseURL,
		Collection:    cfg.account.Collection,
		AvatarThumb:   cfg.account.AvatarThumb,
		Location:      loc,
		Linking:       cfg.linking,
	}, store, exchanger, anilist.NewClient(anilist.WithHTTPClient(httpClient)),
		workspace.WithLogger(log),
		workspace.WithPocketBaseHTTPClient(httpClient),
	)

	sweepCtx, stopSweep := context.WithCancel(context.WithoutCancel(ctx))
	if cfg.app.SweepInterval > 0 {
		go registry.Run(sweepCtx, cfg.app.SweepInterval, cfg.app.MaxIdle)
	}

	r := chi.NewRouter()
	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, readiness...))
	r.Mount("/", account.Router(account.RouterOptions{
		Registry:       registry,
		Cookies:        cookies,
		Exchange:       service,
		BaseURL:        cfg.app.BaseURL,
		AllowedOrigins: cfg.app.AllowedOrigins,
		Logger:         log,
	}))

	opts := append([]httpserver.Option{
		httpserver.WithLogger(log),
		httpserver.OnShutdown(func(context.Context) error {
			stopSweep()
			registry.Close()
			return nil
		}),
	}, shutdownFns...)

	log.InfoContext(ctx, "starting anilink",
		slog.String("addr", cfg.http.Addr),
		slog.String("pocketbase", cfg.app.PocketBaseURL),
		slog.Bool("redis", cfg.redis.ConnectionURL != ""),
		slog.Bool("remote_exchange", cfg.app.ExchangeURL != ""),
	)
	return httpserver.NewFromConfig(cfg.http, opts...).Run(ctx, r)
}
