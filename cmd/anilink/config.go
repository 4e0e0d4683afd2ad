package main

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/anilink/pkg/config"
	"github.com/dmitrymomot/anilink/pkg/cookie"
	"github.com/dmitrymomot/anilink/pkg/httpserver"
	"github.com/dmitrymomot/anilink/pkg/redis"
	"github.com/dmitrymomot/anilink/svc/account"
	"github.com/dmitrymomot/anilink/svc/exchange"
	"github.com/dmitrymomot/anilink/svc/linking"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	BaseURL        string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	PocketBaseURL  string        `env:"POCKETBASE_URL" envDefault:"https://anna.clementlopes.site"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ExchangeURL    string        `env:"ANILIST_EXCHANGE_URL"` // remote token exchange; empty runs it in-process
	SweepInterval  time.Duration `env:"WORKSPACE_SWEEP_INTERVAL" envDefault:"5m"`
	MaxIdle        time.Duration `env:"WORKSPACE_MAX_IDLE" envDefault:"30m"`
}

type configs struct {
	app      appConfig
	http     httpserver.Config
	cookie   cookie.Config
	redis    redis.Config
	account  account.Config
	exchange exchange.Config
	linking  linking.Config
}

func loadConfigs() (configs, error) {
	var c configs
	loaders := []struct {
		name string
		load func() error
	}{
		{"app", func() error { return config.Load(&c.app) }},
		{"http", func() error { return config.Load(&c.http) }},
		{"cookie", func() error { return config.Load(&c.cookie) }},
		{"redis", func() error { return config.Load(&c.redis) }},
		{"account", func() error { return config.Load(&c.account) }},
		{"exchange", func() error { return config.Load(&c.exchange) }},
		{"linking", func() error { return config.Load(&c.linking) }},
	}
	for _, l := range loaders {
		if err := l.load(); err != nil {
			return configs{}, fmt.Errorf("load %s config: %w", l.name, err)
		}
	}
	return c, nil
}
