// Package searchsvc собирает сервис поиска из конфигурации: логгер,
// телеметрия, метрики, кэш, история запусков, HTTP API и прогон экспериментов.
package searchsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gridbench/pkg/cache"
	"gridbench/pkg/config"
	"gridbench/pkg/logger"
	"gridbench/pkg/metrics"
	"gridbench/pkg/ratelimit"
	"gridbench/pkg/swagger"
	"gridbench/pkg/telemetry"
	"gridbench/services/search-svc/api"
	"gridbench/services/search-svc/internal/algorithms"
	"gridbench/services/search-svc/internal/handlers"
	"gridbench/services/search-svc/internal/middleware"
	"gridbench/services/search-svc/internal/repository"
	"gridbench/services/search-svc/internal/runner"
	"gridbench/services/search-svc/internal/scenario"
	"gridbench/services/search-svc/internal/service"
)

const serviceName = "search-svc"

// App собранные зависимости сервиса
type App struct {
	Config    *config.Config
	Service   *service.SearchService
	Metrics   *metrics.Metrics
	Telemetry *telemetry.Provider
	Log       *slog.Logger

	limiter ratelimit.Limiter
	closers []func() error
}

// NewApp создаёт все компоненты. При ошибке уже открытые ресурсы закрываются.
func NewApp(ctx context.Context, cfg *config.Config) (app *App, err error) {
	app = &App{Config: cfg, Log: logger.WithService(serviceName)}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
			app = nil
		}
	}()

	app.Telemetry, err = telemetry.Init(ctx, telemetry.FromConfig(cfg))
	if err != nil {
		return app, fmt.Errorf("init telemetry: %w", err)
	}
	app.closers = append(app.closers, func() error { return app.Telemetry.Shutdown(context.Background()) })

	app.Metrics = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	app.Metrics.SetServiceInfo(cfg.App.Version, cfg.App.Environment)

	opts := []service.Option{
		service.WithMetrics(app.Metrics),
		service.WithLogger(app.Log),
		service.WithPool(algorithms.NewSearchPool(cfg.Search.Workers)),
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			return app, fmt.Errorf("open cache: %w", err)
		}
		app.closers = append(app.closers, c.Close)
		opts = append(opts, service.WithCache(cache.NewResultCache(c, cfg.Cache.DefaultTTL)))
		app.Log.Info("Result cache enabled", "driver", cfg.Cache.Driver)
	}

	repo, err := repository.Open(ctx, &cfg.Database)
	if err != nil {
		return app, fmt.Errorf("open repository: %w", err)
	}
	app.closers = append(app.closers, repo.Close)
	opts = append(opts, service.WithRepository(repo))
	app.Log.Info("Run history enabled", "driver", cfg.Database.Driver)

	app.Service = service.NewSearchService(service.ConfigFrom(cfg), opts...)
	return app, nil
}

// Handler HTTP API со всеми middleware
func (a *App) Handler() (http.Handler, error) {
	h := handlers.New(a.Service,
		handlers.WithMetrics(a.Metrics),
		handlers.WithLogger(a.Log),
		handlers.WithVersion(a.Config.App.Version),
		handlers.WithMaxBodyBytes(a.Config.HTTP.MaxBodyBytes),
	)

	mws := []func(http.Handler) http.Handler{
		middleware.Recover(a.Log),
		telemetry.HTTPMiddleware,
		middleware.Logging(a.Log),
		middleware.Metrics(a.Metrics),
	}
	if a.Config.HTTP.CORS.Enabled {
		mws = append(mws, middleware.CORS(a.Config.HTTP.CORS))
	}
	if a.Config.RateLimit.Enabled && a.limiter == nil {
		limiter, err := ratelimit.New(ratelimit.FromConfig(a.Config.RateLimit))
		if err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		a.limiter = limiter
		a.closers = append(a.closers, limiter.Close)
		a.Log.Info("Rate limiter initialized",
			"requests", a.Config.RateLimit.Requests,
			"window", a.Config.RateLimit.Window,
			"strategy", a.Config.RateLimit.Strategy)
	}
	if a.limiter != nil {
		mws = append(mws, middleware.RateLimit(middleware.RateLimitConfig{Limiter: a.limiter, Logger: a.Log}))
	}

	var routes http.Handler = h.Routes()
	if a.Config.HTTP.Swagger {
		mux := http.NewServeMux()
		mux.Handle("/", routes)
		swagger.RegisterRoutes(mux, nil, api.Spec())
		routes = mux
	}

	return middleware.Chain(routes, mws...), nil
}

// Runner прогон экспериментов; console получает текстовый лог, если он включён в конфигурации
func (a *App) Runner(console io.Writer) (*runner.Runner, error) {
	opts, err := runner.OptionsFrom(a.Config)
	if err != nil {
		return nil, err
	}
	if a.Config.Report.Console {
		opts.Console = console
	}
	return runner.New(a.Service, opts, runner.WithMetrics(a.Metrics), runner.WithLogger(a.Log)), nil
}

// Scenarios сценарии из search.scenario_file или встроенная таблица
func (a *App) Scenarios() ([]scenario.Scenario, error) {
	if a.Config.Search.ScenarioFile == "" {
		return scenario.Default(), nil
	}
	return scenario.LoadFile(a.Config.Search.ScenarioFile)
}

// Close освобождает ресурсы в обратном порядке открытия
func (a *App) Close(_ context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
