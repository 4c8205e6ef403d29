// Package main is the entry point for search-svc.
//
// search-svc compares optimal A* against resource-bounded beam search on
// implicit procedural grids. It runs in one of two modes:
//
//	search-svc run   - run the experiment table and write reports
//	search-svc serve - expose searches and run history over HTTP
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command line flags (run mode only)
//  2. Environment variables (prefix: GRIDBENCH_)
//  3. Config file (-config, CONFIG_PATH, gridbench.yaml, config/gridbench.yaml,
//     /etc/gridbench/gridbench.yaml)
//  4. Default values
//
// Key options (environment variable format):
//
//	# Search
//	GRIDBENCH_SEARCH_MAX_NODES_ASTAR - A* node limit (default: 5000000)
//	GRIDBENCH_SEARCH_MAX_NODES_BEAM  - Beam search node limit (default: 5000000)
//	GRIDBENCH_SEARCH_WORKERS         - Parallel scenarios and searches (default: 1)
//	GRIDBENCH_SEARCH_SCENARIO_FILE   - YAML scenario table, empty uses the built-in one
//
//	# Reports
//	GRIDBENCH_REPORT_OUTPUT_DIR - Directory for report files (default: .)
//	GRIDBENCH_REPORT_FORMATS    - csv,text,json,excel,pdf (default: csv,text)
//	GRIDBENCH_REPORT_CONSOLE    - Mirror the text log to stdout (default: true)
//
//	# Run history
//	GRIDBENCH_DATABASE_DRIVER - memory, sqlite, postgres (default: memory)
//
//	# HTTP
//	GRIDBENCH_HTTP_PORT                - API port (default: 8080)
//	GRIDBENCH_RATE_LIMIT_ENABLED       - Per-client rate limiting (default: true)
//	GRIDBENCH_CACHE_ENABLED            - Result cache (default: false)
//	GRIDBENCH_CACHE_DRIVER             - memory, redis (default: memory)
//	GRIDBENCH_TRACING_ENABLED          - OpenTelemetry tracing (default: false)
//
// # Examples
//
// Reproduce the default experiment and write CSV and text logs:
//
//	search-svc run
//
// Run scenarios 1 and 4 of the table in parallel and add a PDF report:
//
//	search-svc run -names 1,4 -workers 4 -formats csv,text,pdf
//
// Serve the API:
//
//	search-svc serve
//	curl -s -XPOST localhost:8080/v1/search -d '{"start":[0,0],"goal":[30,30],"seed":506,"density":0.35}'
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM cancel a running experiment; reports are not written for a
// cancelled run. In serve mode the server stops accepting connections and waits
// up to http.shutdown_timeout for in-flight requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gridbench/pkg/config"
	"gridbench/pkg/logger"
	searchsvc "gridbench/services/search-svc"
	"gridbench/services/search-svc/internal/scenario"
)

const usage = `usage: search-svc <command> [flags]

commands:
  run    run the experiment table and write reports
  serve  start the HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "serve":
		err = serveCmd(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal("search-svc failed", "command", os.Args[1], "error", err)
	}
}

// loadConfig читает файл из -config или стандартные пути и настраивает логгер
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.InitWithConfig(logger.FromConfig(cfg.Log))
	return cfg, nil
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	scenarioFile := fs.String("scenarios", "", "YAML scenario table (overrides search.scenario_file)")
	names := fs.String("names", "", "comma-separated scenario numbers or names to run")
	outDir := fs.String("out", "", "output directory for reports")
	formats := fs.String("formats", "", "comma-separated report formats: csv,text,json,excel,pdf")
	workers := fs.Int("workers", 0, "scenarios run in parallel")
	quiet := fs.Bool("quiet", false, "do not mirror the text log to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *scenarioFile != "" {
		cfg.Search.ScenarioFile = *scenarioFile
	}
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}
	if *formats != "" {
		cfg.Report.Formats = splitList(*formats)
	}
	if *workers > 0 {
		cfg.Search.Workers = *workers
	}
	if *quiet {
		cfg.Report.Console = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := searchsvc.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(app)

	list, err := app.Scenarios()
	if err != nil {
		return err
	}
	if *names != "" {
		wanted := splitList(*names)
		list = scenario.Select(list, wanted...)
		if len(list) == 0 {
			return fmt.Errorf("no scenarios match %q", *names)
		}
	}

	r, err := app.Runner(os.Stdout)
	if err != nil {
		return err
	}

	summary, err := r.Run(ctx, list)
	if err != nil {
		return err
	}

	for f, path := range summary.Files {
		logger.Info("Report written", "format", f, "path", path)
	}
	if summary.Failed > 0 {
		logger.Warn("Some scenarios failed", "failed", summary.Failed, "total", len(list))
	}
	return nil
}

func serveCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	port := fs.Int("port", 0, "HTTP port (overrides http.port)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.HTTP.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := searchsvc.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(app)

	handler, err := app.Handler()
	if err != nil {
		return err
	}

	// /metrics уже есть в API; отдельный порт только если он отличается
	if cfg.Metrics.Enabled && cfg.Metrics.Port > 0 && cfg.Metrics.Port != cfg.HTTP.Port {
		go func() {
			if err := app.Metrics.StartMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting search service",
			"port", cfg.HTTP.Port,
			"environment", cfg.App.Environment,
			"version", cfg.App.Version,
			"cache_enabled", cfg.Cache.Enabled,
			"history_driver", cfg.Database.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down search service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func closeApp(app *searchsvc.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		logger.Warn("Failed to release resources", "error", err)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
