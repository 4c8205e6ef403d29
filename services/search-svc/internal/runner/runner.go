// Package runner прогоняет таблицу сценариев через сервис поиска и пишет отчёты.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gridbench/pkg/config"
	"gridbench/pkg/logger"
	"gridbench/pkg/metrics"
	"gridbench/services/search-svc/internal/report"
	"gridbench/services/search-svc/internal/scenario"
	"gridbench/services/search-svc/internal/service"
)

// Options параметры прогона
type Options struct {
	OutputDir string
	BaseName  string
	Formats   []report.Format
	Title     string
	Author    string
	PDF       config.PDFConfig

	// Console получает текстовый лог по мере выполнения сценариев; nil отключает вывод
	Console io.Writer

	// Workers сколько сценариев выполняется одновременно; 0 и 1 означают по очереди
	Workers int
}

// OptionsFrom собирает Options из конфигурации. Console заполняется вызывающим.
func OptionsFrom(cfg *config.Config) (Options, error) {
	formats := make([]report.Format, 0, len(cfg.Report.Formats))
	for _, name := range cfg.Report.Formats {
		f, err := report.ParseFormat(name)
		if err != nil {
			return Options{}, err
		}
		formats = append(formats, f)
	}
	return Options{
		OutputDir: cfg.Report.OutputDir,
		BaseName:  cfg.Report.BaseName,
		Formats:   formats,
		Title:     cfg.Report.Title,
		PDF:       cfg.Report.PDF,
		Workers:   cfg.Search.Workers,
	}, nil
}

// Runner выполняет эксперимент
type Runner struct {
	svc     *service.SearchService
	opts    Options
	metrics *metrics.Metrics
	log     *slog.Logger
}

// Option настраивает Runner
type Option func(*Runner)

// WithMetrics задаёт набор метрик вместо глобального
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New создаёт Runner
func New(svc *service.SearchService, opts Options, options ...Option) *Runner {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.BaseName == "" {
		opts.BaseName = "pathfinding_results"
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []report.Format{report.FormatCSV, report.FormatText}
	}

	r := &Runner{svc: svc, opts: opts}
	for _, o := range options {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.Get()
	}
	if r.log == nil {
		r.log = logger.WithService("search-svc")
	}
	return r
}

// Summary итог прогона
type Summary struct {
	RunID    string
	Data     *report.ReportData
	Files    map[report.Format]string
	Failed   int
	Duration time.Duration
}

// Run выполняет все сценарии и записывает отчёты. Ошибка отдельного сценария
// попадает в отчёт и не прерывает прогон; отмена контекста прерывает.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*Summary, error) {
	if err := scenario.Validate(scenarios); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := uuid.NewString()
	log := logger.WithRunID(r.log, runID)

	astarLimit, beamLimit := r.svc.Limits()
	data := &report.ReportData{
		RunID:         runID,
		Title:         r.opts.Title,
		Author:        r.opts.Author,
		GeneratedAt:   started,
		MaxNodesAStar: astarLimit,
		MaxNodesBeam:  beamLimit,
		CSVFile:       r.path(report.FormatCSV),
		TextFile:      r.path(report.FormatText),
		Scenarios:     make([]*report.ScenarioResult, len(scenarios)),
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	log.Info("experiment started", "scenarios", len(scenarios), "workers", r.opts.Workers)
	if r.opts.Console != nil {
		report.WritePreamble(r.opts.Console, data)
	}

	var err error
	if r.opts.Workers > 1 {
		err = r.runParallel(ctx, log, data, scenarios)
	} else {
		err = r.runSequential(ctx, log, data, scenarios)
	}
	if err != nil {
		if done := completed(data); done > 0 {
			log.Warn("experiment interrupted, partial reports kept",
				"completed", done, "csv", data.CSVFile, "text", data.TextFile, "error", err)
		}
		return nil, err
	}

	sum := &Summary{RunID: runID, Data: data, Files: make(map[report.Format]string, len(r.opts.Formats))}
	for _, s := range data.Scenarios {
		if s.Err != "" {
			sum.Failed++
		}
	}

	if err := r.writeReports(ctx, data, sum); err != nil {
		return nil, err
	}
	if r.opts.Console != nil {
		report.WriteClosing(r.opts.Console, data)
	}

	sum.Duration = time.Since(started)
	log.Info("experiment finished",
		"scenarios", len(scenarios),
		"failed", sum.Failed,
		"duration", sum.Duration)
	return sum, nil
}

func (r *Runner) runSequential(ctx context.Context, log *slog.Logger, data *report.ReportData, scenarios []scenario.Scenario) error {
	for i, sc := range scenarios {
		res, err := r.runScenario(ctx, log, data.RunID, i+1, sc)
		if err != nil {
			return err
		}
		data.Scenarios[i] = res
		if r.opts.Console != nil {
			report.WriteScenario(r.opts.Console, data, res)
		}
		r.checkpoint(log, data, i+1)
	}
	return nil
}

// runParallel выполняет сценарии одновременно, а в консоль выводит их
// в исходном порядке по мере готовности префикса.
func (r *Runner) runParallel(ctx context.Context, log *slog.Logger, data *report.ReportData, scenarios []scenario.Scenario) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	var (
		mu   sync.Mutex
		next int
	)
	flush := func() {
		from := next
		for next < len(data.Scenarios) && data.Scenarios[next] != nil {
			if r.opts.Console != nil {
				report.WriteScenario(r.opts.Console, data, data.Scenarios[next])
			}
			next++
		}
		if next > from {
			r.checkpoint(log, data, next)
		}
	}

	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := r.runScenario(gctx, log, data.RunID, i+1, sc)
			if err != nil {
				return err
			}
			mu.Lock()
			data.Scenarios[i] = res
			flush()
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// runScenario сравнивает A* с каждой шириной луча сценария.
// Возвращает ошибку только при отмене контекста.
func (r *Runner) runScenario(ctx context.Context, log *slog.Logger, runID string, index int, sc scenario.Scenario) (*report.ScenarioResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := logger.WithScenario(log, index, sc.Name)
	timer := metrics.NewTimer(r.metrics.ScenarioDuration)

	res := &report.ScenarioResult{
		Index:   index,
		Name:    sc.Name,
		Bounds:  sc.Bounds,
		Start:   sc.Start,
		Goal:    sc.Goal,
		Seed:    sc.Seed,
		Density: sc.Density,
	}

	cmp, err := r.svc.Compare(ctx, service.CompareInput{
		Grid: service.Grid{
			Bounds:  sc.Bounds,
			Start:   sc.Start,
			Goal:    sc.Goal,
			Seed:    sc.Seed,
			Density: sc.Density,
		},
		BeamWidths: sc.BeamWidths,
		Label:      sc.Name,
		BatchID:    runID,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.metrics.RecordScenario(true)
		l.Error("scenario failed", "error", err)
		res.Err = err.Error()
		return res, nil
	}

	res.AStar = cmp.AStar
	for _, b := range cmp.Beams {
		res.Beams = append(res.Beams, report.BeamResult{Width: b.Width, Result: b.Result, Verdict: b.Verdict})
	}
	r.metrics.RecordScenario(false)
	l.Info("scenario completed",
		"duration", timer.ObserveDuration(),
		"astar_found", cmp.AStar.Found(),
		"astar_cost", cmp.AStar.Cost,
		"beam_widths", len(cmp.Beams))
	return res, nil
}

func (r *Runner) writeReports(ctx context.Context, data *report.ReportData, sum *Summary) error {
	for _, f := range r.opts.Formats {
		g, err := r.generator(f)
		if err != nil {
			return err
		}
		out, err := g.Generate(ctx, data)
		if err != nil {
			return fmt.Errorf("generate %s report: %w", f, err)
		}
		path := r.path(f)
		if err := writeFileAtomic(path, out); err != nil {
			return fmt.Errorf("write %s report: %w", f, err)
		}
		sum.Files[f] = path
		r.log.Debug("report written", "format", string(f), "path", path, "bytes", len(out))
	}
	return nil
}

// checkpoint переписывает CSV и текстовый лог по первым done сценариям.
// Текстовый лог пишется без заключительной строки.
func (r *Runner) checkpoint(log *slog.Logger, data *report.ReportData, done int) {
	partial := *data
	partial.Scenarios = data.Scenarios[:done]

	for _, f := range r.opts.Formats {
		var buf bytes.Buffer
		switch f {
		case report.FormatCSV:
			out, err := report.NewCSVGenerator().Generate(context.Background(), &partial)
			if err != nil {
				log.Warn("checkpoint failed", "format", string(f), "error", err)
				continue
			}
			buf.Write(out)
		case report.FormatText:
			report.WritePreamble(&buf, &partial)
			for _, sc := range partial.Scenarios {
				report.WriteScenario(&buf, &partial, sc)
			}
		default:
			continue
		}
		if err := writeFileAtomic(r.path(f), buf.Bytes()); err != nil {
			log.Warn("checkpoint failed", "format", string(f), "error", err)
		}
	}
}

// completed длина готового префикса сценариев
func completed(data *report.ReportData) int {
	n := 0
	for n < len(data.Scenarios) && data.Scenarios[n] != nil {
		n++
	}
	return n
}

// writeFileAtomic пишет во временный файл рядом и переименовывает его в path
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Runner) generator(f report.Format) (report.Generator, error) {
	if f == report.FormatPDF && r.opts.PDF != (config.PDFConfig{}) {
		return report.NewPDFGeneratorWithConfig(r.opts.PDF), nil
	}
	return report.New(f)
}

func (r *Runner) path(f report.Format) string {
	return filepath.Join(r.opts.OutputDir, f.FileName(r.opts.BaseName))
}
