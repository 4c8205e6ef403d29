// Package service связывает ядро поиска с кэшем, метриками, трейсингом и
// историей запусков.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gridbench/pkg/apperror"
	"gridbench/pkg/cache"
	"gridbench/pkg/config"
	"gridbench/pkg/domain"
	"gridbench/pkg/logger"
	"gridbench/pkg/metrics"
	"gridbench/pkg/telemetry"
	"gridbench/services/search-svc/internal/algorithms"
	"gridbench/services/search-svc/internal/repository"
)

// Config параметры сервиса
type Config struct {
	MaxNodesAStar int
	MaxNodesBeam  int
	MaxNodesLimit int   // верхняя граница лимита, принимаемого от клиента
	BeamWidths    []int // ширины для Compare по умолчанию
	Workers       int
	Timeout       time.Duration // ожидание свободного слота в пуле
	CacheTTL      time.Duration
}

// ConfigFrom собирает Config из конфигурации приложения
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxNodesAStar: cfg.Search.MaxNodesAStar,
		MaxNodesBeam:  cfg.Search.MaxNodesBeam,
		MaxNodesLimit: cfg.Search.MaxNodesLimit,
		BeamWidths:    cfg.Search.BeamWidths,
		Workers:       cfg.Search.Workers,
		Timeout:       cfg.Search.Timeout,
		CacheTTL:      cfg.Cache.DefaultTTL,
	}
}

// SearchService выполняет поиски и сравнения
type SearchService struct {
	cfg     Config
	pool    *algorithms.SearchPool
	cache   *cache.ResultCache
	repo    repository.Repository
	metrics *metrics.Metrics
	log     *slog.Logger
}

// Option настраивает SearchService
type Option func(*SearchService)

// WithCache включает кэш результатов
func WithCache(rc *cache.ResultCache) Option {
	return func(s *SearchService) { s.cache = rc }
}

// WithRepository включает сохранение истории
func WithRepository(repo repository.Repository) Option {
	return func(s *SearchService) { s.repo = repo }
}

// WithMetrics задаёт набор метрик вместо глобального
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SearchService) { s.metrics = m }
}

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(s *SearchService) { s.log = l }
}

// WithPool задаёт общий пул поисков
func WithPool(p *algorithms.SearchPool) Option {
	return func(s *SearchService) { s.pool = p }
}

// NewSearchService создаёт сервис. Нулевые лимиты заменяются значениями по умолчанию.
func NewSearchService(cfg Config, opts ...Option) *SearchService {
	if cfg.MaxNodesAStar <= 0 {
		cfg.MaxNodesAStar = domain.DefaultMaxNodes
	}
	if cfg.MaxNodesBeam <= 0 {
		cfg.MaxNodesBeam = domain.DefaultMaxNodes
	}
	if cfg.MaxNodesLimit <= 0 {
		cfg.MaxNodesLimit = max(cfg.MaxNodesAStar, cfg.MaxNodesBeam)
	}
	if len(cfg.BeamWidths) == 0 {
		cfg.BeamWidths = domain.DefaultBeamWidths
	}

	s := &SearchService{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.pool == nil {
		s.pool = algorithms.NewSearchPool(cfg.Workers)
	}
	if s.metrics == nil {
		s.metrics = metrics.Get()
	}
	if s.log == nil {
		s.log = logger.WithService("search-svc")
	}
	return s
}

// Limits лимиты узлов по умолчанию для A* и beam search
func (s *SearchService) Limits() (astar, beam int) {
	return s.cfg.MaxNodesAStar, s.cfg.MaxNodesBeam
}

// DefaultBeamWidths ширины луча, с которыми сравнивается A*
func (s *SearchService) DefaultBeamWidths() []int {
	return append([]int(nil), s.cfg.BeamWidths...)
}

// Grid процедурная сетка и концы пути
type Grid struct {
	Bounds  domain.Bounds   `json:"bounds"`
	Start   domain.Position `json:"start"`
	Goal    domain.Position `json:"goal"`
	Seed    int64           `json:"seed"`
	Density float64         `json:"density"`
}

// SearchInput одиночный поиск
type SearchInput struct {
	Grid
	Algorithm string
	MaxNodes  int // 0 = лимит по умолчанию для алгоритма
	BeamWidth int
	Label     string
}

// Search выполняет один поиск и сохраняет его в историю.
// Ошибки конфигурации возвращаются как *apperror.Error до начала поиска.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*domain.SearchResult, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search")
	defer span.End()

	res, err := s.solve(ctx, in)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, "", err
	}

	runID := s.persist(ctx, &repository.Run{
		Kind:       repository.KindSearch,
		Label:      in.Label,
		Bounds:     in.Bounds,
		Start:      in.Start,
		Goal:       in.Goal,
		Seed:       in.Seed,
		Density:    in.Density,
		MaxNodes:   s.maxNodes(in.Algorithm, in.MaxNodes),
		BeamWidths: beamWidthsOf(res),
		Results:    []*domain.SearchResult{res},
	})
	return res, runID, nil
}

// prepared проверенный запрос, готовый к запуску
type prepared struct {
	in       SearchInput
	alg      string
	maxNodes int
	req      *algorithms.Request
}

// prepare проверяет вход и собирает запрос ядра, ничего не запуская
func (s *SearchService) prepare(in SearchInput) (*prepared, error) {
	alg := in.Algorithm
	if alg == "" {
		alg = domain.AlgorithmAStar
	}
	maxNodes := s.maxNodes(alg, in.MaxNodes)

	if maxNodes > s.cfg.MaxNodesLimit {
		return nil, apperror.NewWithField(apperror.CodeInvalidNodeLimit,
			fmt.Sprintf("node limit %d exceeds maximum %d", maxNodes, s.cfg.MaxNodesLimit), "max_nodes")
	}

	req := algorithms.NewProceduralRequest(alg, in.Bounds, in.Start, in.Goal, in.Seed, in.Density).
		WithMaxNodes(maxNodes).
		WithBeamWidth(in.BeamWidth)
	if err := algorithms.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &prepared{in: in, alg: alg, maxNodes: maxNodes, req: req}, nil
}

// solve проверяет вход и запускает его
func (s *SearchService) solve(ctx context.Context, in SearchInput) (*domain.SearchResult, error) {
	p, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p)
}

// run смотрит кэш и запускает ядро в пуле
func (s *SearchService) run(ctx context.Context, p *prepared) (*domain.SearchResult, error) {
	in, alg, maxNodes, req := p.in, p.alg, p.maxNodes, p.req

	ctx, span := telemetry.StartSpan(ctx, "SearchService.solve",
		append(telemetry.GridAttributes(in.Bounds, in.Start, in.Goal, in.Seed, in.Density),
			telemetry.RequestAttributes(alg, in.BeamWidth, maxNodes)...)...)
	defer span.End()

	key := cache.SearchKey{
		Algorithm: alg,
		Bounds:    in.Bounds,
		Start:     in.Start,
		Goal:      in.Goal,
		Seed:      in.Seed,
		Density:   in.Density,
		MaxNodes:  maxNodes,
		BeamWidth: in.BeamWidth,
	}

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("Result cache lookup failed", "error", err)
		}
		s.metrics.RecordCacheLookup(found)
		if found {
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			span.SetAttributes(telemetry.ResultAttributes(cached)...)
			return cached, nil
		}
	}
	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	waitCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	res, err := s.pool.SolvePooled(waitCtx, req)
	if err == nil {
		err = checkPath(p, res)
	}
	if err != nil {
		s.metrics.RecordSearchError(alg)
		return nil, err
	}

	s.metrics.RecordSearch(res)
	span.SetAttributes(telemetry.ResultAttributes(res)...)
	if res.LimitReached {
		telemetry.AddEvent(ctx, "node_limit_reached", attribute.Int(telemetry.AttrMaxNodes, maxNodes))
	}

	logger.WithSearch(s.log, alg, res.BeamWidth).Debug("Search finished",
		"found", res.Found(),
		"cost", res.Cost,
		"nodes", res.NodesProcessed,
		"limit_reached", res.LimitReached,
		"elapsed", res.Elapsed,
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res, s.cfg.CacheTTL); err != nil {
			s.log.Warn("Failed to cache search result", "error", err)
		}
	}

	return res, nil
}

// checkPath сверяет найденный путь с сеткой: концы, единичные шаги по
// свободным клеткам и длину, равную стоимости
func checkPath(p *prepared, res *domain.SearchResult) error {
	if !res.Found() {
		return nil
	}
	in := p.in
	if domain.ValidatePath(in.Bounds, res.Path, in.Start, in.Goal, p.req.Obstacles.IsObstacle) &&
		domain.PathCost(res.Path) == res.Cost {
		return nil
	}
	return apperror.New(apperror.CodeInternal, "search returned an inconsistent path").
		WithDetails("algorithm", res.Algorithm).
		WithDetails("cost", res.Cost).
		WithDetails("path_len", len(res.Path))
}

func (s *SearchService) maxNodes(algorithm string, requested int) int {
	if requested != 0 {
		return requested
	}
	if algorithm == domain.AlgorithmBeam {
		return s.cfg.MaxNodesBeam
	}
	return s.cfg.MaxNodesAStar
}

// persist сохраняет запуск; ошибка хранилища не отменяет результат поиска
func (s *SearchService) persist(ctx context.Context, run *repository.Run) string {
	if s.repo == nil {
		return ""
	}
	if err := s.repo.Save(ctx, run); err != nil {
		s.log.Warn("Failed to save run", "kind", run.Kind, "error", err)
		return ""
	}
	telemetry.SetAttributes(ctx, attribute.String(telemetry.AttrRunID, run.ID))
	return run.ID
}

// History список сохранённых запусков
func (s *SearchService) History(ctx context.Context, filter repository.ListFilter) ([]*repository.Run, int64, error) {
	if s.repo == nil {
		return nil, 0, errHistoryDisabled
	}
	return s.repo.List(ctx, filter)
}

// GetRun запуск со всеми результатами
func (s *SearchService) GetRun(ctx context.Context, id string) (*repository.Run, error) {
	if s.repo == nil {
		return nil, errHistoryDisabled
	}
	return s.repo.Get(ctx, id)
}

// Ping проверяет хранилище истории; без хранилища всегда nil
func (s *SearchService) Ping(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Ping(ctx)
}

var errHistoryDisabled = apperror.New(apperror.CodeUnavailable, "run history is disabled")

func beamWidthsOf(results ...*domain.SearchResult) []int {
	widths := []int{}
	for _, r := range results {
		if r.Algorithm == domain.AlgorithmBeam {
			widths = append(widths, r.BeamWidth)
		}
	}
	return widths
}
