package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"gridbench/pkg/domain"
)

// Ключи атрибутов поиска
const (
	AttrGridRows  = "grid.rows"
	AttrGridCols  = "grid.cols"
	AttrStart     = "grid.start"
	AttrGoal      = "grid.goal"
	AttrSeed      = "grid.seed"
	AttrDensity   = "grid.density"
	AttrAlgorithm = "search.algorithm"
	AttrBeamWidth = "search.beam_width"
	AttrMaxNodes  = "search.max_nodes"
	AttrFound     = "search.found"
	AttrCost      = "search.cost"
	AttrNodes     = "search.nodes_processed"
	AttrLimit     = "search.limit_reached"
	AttrCacheHit  = "search.cache_hit"
	AttrScenario  = "experiment.scenario"
	AttrRunID     = "experiment.run_id"
	AttrVerdict   = "experiment.verdict"
)

// GridAttributes описывают сетку и концы пути
func GridAttributes(b domain.Bounds, start, goal domain.Position, seed int64, density float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGridRows, b.Rows),
		attribute.Int(AttrGridCols, b.Cols),
		attribute.String(AttrStart, start.String()),
		attribute.String(AttrGoal, goal.String()),
		attribute.Int64(AttrSeed, seed),
		attribute.Float64(AttrDensity, density),
	}
}

// RequestAttributes параметры запуска алгоритма
func RequestAttributes(algorithm string, beamWidth, maxNodes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrBeamWidth, beamWidth),
		attribute.Int(AttrMaxNodes, maxNodes),
	}
}

// ResultAttributes итог поиска
func ResultAttributes(r *domain.SearchResult) []attribute.KeyValue {
	if r == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(AttrFound, r.Found()),
		attribute.Int(AttrCost, r.Cost),
		attribute.Int(AttrNodes, r.NodesProcessed),
		attribute.Bool(AttrLimit, r.LimitReached),
	}
}
