package domain

import (
	"fmt"
	"time"
)

// SearchResult итог одного запуска поиска
type SearchResult struct {
	Algorithm      string        `json:"algorithm"`
	BeamWidth      int           `json:"beam_width,omitempty"`
	Path           []Position    `json:"path"`
	Cost           int           `json:"cost"`
	NodesProcessed int           `json:"nodes_processed"`
	LimitReached   bool          `json:"limit_reached"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

// NotFound результат без пути
func NotFound(algorithm string, nodes int, limitReached bool) *SearchResult {
	return &SearchResult{
		Algorithm:      algorithm,
		Path:           []Position{},
		Cost:           Unreachable,
		NodesProcessed: nodes,
		LimitReached:   limitReached,
	}
}

// Found путь найден
func (r *SearchResult) Found() bool {
	return r != nil && len(r.Path) > 0
}

// Label подпись алгоритма для отчётов
func (r *SearchResult) Label() string {
	if r.Algorithm == AlgorithmBeam {
		return fmt.Sprintf("Beam Search (W=%d)", r.BeamWidth)
	}
	return "A*"
}

// Outcome как завершился поиск
type Outcome string

const (
	OutcomeFound     Outcome = "found"
	OutcomeLimit     Outcome = "limit_reached"
	OutcomeExhausted Outcome = "exhausted"
)

// Outcome классифицирует результат
func (r *SearchResult) Outcome() Outcome {
	switch {
	case r.Found():
		return OutcomeFound
	case r.LimitReached:
		return OutcomeLimit
	default:
		return OutcomeExhausted
	}
}

// Verdict итог сравнения A* и beam search на одном сценарии
type Verdict string

const (
	VerdictAStarBetter  Verdict = "astar_better"
	VerdictBeamBetter   Verdict = "beam_better"
	VerdictTie          Verdict = "tie"
	VerdictOnlyAStar    Verdict = "only_astar"
	VerdictOnlyBeam     Verdict = "only_beam"
	VerdictNeitherFound Verdict = "neither"
)

// Compare сравнивает качество путей двух результатов
func Compare(astar, beam *SearchResult) Verdict {
	af, bf := astar.Found(), beam.Found()
	switch {
	case af && bf:
		switch {
		case astar.Cost < beam.Cost:
			return VerdictAStarBetter
		case beam.Cost < astar.Cost:
			return VerdictBeamBetter
		default:
			return VerdictTie
		}
	case af:
		return VerdictOnlyAStar
	case bf:
		return VerdictOnlyBeam
	default:
		return VerdictNeitherFound
	}
}

// Describe человекочитаемое описание вердикта
func (v Verdict) Describe() string {
	switch v {
	case VerdictAStarBetter:
		return "A* found a better (shorter/cheaper) path."
	case VerdictBeamBetter:
		return "Beam Search found a better path (A* might have hit limit or Beam got lucky)."
	case VerdictTie:
		return "Both algorithms found paths of the same quality (or both hit limits similarly)."
	case VerdictOnlyAStar:
		return "A* found a path, but Beam Search did not (possibly due to pruning or hitting limit)."
	case VerdictOnlyBeam:
		return "Beam Search found a path, but A* did not (A* might have hit its limit earlier on a wider search)."
	default:
		return "Neither algorithm found a path (possibly no path exists, or both hit limits)."
	}
}
