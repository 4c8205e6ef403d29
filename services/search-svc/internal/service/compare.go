package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
	"gridbench/pkg/telemetry"
	"gridbench/pkg/terrain"
	"gridbench/services/search-svc/internal/repository"
)

// CompareInput A* против beam search на одной сетке
type CompareInput struct {
	Grid
	BeamWidths    []int // пусто = ширины по умолчанию
	MaxNodesAStar int   // 0 = по умолчанию
	MaxNodesBeam  int   // 0 = по умолчанию
	Label         string
	BatchID       string // непустой для сценариев эксперимента
}

// BeamOutcome результат beam search одной ширины и вердикт против A*
type BeamOutcome struct {
	Width   int                  `json:"width"`
	Result  *domain.SearchResult `json:"result"`
	Verdict domain.Verdict       `json:"verdict"`
}

// Comparison итог сравнения
type Comparison struct {
	RunID           string               `json:"run_id,omitempty"`
	Label           string               `json:"label,omitempty"`
	Grid            Grid                 `json:"grid"`
	ObservedDensity float64              `json:"observed_density"` // доля препятствий в окне densityWindow от (0, 0)
	AStar           *domain.SearchResult `json:"astar"`
	Beams           []BeamOutcome        `json:"beams"`
}

// densityWindow наибольшее окно, по которому считается ObservedDensity
const densityWindow = 64

// observedDensity доля занятых клеток в левом верхнем окне сетки
func observedDensity(p *prepared) float64 {
	window := domain.Bounds{
		Rows: min(p.in.Bounds.Rows, densityWindow),
		Cols: min(p.in.Bounds.Cols, densityWindow),
	}
	return terrain.Sample(p.req.Obstacles, window)
}

// Results все результаты в порядке выполнения: A*, затем beam по ширинам
func (c *Comparison) Results() []*domain.SearchResult {
	out := make([]*domain.SearchResult, 0, 1+len(c.Beams))
	out = append(out, c.AStar)
	for _, b := range c.Beams {
		out = append(out, b.Result)
	}
	return out
}

// Compare запускает A* один раз и beam search для каждой ширины по очереди,
// чтобы замеры времени не мешали друг другу.
func (s *SearchService) Compare(ctx context.Context, in CompareInput) (*Comparison, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Compare",
		attribute.String(telemetry.AttrScenario, in.Label))
	defer span.End()

	widths := in.BeamWidths
	if len(widths) == 0 {
		widths = s.DefaultBeamWidths()
	}
	for _, w := range widths {
		if w < 0 {
			err := apperror.NewWithField(apperror.CodeInvalidBeamWidth,
				fmt.Sprintf("beam width must be non-negative, got %d", w), "beam_widths")
			telemetry.SetError(ctx, err)
			return nil, err
		}
	}

	// все запросы проверяются до первого запуска
	astarReq, err := s.prepare(SearchInput{
		Grid:      in.Grid,
		Algorithm: domain.AlgorithmAStar,
		MaxNodes:  in.MaxNodesAStar,
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}
	beamReqs := make([]*prepared, len(widths))
	for i, w := range widths {
		beamReqs[i], err = s.prepare(SearchInput{
			Grid:      in.Grid,
			Algorithm: domain.AlgorithmBeam,
			MaxNodes:  in.MaxNodesBeam,
			BeamWidth: w,
		})
		if err != nil {
			telemetry.SetError(ctx, err)
			return nil, err
		}
	}

	astar, err := s.run(ctx, astarReq)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	cmp := &Comparison{
		Label:           in.Label,
		Grid:            in.Grid,
		ObservedDensity: observedDensity(astarReq),
		AStar:           astar,
		Beams:           make([]BeamOutcome, 0, len(widths)),
	}
	for i, w := range widths {
		beam, err := s.run(ctx, beamReqs[i])
		if err != nil {
			telemetry.SetError(ctx, err)
			return nil, err
		}

		verdict := domain.Compare(astar, beam)
		s.metrics.RecordVerdict(verdict)
		telemetry.AddEvent(ctx, "verdict",
			attribute.Int(telemetry.AttrBeamWidth, w),
			attribute.String(telemetry.AttrVerdict, string(verdict)))

		cmp.Beams = append(cmp.Beams, BeamOutcome{Width: w, Result: beam, Verdict: verdict})
	}

	kind := repository.KindCompare
	if in.BatchID != "" {
		kind = repository.KindExperiment
	}
	cmp.RunID = s.persist(ctx, &repository.Run{
		BatchID:    in.BatchID,
		Kind:       kind,
		Label:      in.Label,
		Bounds:     in.Bounds,
		Start:      in.Start,
		Goal:       in.Goal,
		Seed:       in.Seed,
		Density:    in.Density,
		MaxNodes:   s.maxNodes(domain.AlgorithmAStar, in.MaxNodesAStar),
		BeamWidths: append([]int(nil), widths...),
		Results:    cmp.Results(),
	})

	return cmp, nil
}
