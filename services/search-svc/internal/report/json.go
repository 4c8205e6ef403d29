package report

import (
	"context"
	"encoding/json"
	"time"

	"gridbench/pkg/domain"
)

// JSONGenerator машиночитаемый дамп эксперимента
type JSONGenerator struct {
	// IncludePaths добавляет пути целиком; по умолчанию только длина пути
	IncludePaths bool
}

// NewJSONGenerator создаёт генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (g *JSONGenerator) Format() Format { return FormatJSON }

// JSONReport корневой объект
type JSONReport struct {
	Metadata   JSONMetadata     `json:"metadata"`
	Scenarios  []JSONScenario   `json:"scenarios"`
	Statistics []JSONStatistics `json:"statistics"`
	Verdicts   map[string]int   `json:"verdicts"`
}

type JSONMetadata struct {
	RunID         string `json:"runId,omitempty"`
	Title         string `json:"title"`
	GeneratedAt   string `json:"generatedAt"`
	MaxNodesAStar int    `json:"maxNodesAStar"`
	MaxNodesBeam  int    `json:"maxNodesBeam"`
}

type JSONScenario struct {
	Index   int          `json:"index"`
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	Start   [2]int       `json:"start"`
	Goal    [2]int       `json:"goal"`
	Seed    int64        `json:"seed"`
	Density float64      `json:"density"`
	Error   string       `json:"error,omitempty"`
	Results []JSONResult `json:"results"`
}

type JSONResult struct {
	Algorithm      string   `json:"algorithm"`
	Label          string   `json:"label"`
	BeamWidth      *int     `json:"beamWidth,omitempty"`
	Found          bool     `json:"found"`
	Cost           *int     `json:"cost"`
	PathLength     int      `json:"pathLength"`
	Path           [][2]int `json:"path,omitempty"`
	NodesProcessed int      `json:"nodesProcessed"`
	TimeSeconds    float64  `json:"timeSeconds"`
	LimitReached   bool     `json:"limitReached"`
	Verdict        string   `json:"verdict,omitempty"`
}

type JSONStatistics struct {
	Label          string  `json:"label"`
	Runs           int     `json:"runs"`
	Found          int     `json:"found"`
	LimitReached   int     `json:"limitReached"`
	SuccessRate    float64 `json:"successRate"`
	AverageCost    float64 `json:"averageCost"`
	AverageNodes   float64 `json:"averageNodes"`
	AverageSeconds float64 `json:"averageSeconds"`
}

// Generate кодирует отчёт с отступами
func (g *JSONGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	rep := JSONReport{
		Metadata: JSONMetadata{
			RunID:         data.RunID,
			Title:         data.title(),
			GeneratedAt:   generated.UTC().Format(time.RFC3339),
			MaxNodesAStar: data.MaxNodesAStar,
			MaxNodesBeam:  data.MaxNodesBeam,
		},
		Scenarios:  make([]JSONScenario, 0, len(data.Scenarios)),
		Statistics: []JSONStatistics{},
		Verdicts:   map[string]int{},
	}

	for _, s := range data.Scenarios {
		js := JSONScenario{
			Index:   s.Index,
			Name:    s.Name,
			Rows:    s.Bounds.Rows,
			Cols:    s.Bounds.Cols,
			Start:   [2]int{s.Start.Row, s.Start.Col},
			Goal:    [2]int{s.Goal.Row, s.Goal.Col},
			Seed:    s.Seed,
			Density: s.Density,
			Error:   s.Err,
			Results: []JSONResult{},
		}
		if s.AStar != nil {
			js.Results = append(js.Results, g.result(s.AStar, ""))
		}
		for _, b := range s.Beams {
			js.Results = append(js.Results, g.result(b.Result, b.Verdict))
		}
		rep.Scenarios = append(rep.Scenarios, js)
	}

	for _, st := range data.Statistics() {
		rep.Statistics = append(rep.Statistics, JSONStatistics{
			Label:          st.Label,
			Runs:           st.Runs,
			Found:          st.Found,
			LimitReached:   st.LimitReached,
			SuccessRate:    st.SuccessRate(),
			AverageCost:    st.AverageCost,
			AverageNodes:   st.AverageNodes,
			AverageSeconds: st.AverageElapsed.Seconds(),
		})
	}
	for v, n := range data.Verdicts() {
		rep.Verdicts[string(v)] = n
	}

	return json.MarshalIndent(rep, "", "  ")
}

func (g *JSONGenerator) result(r *domain.SearchResult, verdict domain.Verdict) JSONResult {
	jr := JSONResult{
		Algorithm:      r.Algorithm,
		Label:          r.Label(),
		Found:          r.Found(),
		PathLength:     len(r.Path),
		NodesProcessed: r.NodesProcessed,
		TimeSeconds:    r.Elapsed.Seconds(),
		LimitReached:   r.LimitReached,
		Verdict:        string(verdict),
	}
	if r.Algorithm == domain.AlgorithmBeam {
		w := r.BeamWidth
		jr.BeamWidth = &w
	}
	if r.Found() {
		c := r.Cost
		jr.Cost = &c
	}
	if g.IncludePaths {
		jr.Path = make([][2]int, len(r.Path))
		for i, p := range r.Path {
			jr.Path[i] = [2]int{p.Row, p.Col}
		}
	}
	return jr
}
