package handlers

import (
	"fmt"
	"net/http"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
	"gridbench/services/search-svc/internal/algorithms"
	"gridbench/services/search-svc/internal/service"
)

// gridRequest общие поля сетки. Пропущенные rows/cols дают сетку по умолчанию.
type gridRequest struct {
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	Start   [2]int  `json:"start"`
	Goal    [2]int  `json:"goal"`
	Seed    int64   `json:"seed"`
	Density float64 `json:"density"`
	Label   string  `json:"label"`
}

func (g gridRequest) grid() service.Grid {
	rows, cols := g.Rows, g.Cols
	if rows == 0 {
		rows = domain.DefaultGridSize
	}
	if cols == 0 {
		cols = domain.DefaultGridSize
	}
	return service.Grid{
		Bounds:  domain.Bounds{Rows: rows, Cols: cols},
		Start:   domain.Pos(g.Start[0], g.Start[1]),
		Goal:    domain.Pos(g.Goal[0], g.Goal[1]),
		Seed:    g.Seed,
		Density: g.Density,
	}
}

type searchRequest struct {
	gridRequest
	Algorithm string `json:"algorithm"`
	MaxNodes  int    `json:"max_nodes"`
	BeamWidth *int   `json:"beam_width"`
}

type compareRequest struct {
	gridRequest
	BeamWidths    []int `json:"beam_widths"`
	MaxNodesAStar int   `json:"max_nodes_astar"`
	MaxNodesBeam  int   `json:"max_nodes_beam"`
}

// resultResponse результат поиска в ответе API
type resultResponse struct {
	Algorithm      string   `json:"algorithm"`
	Label          string   `json:"label"`
	BeamWidth      *int     `json:"beam_width,omitempty"`
	Found          bool     `json:"found"`
	Cost           *int     `json:"cost"`
	Path           [][2]int `json:"path"`
	NodesProcessed int      `json:"nodes_processed"`
	LimitReached   bool     `json:"limit_reached"`
	Outcome        string   `json:"outcome"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

func toResultResponse(r *domain.SearchResult) resultResponse {
	out := resultResponse{
		Algorithm:      r.Algorithm,
		Label:          r.Label(),
		Found:          r.Found(),
		Path:           make([][2]int, len(r.Path)),
		NodesProcessed: r.NodesProcessed,
		LimitReached:   r.LimitReached,
		Outcome:        string(r.Outcome()),
		ElapsedSeconds: r.Elapsed.Seconds(),
	}
	for i, p := range r.Path {
		out.Path[i] = [2]int{p.Row, p.Col}
	}
	if r.Algorithm == domain.AlgorithmBeam {
		w := r.BeamWidth
		out.BeamWidth = &w
	}
	if r.Found() {
		c := r.Cost
		out.Cost = &c
	}
	return out
}

type searchResponse struct {
	RunID  string         `json:"run_id,omitempty"`
	Result resultResponse `json:"result"`
}

type beamResponse struct {
	Width   int            `json:"width"`
	Result  resultResponse `json:"result"`
	Verdict domain.Verdict `json:"verdict"`
	Summary string         `json:"summary"`
}

type compareResponse struct {
	RunID           string         `json:"run_id,omitempty"`
	Label           string         `json:"label,omitempty"`
	ObservedDensity float64        `json:"observed_density"`
	AStar           resultResponse `json:"astar"`
	Beams           []beamResponse `json:"beams"`
}

// Search POST /v1/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	alg := req.Algorithm
	if alg == "" {
		alg = domain.AlgorithmAStar
	}
	width := 0
	if alg == domain.AlgorithmBeam {
		width = domain.DefaultBeamWidth
		if req.BeamWidth != nil {
			width = *req.BeamWidth
		}
	}

	res, runID, err := h.svc.Search(r.Context(), service.SearchInput{
		Grid:      req.grid(),
		Algorithm: alg,
		MaxNodes:  req.MaxNodes,
		BeamWidth: width,
		Label:     req.Label,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{RunID: runID, Result: toResultResponse(res)})
}

// Compare POST /v1/compare
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cmp, err := h.svc.Compare(r.Context(), service.CompareInput{
		Grid:          req.grid(),
		BeamWidths:    req.BeamWidths,
		MaxNodesAStar: req.MaxNodesAStar,
		MaxNodesBeam:  req.MaxNodesBeam,
		Label:         req.Label,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := compareResponse{
		RunID:           cmp.RunID,
		Label:           cmp.Label,
		ObservedDensity: cmp.ObservedDensity,
		AStar:           toResultResponse(cmp.AStar),
		Beams:           make([]beamResponse, 0, len(cmp.Beams)),
	}
	for _, b := range cmp.Beams {
		resp.Beams = append(resp.Beams, beamResponse{
			Width:   b.Width,
			Result:  toResultResponse(b.Result),
			Verdict: b.Verdict,
			Summary: b.Verdict.Describe(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// algorithmResponse описание алгоритма с лимитами этого сервиса
type algorithmResponse struct {
	*algorithms.AlgorithmInfo
	MaxNodes    int   `json:"max_nodes"`
	BeamWidths  []int `json:"beam_widths,omitempty"`  // ширины для /v1/compare
	SearchWidth int   `json:"search_width,omitempty"` // ширина /v1/search без beam_width
}

func (h *Handler) describe(info *algorithms.AlgorithmInfo) algorithmResponse {
	astar, beam := h.svc.Limits()
	out := algorithmResponse{AlgorithmInfo: info, MaxNodes: astar}
	if info.Name == domain.AlgorithmBeam {
		out.MaxNodes = beam
		out.BeamWidths = h.svc.DefaultBeamWidths()
		out.SearchWidth = domain.DefaultBeamWidth
	}
	return out
}

// Algorithms GET /v1/algorithms: доступные алгоритмы и лимиты по умолчанию
func (h *Handler) Algorithms(w http.ResponseWriter, _ *http.Request) {
	infos := algorithms.GetAllAlgorithms()
	out := make([]algorithmResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, h.describe(info))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"algorithms":          out,
		"default_beam_widths": h.svc.DefaultBeamWidths(),
		"default_grid_size":   domain.DefaultGridSize,
	})
}

// Algorithm GET /v1/algorithms/{name}
func (h *Handler) Algorithm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	info := algorithms.GetAlgorithmInfo(name)
	if info == nil {
		h.writeError(w, r, apperror.NewWithField(apperror.CodeNotFound,
			fmt.Sprintf("unknown algorithm %q", name), "name"))
		return
	}
	writeJSON(w, http.StatusOK, h.describe(info))
}
