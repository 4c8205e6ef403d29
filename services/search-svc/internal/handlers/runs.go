package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
	"gridbench/services/search-svc/internal/repository"
)

type runResponse struct {
	ID         string           `json:"id"`
	BatchID    string           `json:"batch_id,omitempty"`
	Kind       string           `json:"kind"`
	Label      string           `json:"label,omitempty"`
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	Start      [2]int           `json:"start"`
	Goal       [2]int           `json:"goal"`
	Seed       int64            `json:"seed"`
	Density    float64          `json:"density"`
	MaxNodes   int              `json:"max_nodes"`
	BeamWidths []int            `json:"beam_widths"`
	Results    []resultResponse `json:"results,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func toRunResponse(run *repository.Run) runResponse {
	out := runResponse{
		ID:         run.ID,
		BatchID:    run.BatchID,
		Kind:       string(run.Kind),
		Label:      run.Label,
		Rows:       run.Bounds.Rows,
		Cols:       run.Bounds.Cols,
		Start:      [2]int{run.Start.Row, run.Start.Col},
		Goal:       [2]int{run.Goal.Row, run.Goal.Col},
		Seed:       run.Seed,
		Density:    run.Density,
		MaxNodes:   run.MaxNodes,
		BeamWidths: run.BeamWidths,
		CreatedAt:  run.CreatedAt,
	}
	if out.BeamWidths == nil {
		out.BeamWidths = []int{}
	}
	for _, r := range run.Results {
		out.Results = append(out.Results, toResultResponse(r))
	}
	return out
}

type listRunsResponse struct {
	Runs   []runResponse `json:"runs"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListRuns GET /v1/runs?kind=&batch_id=&algorithm=&since=&limit=&offset=
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	runs, total, err := h.svc.History(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := listRunsResponse{Runs: make([]runResponse, 0, len(runs)), Total: total, Limit: filter.Limit, Offset: filter.Offset}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRun GET /v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(run))
}

func parseListFilter(r *http.Request) (repository.ListFilter, error) {
	q := r.URL.Query()
	v := apperror.NewValidationErrors()

	filter := repository.ListFilter{
		Kind:      repository.RunKind(q.Get("kind")),
		BatchID:   q.Get("batch_id"),
		Algorithm: q.Get("algorithm"),
	}

	switch filter.Kind {
	case "", repository.KindSearch, repository.KindCompare, repository.KindExperiment:
	default:
		v.AddErrorWithField(apperror.CodeInvalidArgument, "unknown run kind "+strconv.Quote(string(filter.Kind)), "kind")
	}
	if filter.Algorithm != "" && !domain.IsValidAlgorithm(filter.Algorithm) {
		v.AddErrorWithField(apperror.CodeInvalidAlgorithm, "unknown algorithm "+strconv.Quote(filter.Algorithm), "algorithm")
	}
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			v.AddErrorWithField(apperror.CodeInvalidArgument, "since must be RFC3339", "since")
		} else {
			filter.Since = &t
		}
	}
	filter.Limit = intParam(v, q.Get("limit"), "limit")
	filter.Offset = intParam(v, q.Get("offset"), "offset")

	if err := v.Err(); err != nil {
		return repository.ListFilter{}, err
	}
	return filter.Normalize(), nil
}

func intParam(v *apperror.ValidationErrors, raw, field string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		v.AddErrorWithField(apperror.CodeInvalidPagination, field+" must be a non-negative integer", field)
		return 0
	}
	return n
}
