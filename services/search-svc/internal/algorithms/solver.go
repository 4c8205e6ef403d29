// Package algorithms provides grid path search over implicit 2D grids:
// optimal A* and resource-bounded beam search.
//
// # Grid Model
//
// Grids are never materialized. A search only knows the grid bounds and an
// obstacle predicate, which is usually the procedural hash field from the
// terrain package. Movement is 4-directional with unit cost.
//
// # Thread Safety
//
// A single search owns all of its state (node arena, frontier, cost maps) and
// is safe to run concurrently with other searches as long as the obstacle
// predicate is safe for concurrent reads. The procedural predicate is pure.
// Use SearchPool to bound concurrency.
//
// # Determinism
//
// Neighbours are generated in the fixed order right, left, down, up, and
// nodes are ordered by (f, h). Given the same request, every search returns
// the same path, cost and node count.
//
// # Resource Limits
//
// MaxNodes is the only cancellation mechanism inside a search. Context is
// observed by SearchPool between searches, never inside one.
//
// # Example Usage
//
//	req := algorithms.NewProceduralRequest(domain.AlgorithmAStar,
//	    domain.Bounds{Rows: 500000, Cols: 500000},
//	    domain.Pos(0, 0), domain.Pos(50, 50), 123, 0.1)
//
//	result, err := algorithms.Solve(req)
//	if err != nil {
//	    log.Printf("bad request: %v", err)
//	} else if result.Found() {
//	    log.Printf("cost %d after %d nodes", result.Cost, result.NodesProcessed)
//	}
package algorithms

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
	"gridbench/pkg/terrain"
)

// =============================================================================
// Search Request
// =============================================================================

// Request describes a single search.
//
// Zero Heuristic means Manhattan distance. BeamWidth is ignored by A*.
type Request struct {
	// Algorithm selects the search. Empty means A*.
	Algorithm string

	// Bounds of the implicit grid.
	Bounds domain.Bounds

	// Start and Goal positions. Both must lie inside Bounds.
	Start domain.Position
	Goal  domain.Position

	// Heuristic estimates remaining cost. nil uses domain.Manhattan.
	Heuristic domain.Heuristic

	// Obstacles decides which cells are blocked.
	Obstacles terrain.Predicate

	// MaxNodes caps the number of nodes taken from the frontier (A*) or from
	// the beam (beam search). Must be positive.
	MaxNodes int

	// BeamWidth is the number of candidates kept per generation.
	// Zero is accepted and yields an empty beam after the first generation.
	BeamWidth int
}

// NewProceduralRequest builds a request backed by the procedural obstacle field
// with default node limit and beam width.
func NewProceduralRequest(algorithm string, bounds domain.Bounds, start, goal domain.Position, seed int64, density float64) *Request {
	return &Request{
		Algorithm: algorithm,
		Bounds:    bounds,
		Start:     start,
		Goal:      goal,
		Obstacles: terrain.NewProcedural(start, goal, seed, density),
		MaxNodes:  domain.DefaultMaxNodes,
		BeamWidth: domain.DefaultBeamWidth,
	}
}

// WithMaxNodes sets the node limit and returns the request for chaining.
func (r *Request) WithMaxNodes(n int) *Request {
	r.MaxNodes = n
	return r
}

// WithBeamWidth sets the beam width and returns the request for chaining.
func (r *Request) WithBeamWidth(w int) *Request {
	r.BeamWidth = w
	return r
}

// WithHeuristic sets the heuristic and returns the request for chaining.
func (r *Request) WithHeuristic(h domain.Heuristic) *Request {
	r.Heuristic = h
	return r
}

func (r *Request) heuristic() domain.Heuristic {
	if r.Heuristic == nil {
		return domain.Manhattan
	}
	return r.Heuristic
}

func (r *Request) algorithm() string {
	if r.Algorithm == "" {
		return domain.AlgorithmAStar
	}
	return r.Algorithm
}

// =============================================================================
// Validation
// =============================================================================

// ValidateRequest checks the request before any search work.
//
// All problems are collected; the returned error is an *apperror.Error whose
// code is that of the first problem found.
func ValidateRequest(r *Request) error {
	return CheckRequest(r).Err()
}

// CheckRequest returns every problem found in the request, each with its field.
func CheckRequest(r *Request) *apperror.ValidationErrors {
	v := apperror.NewValidationErrors()
	if r == nil {
		v.Add(apperror.ErrNilRequest)
		return v
	}

	if !domain.IsValidAlgorithm(r.algorithm()) {
		v.AddErrorWithField(apperror.CodeInvalidAlgorithm,
			fmt.Sprintf("unknown algorithm %q", r.Algorithm), "algorithm")
	}

	if !r.Bounds.Valid() {
		v.AddErrorWithField(apperror.CodeInvalidBounds,
			fmt.Sprintf("grid bounds must be positive, got %s", r.Bounds), "bounds")
	} else {
		if !r.Bounds.Contains(r.Start) {
			v.AddErrorWithField(apperror.CodeStartOutOfBounds,
				fmt.Sprintf("start %s outside grid %s", r.Start, r.Bounds), "start")
		}
		if !r.Bounds.Contains(r.Goal) {
			v.AddErrorWithField(apperror.CodeGoalOutOfBounds,
				fmt.Sprintf("goal %s outside grid %s", r.Goal, r.Bounds), "goal")
		}
	}

	if r.BeamWidth < 0 {
		v.AddErrorWithField(apperror.CodeInvalidBeamWidth,
			fmt.Sprintf("beam width must be non-negative, got %d", r.BeamWidth), "beam_width")
	}

	if r.MaxNodes <= 0 {
		v.AddErrorWithField(apperror.CodeInvalidNodeLimit,
			fmt.Sprintf("node limit must be positive, got %d", r.MaxNodes), "max_nodes")
	}

	switch obs := r.Obstacles.(type) {
	case nil:
		v.Add(apperror.NewWithField(apperror.CodeNilInput, "obstacle predicate is nil", "obstacles"))
	case *terrain.Procedural:
		if obs == nil {
			v.Add(apperror.NewWithField(apperror.CodeNilInput, "obstacle predicate is nil", "obstacles"))
		} else if err := ValidateDensity(obs.Density); err != nil {
			v.Add(err)
		}
	}

	return v
}

// ValidateDensity checks that density lies in [0, 1].
func ValidateDensity(density float64) *apperror.Error {
	if math.IsNaN(density) || density < 0 || density > 1 {
		return apperror.NewWithField(apperror.CodeInvalidDensity,
			fmt.Sprintf("obstacle density must be within [0, 1], got %v", density), "density")
	}
	return nil
}

// =============================================================================
// Main Solver Entry Point
// =============================================================================

// Solve validates the request and dispatches to the selected algorithm.
//
// Configuration errors are returned as *apperror.Error and no search is run.
// "No path" and "limit reached" are normal results, not errors.
func Solve(r *Request) (*domain.SearchResult, error) {
	if err := ValidateRequest(r); err != nil {
		return nil, err
	}

	switch r.algorithm() {
	case domain.AlgorithmBeam:
		return Beam(r), nil
	default:
		return AStar(r), nil
	}
}

// initialCapacity sizes the node arena for a search.
func initialCapacity(maxNodes int) int {
	const ceiling = 1 << 16
	if maxNodes <= 0 {
		return 0
	}
	if n := maxNodes * len(domain.Directions); n < ceiling {
		return n
	}
	return ceiling
}

// =============================================================================
// Search Pool
// =============================================================================

// SearchPool bounds the number of searches running at once.
//
// # Example
//
//	pool := NewSearchPool(runtime.NumCPU())
//	results := pool.BatchSolve(ctx, tasks)
//	for _, r := range results {
//	    fmt.Printf("%s: cost=%d\n", r.TaskID, r.Result.Cost)
//	}
type SearchPool struct {
	workers chan struct{} // Semaphore for concurrency limiting
}

// NewSearchPool creates a pool with the given concurrency.
// If maxConcurrency <= 0, it defaults to 4.
func NewSearchPool(maxConcurrency int) *SearchPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &SearchPool{workers: make(chan struct{}, maxConcurrency)}
}

// Size returns the maximum concurrency.
func (sp *SearchPool) Size() int {
	return cap(sp.workers)
}

// Acquire obtains a worker slot, blocking until one is free or ctx is done.
func (sp *SearchPool) Acquire(ctx context.Context) error {
	select {
	case sp.workers <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a worker slot. Must be called once after each successful Acquire.
func (sp *SearchPool) Release() {
	<-sp.workers
}

// SolvePooled runs Solve inside a worker slot.
//
// Context cancellation is observed only while waiting for a slot.
func (sp *SearchPool) SolvePooled(ctx context.Context, r *Request) (*domain.SearchResult, error) {
	if err := sp.Acquire(ctx); err != nil {
		if appErr := apperror.FromContext(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}
	defer sp.Release()

	return Solve(r)
}

// BatchTask represents a single task for batch processing.
type BatchTask struct {
	// TaskID is a user-defined identifier for correlating results.
	TaskID string

	// Request is the search to run.
	Request *Request
}

// BatchResult contains the result of a batch task.
type BatchResult struct {
	TaskID string
	Result *domain.SearchResult
	Error  error
}

// BatchSolve runs all tasks concurrently up to the pool size.
// Results are returned in input order.
func (sp *SearchPool) BatchSolve(ctx context.Context, tasks []BatchTask) []BatchResult {
	results := make([]BatchResult, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, t BatchTask) {
			defer wg.Done()
			result, err := sp.SolvePooled(ctx, t.Request)
			results[idx] = BatchResult{
				TaskID: t.TaskID,
				Result: result,
				Error:  err,
			}
		}(i, task)
	}

	wg.Wait()
	return results
}

// =============================================================================
// Algorithm Information
// =============================================================================

// AlgorithmInfo provides metadata about a search algorithm.
type AlgorithmInfo struct {
	Name            string   `json:"name"`
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	Optimal         bool     `json:"optimal"`
	TimeComplexity  string   `json:"time_complexity"`
	SpaceComplexity string   `json:"space_complexity"`
	Caveats         []string `json:"caveats"`
}

// GetAlgorithmInfo returns information about an algorithm, or nil if unknown.
func GetAlgorithmInfo(name string) *AlgorithmInfo {
	for _, info := range GetAllAlgorithms() {
		if info.Name == name {
			return info
		}
	}
	return nil
}

// GetAllAlgorithms returns information about all supported algorithms.
func GetAllAlgorithms() []*AlgorithmInfo {
	return []*AlgorithmInfo{
		{
			Name:            domain.AlgorithmAStar,
			Label:           "A*",
			Description:     "Best-first search on f = g + h with a closed set",
			Optimal:         true,
			TimeComplexity:  "O(N log N) for N nodes processed",
			SpaceComplexity: "O(N)",
			Caveats:         []string{"Memory grows with the explored region"},
		},
		{
			Name:            domain.AlgorithmBeam,
			Label:           "Beam Search",
			Description:     "Generation-by-generation search keeping the best W candidates by (f, h)",
			Optimal:         false,
			TimeComplexity:  "O(D × W log W) for depth D",
			SpaceComplexity: "O(D × W)",
			Caveats: []string{
				"May miss paths that require temporarily moving away from the goal",
				"Generation count is capped at rows + cols",
			},
		},
	}
}
