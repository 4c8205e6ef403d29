package algorithms

import (
	"time"

	"gridbench/pkg/domain"
)

// =============================================================================
// A* Search
// =============================================================================
//
// A* expands nodes in order of f = g + h, breaking ties on lower h. With an
// admissible and consistent heuristic (Manhattan on a 4-connected unit grid)
// the first time the goal is popped its g is the optimal path cost.
//
// Time Complexity: O(N log N) for N nodes pushed
// Space Complexity: O(N)
//
// Behaviour:
//   - The node limit is checked before every pop. When it is reached the
//     search stops with LimitReached and no path.
//   - Every pop counts as one processed node, including stale duplicates
//     and the goal itself.
//   - A neighbour is pushed only when it strictly improves the best known g.
//     Older heap entries for the same position are left in place.
//
// References:
//   - Hart, P. E.; Nilsson, N. J.; Raphael, B. (1968). "A Formal Basis for the
//     Heuristic Determination of Minimum Cost Paths"
// =============================================================================

// AStar runs A* on a validated request.
func AStar(req *Request) *domain.SearchResult {
	started := time.Now()
	h := req.heuristic()

	arena := domain.NewNodeArena(initialCapacity(req.MaxNodes))
	open := newFrontier(arena)
	closed := make(map[domain.Position]struct{})
	bestG := map[domain.Position]int{req.Start: 0}

	open.push(arena.Add(req.Start, domain.NoParent, 0, h(req.Start, req.Goal)))

	processed := 0
	limitReached := false

	for open.Len() > 0 {
		if processed >= req.MaxNodes {
			limitReached = true
			break
		}

		idx := open.pop()
		processed++

		// Copy: the arena may grow while neighbours are added.
		current := *arena.At(idx)

		if current.Pos == req.Goal {
			return &domain.SearchResult{
				Algorithm:      domain.AlgorithmAStar,
				Path:           arena.Path(idx),
				Cost:           current.G,
				NodesProcessed: processed,
				Elapsed:        time.Since(started),
			}
		}

		closed[current.Pos] = struct{}{}

		for _, d := range domain.Directions {
			next := current.Pos.Add(d)

			if !req.Bounds.Contains(next) {
				continue
			}
			if req.Obstacles.IsObstacle(next) {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}

			g := current.G + 1
			if known, seen := bestG[next]; seen && g >= known {
				continue
			}

			bestG[next] = g
			open.push(arena.Add(next, idx, g, h(next, req.Goal)))
		}
	}

	result := domain.NotFound(domain.AlgorithmAStar, processed, limitReached)
	result.Elapsed = time.Since(started)
	return result
}
