package algorithms

import (
	"slices"
	"time"

	"gridbench/pkg/domain"
)

// =============================================================================
// Beam Search
// =============================================================================
//
// Beam search advances one generation at a time. Every node of the current
// beam is expanded, all accepted successors become candidates, and only the
// best W candidates by (f, h) survive into the next generation.
//
// Time Complexity: O(D × W log W) for D generations
// Space Complexity: O(D × W)
//
// Behaviour:
//   - A global best-g map is shared across generations. A successor is
//     accepted only if it strictly improves the best g ever seen for its
//     position.
//   - The node limit is checked before every beam member is expanded, so a
//     generation can be cut short. Reaching the limit sets LimitReached.
//   - The first beam member equal to the goal, in beam order, wins.
//   - At most rows + cols generations are run. Running out of generations
//     is reported as a failed search without LimitReached.
//   - Candidates are sorted stably, so ties keep generation order.
//
// Beam search is not optimal and not complete: pruning can discard every
// route to the goal.
// =============================================================================

// Beam runs beam search on a validated request.
func Beam(req *Request) *domain.SearchResult {
	started := time.Now()
	h := req.heuristic()

	arena := domain.NewNodeArena(initialCapacity(req.MaxNodes))
	bestG := map[domain.Position]int{req.Start: 0}
	beam := []int32{arena.Add(req.Start, domain.NoParent, 0, h(req.Start, req.Goal))}

	total := 0
	limitReached := false
	maxDepth := req.Bounds.Perimeter()

	for depth := 0; depth < maxDepth; depth++ {
		if len(beam) == 0 {
			break
		}
		if total >= req.MaxNodes {
			limitReached = true
			break
		}

		var candidates []int32
		step := 0

		for _, idx := range beam {
			if total+step >= req.MaxNodes {
				limitReached = true
				break
			}
			step++

			current := *arena.At(idx)

			if current.Pos == req.Goal {
				return &domain.SearchResult{
					Algorithm:      domain.AlgorithmBeam,
					BeamWidth:      req.BeamWidth,
					Path:           arena.Path(idx),
					Cost:           current.G,
					NodesProcessed: total + step,
					Elapsed:        time.Since(started),
				}
			}

			for _, d := range domain.Directions {
				next := current.Pos.Add(d)

				if !req.Bounds.Contains(next) {
					continue
				}
				if req.Obstacles.IsObstacle(next) {
					continue
				}

				g := current.G + 1
				if known, seen := bestG[next]; seen && g >= known {
					continue
				}

				bestG[next] = g
				candidates = append(candidates, arena.Add(next, idx, g, h(next, req.Goal)))
			}
		}

		total += step
		if limitReached || len(candidates) == 0 {
			break
		}

		slices.SortStableFunc(candidates, func(a, b int32) int {
			return domain.CompareNodes(arena.At(a), arena.At(b))
		})
		if len(candidates) > req.BeamWidth {
			candidates = candidates[:req.BeamWidth]
		}
		beam = candidates
	}

	result := domain.NotFound(domain.AlgorithmBeam, total, limitReached)
	result.BeamWidth = req.BeamWidth
	result.Elapsed = time.Since(started)
	return result
}
