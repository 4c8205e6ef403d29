package algorithms

import (
	"gridbench/pkg/domain"
	"gridbench/pkg/terrain"
)

const hugeDim = 500_000

var hugeBounds = domain.Bounds{Rows: hugeDim, Cols: hugeDim}

// optimalityGrid is the 5x5 map with a shortest path of 8.
func optimalityGrid() *Request {
	return &Request{
		Bounds: domain.Bounds{Rows: 5, Cols: 5},
		Start:  domain.Pos(0, 0),
		Goal:   domain.Pos(4, 4),
		Obstacles: terrain.NewStaticGrid(domain.Bounds{Rows: 5, Cols: 5},
			domain.Pos(1, 1), domain.Pos(1, 3), domain.Pos(2, 1), domain.Pos(3, 3)),
		MaxNodes:  1_000_000,
		BeamWidth: 8,
	}
}

// trapGrid is a 4x7 map where the greedy route along row 0 is a dead end.
// Width 1 commits to it and fails; width 2 keeps the detour below the wall.
//
//	S..#..G
//	.###...
//	.......
//	.......
func trapGrid(width int) *Request {
	b := domain.Bounds{Rows: 4, Cols: 7}
	return &Request{
		Algorithm: domain.AlgorithmBeam,
		Bounds:    b,
		Start:     domain.Pos(0, 0),
		Goal:      domain.Pos(0, 6),
		Obstacles: terrain.NewStaticGrid(b,
			domain.Pos(0, 3), domain.Pos(1, 1), domain.Pos(1, 2), domain.Pos(1, 3)),
		MaxNodes:  1_000_000,
		BeamWidth: width,
	}
}

func procedural(algorithm string, start, goal domain.Position, seed int64, density float64) *Request {
	return NewProceduralRequest(algorithm, hugeBounds, start, goal, seed, density)
}
