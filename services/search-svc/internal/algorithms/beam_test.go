package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbench/pkg/domain"
	"gridbench/pkg/terrain"
)

func TestBeam_WidthSensitivity(t *testing.T) {
	narrow := Beam(trapGrid(1))
	assert.False(t, narrow.Found(), "width 1 should commit to the dead end")
	assert.False(t, narrow.LimitReached)
	assert.Equal(t, 3, narrow.NodesProcessed)
	assert.Equal(t, domain.Unreachable, narrow.Cost)

	wide := Beam(trapGrid(2))
	require.True(t, wide.Found(), "width 2 should keep the detour")
	assert.Equal(t, 10, wide.Cost)
	assert.Equal(t, 20, wide.NodesProcessed)
	assert.Equal(t, []domain.Position{
		domain.Pos(0, 0), domain.Pos(1, 0), domain.Pos(2, 0), domain.Pos(2, 1), domain.Pos(2, 2),
		domain.Pos(2, 3), domain.Pos(2, 4), domain.Pos(2, 5), domain.Pos(2, 6), domain.Pos(1, 6), domain.Pos(0, 6),
	}, wide.Path)

	wider := Beam(trapGrid(3))
	require.True(t, wider.Found())
	assert.Equal(t, 10, wider.Cost)
	assert.Equal(t, 23, wider.NodesProcessed)

	optimal := AStar(trapGrid(2))
	assert.Equal(t, 10, optimal.Cost)
}

func TestBeam_ZeroWidth(t *testing.T) {
	result := Beam(trapGrid(0))

	assert.False(t, result.Found())
	assert.False(t, result.LimitReached)
	assert.Equal(t, 1, result.NodesProcessed)
}

func TestBeam_LimitMidGeneration(t *testing.T) {
	req := trapGrid(2)
	req.MaxNodes = 15

	result := Beam(req)

	assert.False(t, result.Found())
	assert.True(t, result.LimitReached)
	assert.Equal(t, 15, result.NodesProcessed)
}

func TestBeam_StaticGridWidths(t *testing.T) {
	tests := []struct {
		width int
		nodes int
	}{
		{1, 9},
		{2, 14},
		{8, 21},
	}

	for _, tt := range tests {
		req := optimalityGrid().WithBeamWidth(tt.width)

		result := Beam(req)

		require.True(t, result.Found(), "width %d", tt.width)
		assert.Equal(t, 8, result.Cost, "width %d", tt.width)
		assert.Equal(t, tt.nodes, result.NodesProcessed, "width %d", tt.width)
		assert.True(t, domain.ValidatePath(req.Bounds, result.Path, req.Start, req.Goal, req.Obstacles.IsObstacle))
	}
}

func TestBeam_ZeroDensity(t *testing.T) {
	for _, seed := range []int64{123, 0, 506, 2147483647, -1, -987654321} {
		for _, width := range []int{1, 2, 8, 64} {
			req := procedural(domain.AlgorithmBeam, domain.Pos(0, 0), domain.Pos(50, 50), seed, 0).WithBeamWidth(width)

			result := Beam(req)

			assert.Equal(t, 100, result.Cost, "seed %d width %d", seed, width)
			assert.False(t, result.LimitReached, "seed %d width %d", seed, width)
		}
	}
}

func TestBeam_ReferenceScenarios(t *testing.T) {
	tests := []struct {
		name    string
		start   domain.Position
		goal    domain.Position
		seed    int64
		density float64
		width   int
		cost    int
		nodes   int
	}{
		{"open W1", domain.Pos(0, 0), domain.Pos(50, 50), 123, 0, 1, 100, 101},
		{"open W8", domain.Pos(0, 0), domain.Pos(50, 50), 123, 0, 8, 100, 773},
		{"low density W8", domain.Pos(0, 0), domain.Pos(50, 50), 123, 0.1, 8, 102, 767},
		{"low density W16", domain.Pos(0, 0), domain.Pos(50, 50), 123, 0.1, 16, 100, 1430},
		{"high density W8", domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35, 8, 72, 432},
		{"high density W16", domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35, 16, 72, 669},
		{"high density W32", domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35, 32, 72, 888},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := procedural(domain.AlgorithmBeam, tt.start, tt.goal, tt.seed, tt.density).WithBeamWidth(tt.width)

			result := Beam(req)

			require.True(t, result.Found())
			assert.Equal(t, tt.cost, result.Cost)
			assert.Equal(t, tt.nodes, result.NodesProcessed)
			assert.Equal(t, tt.width, result.BeamWidth)
			assert.Equal(t, len(result.Path)-1, result.Cost)
		})
	}
}

func TestBeam_NodeLimit(t *testing.T) {
	req := procedural(domain.AlgorithmBeam, domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35).
		WithBeamWidth(8).
		WithMaxNodes(100)

	result := Beam(req)

	assert.True(t, result.LimitReached)
	assert.Equal(t, 100, result.NodesProcessed)
	assert.False(t, result.Found())
}

func TestBeam_WalledIn(t *testing.T) {
	tests := []struct {
		width int
		nodes int
	}{
		{1, 10},
		{4, 206},
		{8, 764},
	}

	for _, tt := range tests {
		req := NewProceduralRequest(domain.AlgorithmBeam, domain.Bounds{Rows: 60, Cols: 60},
			domain.Pos(0, 0), domain.Pos(59, 59), 7, 0.3).WithBeamWidth(tt.width)

		result := Beam(req)

		assert.False(t, result.Found(), "width %d", tt.width)
		assert.False(t, result.LimitReached, "width %d", tt.width)
		assert.Equal(t, tt.nodes, result.NodesProcessed, "width %d", tt.width)
	}
}

func TestBeam_NeverBeatsAStar(t *testing.T) {
	bounds := domain.Bounds{Rows: 30, Cols: 30}
	start, goal := domain.Pos(0, 0), domain.Pos(29, 29)

	for seed := int64(1); seed <= 25; seed++ {
		field := terrain.NewProcedural(start, goal, seed, 0.25)
		base := &Request{Bounds: bounds, Start: start, Goal: goal, Obstacles: field, MaxNodes: 1_000_000}

		optimal := AStar(base)

		for _, width := range []int{1, 3, 10} {
			req := *base
			req.BeamWidth = width
			result := Beam(&req)

			if !result.Found() {
				continue
			}
			if !optimal.Found() {
				t.Fatalf("seed=%d width=%d: beam found a path A* missed", seed, width)
			}
			if result.Cost < optimal.Cost {
				t.Errorf("seed=%d width=%d: beam cost %d below optimal %d", seed, width, result.Cost, optimal.Cost)
			}
			if !domain.ValidatePath(bounds, result.Path, start, goal, field.IsObstacle) {
				t.Errorf("seed=%d width=%d: invalid path", seed, width)
			}
		}
	}
}

func TestBeam_GenerationCap(t *testing.T) {
	// A winding corridor longer than rows + cols exhausts the generation budget.
	//
	//	S.....
	//	#####.
	//	......
	//	.#####
	//	.....G
	m, err := terrain.ParseMapString("S.....\n#####.\n......\n.#####\n.....G\n")
	require.NoError(t, err)

	req := &Request{
		Bounds:    m.Grid.Bounds,
		Start:     *m.Start,
		Goal:      *m.Goal,
		Obstacles: m.Grid,
		MaxNodes:  1000,
		BeamWidth: 4,
	}

	result := Beam(req)
	assert.False(t, result.Found(), "path of 19 steps needs 20 generations, cap is 11")
	assert.False(t, result.LimitReached)
	assert.Equal(t, 11, result.NodesProcessed)

	optimal := AStar(req)
	assert.Equal(t, 19, optimal.Cost)
}

func TestBeam_Deterministic(t *testing.T) {
	req := func() *Request {
		return procedural(domain.AlgorithmBeam, domain.Pos(0, 0), domain.Pos(50, 50), 123, 0.1).WithBeamWidth(8)
	}

	first, second := Beam(req()), Beam(req())

	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.NodesProcessed, second.NodesProcessed)
}
