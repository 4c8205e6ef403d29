package algorithms

import (
	"testing"

	"gridbench/pkg/domain"
	"gridbench/pkg/terrain"
)

func TestAStar_OptimalOnStaticGrid(t *testing.T) {
	req := optimalityGrid()

	result := AStar(req)

	if !result.Found() {
		t.Fatal("expected path to be found")
	}
	if result.Cost != 8 {
		t.Errorf("Cost = %d, want 8", result.Cost)
	}
	if result.LimitReached {
		t.Error("LimitReached should be false")
	}
	if !domain.ValidatePath(req.Bounds, result.Path, req.Start, req.Goal, req.Obstacles.IsObstacle) {
		t.Errorf("invalid path: %v", result.Path)
	}
	if domain.PathCost(result.Path) != result.Cost {
		t.Errorf("path length %d does not match cost %d", len(result.Path), result.Cost)
	}
}

func TestAStar_MatchesBFS(t *testing.T) {
	bounds := domain.Bounds{Rows: 25, Cols: 25}
	start, goal := domain.Pos(0, 0), domain.Pos(24, 24)

	for seed := int64(1); seed <= 40; seed++ {
		for _, density := range []float64{0.1, 0.25, 0.35} {
			field := terrain.NewProcedural(start, goal, seed, density)
			req := &Request{
				Bounds:    bounds,
				Start:     start,
				Goal:      goal,
				Obstacles: field,
				MaxNodes:  1_000_000,
			}

			result := AStar(req)
			reference := bfs(bounds, start, goal, field, 0)

			if result.Found() != reference.found {
				t.Fatalf("seed=%d density=%.2f: found=%v, BFS found=%v", seed, density, result.Found(), reference.found)
			}
			if result.Cost != reference.distance {
				t.Errorf("seed=%d density=%.2f: cost=%d, BFS=%d", seed, density, result.Cost, reference.distance)
			}
			if result.Found() && !domain.ValidatePath(bounds, result.Path, start, goal, field.IsObstacle) {
				t.Errorf("seed=%d density=%.2f: invalid path", seed, density)
			}
		}
	}
}

func TestAStar_ZeroDensity(t *testing.T) {
	for _, seed := range []int64{123, 0, 1, 506, 2147483647, -1, -987654321} {
		result := AStar(procedural(domain.AlgorithmAStar, domain.Pos(0, 0), domain.Pos(50, 50), seed, 0))

		if result.Cost != 100 {
			t.Errorf("seed=%d: Cost = %d, want 100", seed, result.Cost)
		}
		if len(result.Path) != 101 {
			t.Errorf("seed=%d: len(Path) = %d, want 101", seed, len(result.Path))
		}
		// Open grid with (f, h) ordering walks straight to the goal.
		if result.NodesProcessed != 101 {
			t.Errorf("seed=%d: NodesProcessed = %d, want 101", seed, result.NodesProcessed)
		}
	}
}

func TestAStar_ReferenceScenarios(t *testing.T) {
	tests := []struct {
		name    string
		start   domain.Position
		goal    domain.Position
		seed    int64
		density float64
		cost    int
		nodes   int
	}{
		{"short low density", domain.Pos(0, 0), domain.Pos(50, 50), 123, 0.1, 100, 362},
		{"short high density", domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35, 72, 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AStar(procedural(domain.AlgorithmAStar, tt.start, tt.goal, tt.seed, tt.density))

			if result.Cost != tt.cost {
				t.Errorf("Cost = %d, want %d", result.Cost, tt.cost)
			}
			if result.NodesProcessed != tt.nodes {
				t.Errorf("NodesProcessed = %d, want %d", result.NodesProcessed, tt.nodes)
			}
			if result.LimitReached {
				t.Error("LimitReached should be false")
			}
		})
	}
}

func TestAStar_NodeLimit(t *testing.T) {
	req := procedural(domain.AlgorithmAStar, domain.Pos(0, 0), domain.Pos(50, 50), 123, 0).WithMaxNodes(10)

	result := AStar(req)

	if !result.LimitReached {
		t.Error("LimitReached should be true")
	}
	if result.NodesProcessed != 10 {
		t.Errorf("NodesProcessed = %d, want 10", result.NodesProcessed)
	}
	if result.Found() || result.Cost != domain.Unreachable {
		t.Errorf("expected no path, got cost %d", result.Cost)
	}
}

func TestAStar_NodeLimitDenseScenario(t *testing.T) {
	req := procedural(domain.AlgorithmAStar, domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35).WithMaxNodes(100)

	result := AStar(req)

	if !result.LimitReached || result.NodesProcessed != 100 || result.Found() {
		t.Errorf("got limit=%v nodes=%d found=%v, want limit at 100 without path",
			result.LimitReached, result.NodesProcessed, result.Found())
	}
}

func TestAStar_Unreachable(t *testing.T) {
	b := domain.Bounds{Rows: 3, Cols: 3}
	req := &Request{
		Bounds:    b,
		Start:     domain.Pos(0, 0),
		Goal:      domain.Pos(2, 2),
		Obstacles: terrain.NewStaticGrid(b, domain.Pos(0, 1), domain.Pos(1, 0), domain.Pos(1, 1)),
		MaxNodes:  100,
	}

	result := AStar(req)

	if result.Found() {
		t.Error("expected no path")
	}
	if result.LimitReached {
		t.Error("exhaustion should not set LimitReached")
	}
	if result.NodesProcessed != 1 {
		t.Errorf("NodesProcessed = %d, want 1", result.NodesProcessed)
	}
}

func TestAStar_WalledInExhausts(t *testing.T) {
	req := NewProceduralRequest(domain.AlgorithmAStar, domain.Bounds{Rows: 60, Cols: 60},
		domain.Pos(0, 0), domain.Pos(59, 59), 7, 0.3)

	result := AStar(req)

	if result.Found() {
		t.Error("expected no path")
	}
	if result.LimitReached {
		t.Error("LimitReached should be false")
	}
	if result.NodesProcessed == 0 {
		t.Error("expected some nodes to be processed")
	}
}

func TestAStar_StartIsGoal(t *testing.T) {
	b := domain.Bounds{Rows: 2, Cols: 2}
	req := &Request{Bounds: b, Start: domain.Pos(1, 1), Goal: domain.Pos(1, 1), Obstacles: terrain.NewStaticGrid(b), MaxNodes: 1}

	result := AStar(req)

	if result.Cost != 0 || len(result.Path) != 1 || result.NodesProcessed != 1 {
		t.Errorf("got cost=%d path=%v nodes=%d", result.Cost, result.Path, result.NodesProcessed)
	}
}

func TestAStar_Corridor(t *testing.T) {
	b := domain.Bounds{Rows: 1, Cols: 5}
	req := &Request{Bounds: b, Start: domain.Pos(0, 0), Goal: domain.Pos(0, 4), Obstacles: terrain.NewStaticGrid(b), MaxNodes: 3}

	result := AStar(req)
	if !result.LimitReached || result.NodesProcessed != 3 {
		t.Errorf("limit 3: got limit=%v nodes=%d", result.LimitReached, result.NodesProcessed)
	}

	req.MaxNodes = 5
	result = AStar(req)
	if result.Cost != 4 || result.NodesProcessed != 5 {
		t.Errorf("limit 5: got cost=%d nodes=%d", result.Cost, result.NodesProcessed)
	}
}

func TestAStar_Deterministic(t *testing.T) {
	first := AStar(procedural(domain.AlgorithmAStar, domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35))
	second := AStar(procedural(domain.AlgorithmAStar, domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35))

	if first.Cost != second.Cost || first.NodesProcessed != second.NodesProcessed {
		t.Fatalf("runs differ: (%d, %d) vs (%d, %d)", first.Cost, first.NodesProcessed, second.Cost, second.NodesProcessed)
	}
	for i := range first.Path {
		if first.Path[i] != second.Path[i] {
			t.Fatalf("paths differ at %d: %v vs %v", i, first.Path[i], second.Path[i])
		}
	}
}

func TestAStar_CustomHeuristic(t *testing.T) {
	req := optimalityGrid().WithHeuristic(func(a, b domain.Position) int { return 0 })

	result := AStar(req)

	if result.Cost != 8 {
		t.Errorf("Dijkstra-equivalent cost = %d, want 8", result.Cost)
	}
}
