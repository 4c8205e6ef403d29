package domain

import (
	"testing"
)

func TestNodeArena_Path(t *testing.T) {
	a := NewNodeArena(0)
	n0 := a.Add(Pos(0, 0), NoParent, 0, 2)
	n1 := a.Add(Pos(0, 1), n0, 1, 1)
	a.Add(Pos(1, 0), n0, 1, 1)
	n3 := a.Add(Pos(1, 1), n1, 2, 0)

	path := a.Path(n3)
	want := []Position{Pos(0, 0), Pos(0, 1), Pos(1, 1)}

	if len(path) != len(want) {
		t.Fatalf("len(path) = %d, want %d", len(path), len(want))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, path[i], want[i])
		}
	}
	if PathCost(path) != 2 {
		t.Errorf("PathCost = %d, want 2", PathCost(path))
	}
}

func TestNodeArena_PathRoot(t *testing.T) {
	a := NewNodeArena(1)
	root := a.Add(Pos(4, 4), NoParent, 0, 0)

	path := a.Path(root)
	if len(path) != 1 || path[0] != Pos(4, 4) {
		t.Errorf("path = %v, want [(4, 4)]", path)
	}
	if PathCost(path) != 0 {
		t.Errorf("PathCost = %d, want 0", PathCost(path))
	}
}

func TestNodeArena_PathInvalidIndex(t *testing.T) {
	a := NewNodeArena(0)
	if a.Path(0) != nil {
		t.Error("expected nil path for empty arena")
	}
	if a.Path(-1) != nil {
		t.Error("expected nil path for negative index")
	}
}

func TestPathCost_Empty(t *testing.T) {
	if PathCost(nil) != Unreachable {
		t.Errorf("PathCost(nil) = %d, want %d", PathCost(nil), Unreachable)
	}
}

func TestValidatePath(t *testing.T) {
	b := Bounds{Rows: 3, Cols: 3}
	blocked := func(p Position) bool { return p == Pos(1, 1) }
	start, goal := Pos(0, 0), Pos(2, 2)

	valid := []Position{Pos(0, 0), Pos(0, 1), Pos(0, 2), Pos(1, 2), Pos(2, 2)}
	if !ValidatePath(b, valid, start, goal, blocked) {
		t.Error("expected valid path")
	}

	throughWall := []Position{Pos(0, 0), Pos(0, 1), Pos(1, 1), Pos(2, 1), Pos(2, 2)}
	if ValidatePath(b, throughWall, start, goal, blocked) {
		t.Error("path through obstacle should be invalid")
	}

	jump := []Position{Pos(0, 0), Pos(1, 0), Pos(2, 2)}
	if ValidatePath(b, jump, start, goal, blocked) {
		t.Error("non-adjacent step should be invalid")
	}

	wrongEnd := []Position{Pos(0, 0), Pos(0, 1)}
	if ValidatePath(b, wrongEnd, start, goal, blocked) {
		t.Error("path not ending at goal should be invalid")
	}
}
