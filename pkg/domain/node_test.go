package domain

import (
	"testing"
)

func TestCompareNodes(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		want int
	}{
		{"lower f first", Node{G: 1, H: 2}, Node{G: 2, H: 2}, -1},
		{"higher f last", Node{G: 5, H: 0}, Node{G: 1, H: 1}, 1},
		{"equal f lower h first", Node{G: 4, H: 1}, Node{G: 2, H: 3}, -1},
		{"equal f higher h last", Node{G: 0, H: 5}, Node{G: 3, H: 2}, 1},
		{"full tie", Node{Pos: Pos(1, 1), G: 2, H: 2}, Node{Pos: Pos(9, 9), G: 2, H: 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareNodes(&tt.a, &tt.b); got != tt.want {
				t.Errorf("CompareNodes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNode_F(t *testing.T) {
	n := Node{G: 3, H: 4}
	if n.F() != 7 {
		t.Errorf("F() = %d, want 7", n.F())
	}
}

func TestNodeArena_AddAndLess(t *testing.T) {
	a := NewNodeArena(4)

	root := a.Add(Pos(0, 0), NoParent, 0, 10)
	child := a.Add(Pos(0, 1), root, 1, 9)
	worse := a.Add(Pos(1, 0), root, 1, 11)

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	if a.At(child).Parent != root {
		t.Errorf("child parent = %d, want %d", a.At(child).Parent, root)
	}
	if !a.Less(root, worse) {
		t.Error("f=10 should be less than f=12")
	}
	if !a.Less(child, root) {
		t.Error("f tie with lower h should win")
	}
	if a.Less(root, child) {
		t.Error("root (h=10) should not be less than child (h=9) at equal f")
	}
}
