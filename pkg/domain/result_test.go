package domain

import (
	"testing"
)

func found(cost int) *SearchResult {
	path := make([]Position, cost+1)
	for i := range path {
		path[i] = Pos(0, i)
	}
	return &SearchResult{Path: path, Cost: cost}
}

func TestCompare(t *testing.T) {
	none := NotFound(AlgorithmAStar, 10, true)

	tests := []struct {
		name        string
		astar, beam *SearchResult
		want        Verdict
	}{
		{"astar cheaper", found(8), found(10), VerdictAStarBetter},
		{"beam cheaper", found(12), found(10), VerdictBeamBetter},
		{"equal", found(8), found(8), VerdictTie},
		{"only astar", found(8), none, VerdictOnlyAStar},
		{"only beam", none, found(8), VerdictOnlyBeam},
		{"neither", none, none, VerdictNeitherFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.astar, tt.beam); got != tt.want {
				t.Errorf("Compare = %s, want %s", got, tt.want)
			}
			if tt.want.Describe() == "" {
				t.Error("Describe should not be empty")
			}
		})
	}
}

func TestSearchResult_Outcome(t *testing.T) {
	if found(3).Outcome() != OutcomeFound {
		t.Error("expected found outcome")
	}
	if NotFound(AlgorithmBeam, 5, true).Outcome() != OutcomeLimit {
		t.Error("expected limit outcome")
	}
	if NotFound(AlgorithmBeam, 5, false).Outcome() != OutcomeExhausted {
		t.Error("expected exhausted outcome")
	}
}

func TestNotFound(t *testing.T) {
	r := NotFound(AlgorithmAStar, 42, false)

	if r.Found() {
		t.Error("NotFound result should not be found")
	}
	if r.Cost != Unreachable {
		t.Errorf("Cost = %d, want %d", r.Cost, Unreachable)
	}
	if r.Path == nil || len(r.Path) != 0 {
		t.Error("Path should be empty and non-nil")
	}
	if r.NodesProcessed != 42 {
		t.Errorf("NodesProcessed = %d, want 42", r.NodesProcessed)
	}
}

func TestSearchResult_Label(t *testing.T) {
	if got := (&SearchResult{Algorithm: AlgorithmAStar}).Label(); got != "A*" {
		t.Errorf("Label = %q, want A*", got)
	}
	if got := (&SearchResult{Algorithm: AlgorithmBeam, BeamWidth: 16}).Label(); got != "Beam Search (W=16)" {
		t.Errorf("Label = %q", got)
	}
}
