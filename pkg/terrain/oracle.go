// Package terrain decides which cells of an implicit grid are blocked.
//
// Two sources are provided: Procedural derives obstacles from a position hash
// so arbitrarily large grids need no storage, and StaticGrid holds an explicit
// obstacle set for small hand-built maps.
package terrain

import (
	"gridbench/pkg/domain"
)

// Hash constants
const (
	rowMultiplier uint32 = 2654435761
	colMultiplier uint32 = 334214459
	lcgA          uint32 = 1664525
	lcgC          uint32 = 1013904223
	hashModulus          = 4294967296.0
)

// Predicate reports whether a cell is blocked.
type Predicate interface {
	IsObstacle(p domain.Position) bool
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(p domain.Position) bool

func (f PredicateFunc) IsObstacle(p domain.Position) bool {
	return f(p)
}

// CellValue maps (row, col, seed) to a value in [0, 1).
// All arithmetic wraps modulo 2^32.
func CellValue(row, col int, seed int64) float64 {
	vr := uint32(row) * rowMultiplier
	vc := uint32(col) * colMultiplier
	s := uint32(seed)

	state := (vr ^ vc ^ s) + (vr + s) + (vc + s)
	lcg := lcgA*state + lcgC

	return float64(lcg) / hashModulus
}

// IsObstacle reports whether pos is blocked for the given scenario parameters.
// Start and goal are never blocked.
func IsObstacle(pos, start, goal domain.Position, seed int64, density float64) bool {
	if pos == start || pos == goal {
		return false
	}
	return CellValue(pos.Row, pos.Col, seed) < density
}

// Procedural is a hash-driven obstacle field bound to one scenario.
type Procedural struct {
	Start   domain.Position
	Goal    domain.Position
	Seed    int64
	Density float64
}

// NewProcedural creates a procedural obstacle field.
func NewProcedural(start, goal domain.Position, seed int64, density float64) *Procedural {
	return &Procedural{Start: start, Goal: goal, Seed: seed, Density: density}
}

func (p *Procedural) IsObstacle(pos domain.Position) bool {
	return IsObstacle(pos, p.Start, p.Goal, p.Seed, p.Density)
}

// Sample returns the observed obstacle ratio inside window.
func Sample(pred Predicate, window domain.Bounds) float64 {
	if !window.Valid() {
		return 0
	}

	blocked := 0
	for r := 0; r < window.Rows; r++ {
		for c := 0; c < window.Cols; c++ {
			if pred.IsObstacle(domain.Pos(r, c)) {
				blocked++
			}
		}
	}
	return float64(blocked) / float64(window.Rows*window.Cols)
}
