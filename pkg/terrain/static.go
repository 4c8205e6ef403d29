package terrain

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gridbench/pkg/domain"
)

// Map symbols
const (
	SymbolFree     = '.'
	SymbolObstacle = '#'
	SymbolStart    = 'S'
	SymbolGoal     = 'G'
)

// StaticGrid is an explicit obstacle set.
type StaticGrid struct {
	Bounds    domain.Bounds
	obstacles map[domain.Position]struct{}
}

// NewStaticGrid creates a grid with the given blocked cells.
func NewStaticGrid(b domain.Bounds, blocked ...domain.Position) *StaticGrid {
	g := &StaticGrid{Bounds: b, obstacles: make(map[domain.Position]struct{}, len(blocked))}
	for _, p := range blocked {
		g.Block(p)
	}
	return g
}

// Block marks a cell as obstacle.
func (g *StaticGrid) Block(p domain.Position) {
	g.obstacles[p] = struct{}{}
}

func (g *StaticGrid) IsObstacle(p domain.Position) bool {
	_, ok := g.obstacles[p]
	return ok
}

// Len returns the number of blocked cells.
func (g *StaticGrid) Len() int {
	return len(g.obstacles)
}

// ParsedMap is the result of parsing a text map.
type ParsedMap struct {
	Grid  *StaticGrid
	Start *domain.Position
	Goal  *domain.Position
}

// ParseMap reads a rectangular text map. '#' is an obstacle, '.' is free,
// 'S' and 'G' mark start and goal. Blank lines are skipped.
func ParseMap(r io.Reader) (*ParsedMap, error) {
	scanner := bufio.NewScanner(r)
	var rows []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty map")
	}

	cols := len(rows[0])
	out := &ParsedMap{Grid: NewStaticGrid(domain.Bounds{Rows: len(rows), Cols: cols})}

	for r, line := range rows {
		if len(line) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(line), cols)
		}
		for c, ch := range line {
			p := domain.Pos(r, c)
			switch ch {
			case SymbolFree:
			case SymbolObstacle:
				out.Grid.Block(p)
			case SymbolStart:
				out.Start = &p
			case SymbolGoal:
				out.Goal = &p
			default:
				return nil, fmt.Errorf("unexpected symbol %q at %v", ch, p)
			}
		}
	}

	return out, nil
}

// ParseMapString is ParseMap over a string.
func ParseMapString(s string) (*ParsedMap, error) {
	return ParseMap(strings.NewReader(s))
}

// Render draws the window of pred as text, marking path cells with '*'.
func Render(pred Predicate, window domain.Bounds, path []domain.Position) string {
	onPath := make(map[domain.Position]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}

	var sb strings.Builder
	for r := 0; r < window.Rows; r++ {
		for c := 0; c < window.Cols; c++ {
			p := domain.Pos(r, c)
			switch {
			case onPath[p]:
				sb.WriteByte('*')
			case pred.IsObstacle(p):
				sb.WriteByte(SymbolObstacle)
			default:
				sb.WriteByte(SymbolFree)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
