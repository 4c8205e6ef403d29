package domain

import "fmt"

// Position клетка сетки (строка, столбец)
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Pos короткий конструктор Position
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Add сдвигает позицию на вектор направления
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// Bounds размеры неявной сетки. Клетки не хранятся.
type Bounds struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// Valid проверяет, что обе размерности положительны
func (b Bounds) Valid() bool {
	return b.Rows > 0 && b.Cols > 0
}

// Contains проверяет, что позиция лежит внутри сетки
func (b Bounds) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// Perimeter сумма размерностей, используется как предел поколений beam search
func (b Bounds) Perimeter() int {
	return b.Rows + b.Cols
}

func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d", b.Rows, b.Cols)
}

// Direction единичный шаг по сетке
type Direction struct {
	DRow int
	DCol int
}

// Directions порядок обхода соседей: вправо, влево, вниз, вверх.
// Порядок влияет на разрешение равных по (f, h) узлов и не должен меняться.
var Directions = [4]Direction{
	{DRow: 0, DCol: 1},
	{DRow: 0, DCol: -1},
	{DRow: 1, DCol: 0},
	{DRow: -1, DCol: 0},
}

// Neighbors возвращает соседей p внутри границ в фиксированном порядке
func Neighbors(b Bounds, p Position) []Position {
	out := make([]Position, 0, len(Directions))
	for _, d := range Directions {
		n := p.Add(d)
		if b.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
