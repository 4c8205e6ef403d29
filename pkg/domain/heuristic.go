package domain

// Heuristic оценка оставшейся стоимости от from до to
type Heuristic func(from, to Position) int

// Manhattan |dr| + |dc|. Допустима и монотонна для единичных шагов в 4 направлениях.
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
