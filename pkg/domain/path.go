package domain

// Path восстанавливает путь от корня до узла idx, проходя по родителям
func (a *NodeArena) Path(idx int32) []Position {
	if idx < 0 || int(idx) >= len(a.nodes) {
		return nil
	}

	path := []Position{}
	for cur := idx; cur != NoParent; cur = a.nodes[cur].Parent {
		path = append(path, a.nodes[cur].Pos)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost стоимость пути из единичных шагов
func PathCost(path []Position) int {
	if len(path) == 0 {
		return Unreachable
	}
	return len(path) - 1
}

// ValidatePath проверяет, что путь идёт от start к goal единичными шагами
// по свободным клеткам внутри границ
func ValidatePath(b Bounds, path []Position, start, goal Position, blocked func(Position) bool) bool {
	if len(path) == 0 || path[0] != start || path[len(path)-1] != goal {
		return false
	}

	for i, p := range path {
		if !b.Contains(p) {
			return false
		}
		if blocked != nil && blocked(p) {
			return false
		}
		if i > 0 && Manhattan(path[i-1], p) != 1 {
			return false
		}
	}
	return true
}
