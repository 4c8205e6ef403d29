package domain

// NoParent индекс родителя у стартового узла
const NoParent int32 = -1

// Node узел поиска. Родитель хранится индексом в NodeArena.
type Node struct {
	Pos    Position
	Parent int32
	G      int
	H      int
}

// F полная оценка g + h
func (n *Node) F() int {
	return n.G + n.H
}

// CompareNodes упорядочивает узлы по возрастанию f, при равенстве по возрастанию h.
// Возвращает -1, 0 или 1.
func CompareNodes(a, b *Node) int {
	af, bf := a.F(), b.F()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	case a.H < b.H:
		return -1
	case a.H > b.H:
		return 1
	}
	return 0
}

// NodeArena хранилище узлов одного поиска. Живёт до конца вызова поиска.
type NodeArena struct {
	nodes []Node
}

// NewNodeArena создаёт арену с заданной начальной ёмкостью
func NewNodeArena(capacity int) *NodeArena {
	if capacity < 0 {
		capacity = 0
	}
	return &NodeArena{nodes: make([]Node, 0, capacity)}
}

// Add добавляет узел и возвращает его индекс
func (a *NodeArena) Add(pos Position, parent int32, g, h int) int32 {
	a.nodes = append(a.nodes, Node{Pos: pos, Parent: parent, G: g, H: h})
	return int32(len(a.nodes) - 1)
}

// At возвращает узел по индексу
func (a *NodeArena) At(idx int32) *Node {
	return &a.nodes[idx]
}

// Len количество узлов
func (a *NodeArena) Len() int {
	return len(a.nodes)
}

// Less сравнение двух узлов арены через CompareNodes
func (a *NodeArena) Less(i, j int32) bool {
	return CompareNodes(&a.nodes[i], &a.nodes[j]) < 0
}
