package domain

// Стоимость при отсутствии пути
const Unreachable = -1

// Алгоритмы поиска
const (
	AlgorithmAStar = "astar"
	AlgorithmBeam  = "beam"
)

// Значения по умолчанию для экспериментов
const (
	DefaultMaxNodes  = 5_000_000
	DefaultGridSize  = 500_000
	DefaultBeamWidth = 8
)

// DefaultBeamWidths набор ширин луча, с которыми сравнивается A*
var DefaultBeamWidths = []int{8, 16}

// IsValidAlgorithm проверяет имя алгоритма
func IsValidAlgorithm(name string) bool {
	return name == AlgorithmAStar || name == AlgorithmBeam
}
