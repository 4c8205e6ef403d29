package scenario

import (
	"strconv"

	"gridbench/pkg/domain"
)

// Default возвращает двенадцать эталонных сценариев на сетке 500000x500000.
// Каждый вызов отдаёт новый срез.
func Default() []Scenario {
	const n = domain.DefaultGridSize
	grid := domain.Bounds{Rows: n, Cols: n}

	return []Scenario{
		{Name: "1. Zero Obstacle Test (Short Path)", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(50, 50), Seed: 123, Density: 0.0,
			BeamWidths: []int{8}},
		{Name: "2. Relatively Short Path, Low Density", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(50, 50), Seed: 123, Density: 0.1,
			BeamWidths: []int{8, 16}},
		{Name: "3. Medium Path, Moderate Density", Bounds: grid,
			Start: domain.Pos(1000, 1000), Goal: domain.Pos(1200, 1250), Seed: 456, Density: 0.25,
			BeamWidths: []int{8, 16}},
		{Name: "4. Longer Path - BEAM WIDTH COMPARISON", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(800, 800), Seed: 789, Density: 0.15,
			BeamWidths: []int{8, 16, 32, 64}},
		{Name: "5. Medium Path, Higher Density ", Bounds: grid,
			Start: domain.Pos(2500, 2000), Goal: domain.Pos(2700, 2200), Seed: 101, Density: 0.4,
			BeamWidths: []int{8, 16}},
		{Name: "6. Long Path, Very High Density (Likely No Path)", Bounds: grid,
			Start: domain.Pos(4000, 4000), Goal: domain.Pos(4500, 4500), Seed: 110, Density: 0.6,
			BeamWidths: []int{8}},
		{Name: "7. Very Long Path, Extreme Density (Almost Certainly No Path)", Bounds: grid,
			Start: domain.Pos(0, 1000), Goal: domain.Pos(3000, 2000), Seed: 120, Density: 0.75,
			BeamWidths: []int{8}},
		{Name: "8. Very Long Sparse Path", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(2000, 2000), Seed: 201, Density: 0.05,
			BeamWidths: []int{8, 16, 32}},
		{Name: "9. Moderate Path, Extremely Low Density", Bounds: grid,
			Start: domain.Pos(100, 100), Goal: domain.Pos(1000, 1000), Seed: 301, Density: 0.01,
			BeamWidths: []int{8, 16}},
		// цель заведомо дальше, чем позволяет лимит узлов
		{Name: "10. Forced Node Limit Test (Diagonal Max Distance)", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(n-100_000, n-100_000), Seed: 401, Density: 0.1,
			BeamWidths: []int{8}},
		{Name: "11. Short Path, High Density Challenge", Bounds: grid,
			Start: domain.Pos(0, 0), Goal: domain.Pos(30, 30), Seed: 506, Density: 0.35,
			BeamWidths: []int{8, 16, 32}},
		{Name: "12. Another Medium Path, Different Seed/Density", Bounds: grid,
			Start: domain.Pos(500, 0), Goal: domain.Pos(500, 500), Seed: 601, Density: 0.20,
			BeamWidths: []int{8, 16}},
	}
}

// Select возвращает сценарии в порядке таблицы. Сценарий выбирается по полному
// имени или по номеру в таблице, начиная с 1. Пустой список означает все сценарии.
func Select(list []Scenario, names ...string) []Scenario {
	if len(names) == 0 {
		return list
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]Scenario, 0, len(names))
	for i, s := range list {
		if want[s.Name] || want[strconv.Itoa(i+1)] {
			out = append(out, s)
		}
	}
	return out
}
