package terrain

import (
	"testing"

	"gridbench/pkg/domain"
)

func BenchmarkCellValue(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CellValue(i&1023, i>>10, 506)
	}
}

func BenchmarkProcedural_IsObstacle(b *testing.B) {
	p := NewProcedural(domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.IsObstacle(domain.Pos(i&1023, i>>10))
	}
}

func BenchmarkSample(b *testing.B) {
	p := NewProcedural(domain.Pos(0, 0), domain.Pos(30, 30), 506, 0.35)
	window := domain.Bounds{Rows: 100, Cols: 100}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sample(p, window)
	}
}
