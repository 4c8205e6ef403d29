// Package repository хранит историю запусков поиска.
package repository

import (
	"context"
	"time"

	"gridbench/pkg/apperror"
	"gridbench/pkg/domain"
)

// ErrRunNotFound запуск не найден
var ErrRunNotFound = apperror.New(apperror.CodeNotFound, "run not found")

// RunKind происхождение запуска
type RunKind string

const (
	KindSearch     RunKind = "search"     // одиночный поиск через API
	KindCompare    RunKind = "compare"    // A* против нескольких ширин луча
	KindExperiment RunKind = "experiment" // сценарий из пакетного прогона
)

// Run сохранённый запуск: параметры сетки и результаты в порядке выполнения
type Run struct {
	ID         string
	BatchID    string // общий для сценариев одного эксперимента
	Kind       RunKind
	Label      string
	Bounds     domain.Bounds
	Start      domain.Position
	Goal       domain.Position
	Seed       int64
	Density    float64
	MaxNodes   int
	BeamWidths []int
	Results    []*domain.SearchResult
	CreatedAt  time.Time
}

// ListFilter фильтры списка запусков
type ListFilter struct {
	Kind      RunKind
	BatchID   string
	Algorithm string // есть хотя бы один результат этого алгоритма
	Since     *time.Time
	Limit     int
	Offset    int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalize ограничивает пагинацию
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Repository хранилище запусков
type Repository interface {
	// Save присваивает ID и CreatedAt, если они пусты, и сохраняет запуск с результатами
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	// List возвращает запуски без результатов, новые первыми, и общее число подходящих
	List(ctx context.Context, filter ListFilter) ([]*Run, int64, error)
	Delete(ctx context.Context, id string) error
	// Ping проверяет доступность хранилища для /health
	Ping(ctx context.Context) error
	Close() error
}

// flattenPath кодирует путь как [r0, c0, r1, c1, ...]
func flattenPath(path []domain.Position) []int64 {
	flat := make([]int64, 0, 2*len(path))
	for _, p := range path {
		flat = append(flat, int64(p.Row), int64(p.Col))
	}
	return flat
}

func expandPath(flat []int64) []domain.Position {
	path := make([]domain.Position, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		path = append(path, domain.Pos(int(flat[i]), int(flat[i+1])))
	}
	return path
}

func toInt64s(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func toInts(xs []int64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}
