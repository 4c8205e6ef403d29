package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gridbench/pkg/domain"
)

// MemoryRepository in-memory реализация Repository
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryRepository создаёт пустой репозиторий
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string]*Run)}
}

func (r *MemoryRepository) Save(ctx context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	r.runs[run.ID] = cloneRun(run, true)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return cloneRun(run, true), nil
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Run, int64, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	matched := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		if matches(run, filter) {
			matched = append(matched, run)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*Run{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))

	page := make([]*Run, 0, end-filter.Offset)
	for _, run := range matched[filter.Offset:end] {
		page = append(page, cloneRun(run, false))
	}
	return page, total, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(r.runs, id)
	return nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func matches(run *Run, f ListFilter) bool {
	if f.Kind != "" && run.Kind != f.Kind {
		return false
	}
	if f.BatchID != "" && run.BatchID != f.BatchID {
		return false
	}
	if f.Since != nil && run.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Algorithm != "" {
		for _, res := range run.Results {
			if res.Algorithm == f.Algorithm {
				return true
			}
		}
		return false
	}
	return true
}

// cloneRun копирует запуск, чтобы вызывающий не менял хранимые данные
func cloneRun(run *Run, withResults bool) *Run {
	c := *run
	c.BeamWidths = append([]int(nil), run.BeamWidths...)
	c.Results = nil
	if withResults {
		c.Results = make([]*domain.SearchResult, len(run.Results))
		for i, res := range run.Results {
			rc := *res
			rc.Path = append([]domain.Position(nil), res.Path...)
			c.Results[i] = &rc
		}
	}
	return &c
}
