package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gridbench/pkg/domain"
)

func BenchmarkMemoryCache_Set(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i%10000), value, time.Minute)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "benchmark-key", []byte("benchmark-value"), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(ctx, "benchmark-key")
	}
}

func BenchmarkMemoryCache_Concurrent(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := []byte("value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%1000)
			if i%4 == 0 {
				_ = c.Set(ctx, key, value, time.Minute)
			} else {
				_, _ = c.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkMemoryCache_Eviction(b *testing.B) {
	c := NewMemoryCache(&Options{MaxEntries: 100, DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	value := []byte("value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(ctx, fmt.Sprintf("key-%d", i), value, 0)
	}
}

func BenchmarkSearchKey_String(b *testing.B) {
	key := SearchKey{
		Algorithm: domain.AlgorithmBeam,
		Bounds:    domain.Bounds{Rows: 500000, Cols: 500000},
		Start:     domain.Pos(0, 0),
		Goal:      domain.Pos(30, 30),
		Seed:      506,
		Density:   0.35,
		MaxNodes:  5_000_000,
		BeamWidth: 16,
	}
	for i := 0; i < b.N; i++ {
		_ = key.String()
	}
}

func BenchmarkResultCache_SetGet(b *testing.B) {
	c := NewMemoryCache(nil)
	defer c.Close()
	rc := NewResultCache(c, time.Minute)

	ctx := context.Background()
	path := make([]domain.Position, 0, 61)
	for i := 0; i <= 30; i++ {
		path = append(path, domain.Pos(i, 0))
	}
	for i := 1; i <= 30; i++ {
		path = append(path, domain.Pos(30, i))
	}
	result := &domain.SearchResult{Algorithm: domain.AlgorithmAStar, Path: path, Cost: 60, NodesProcessed: 432}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := SearchKey{Algorithm: domain.AlgorithmAStar, Seed: int64(i % 100), MaxNodes: 100}
		_ = rc.Set(ctx, key, result, 0)
		_, _, _ = rc.Get(ctx, key)
	}
}
