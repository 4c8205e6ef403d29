package ratelimit

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func benchLimiter(strategy string) *MemoryLimiter {
	return NewMemoryLimiter(&Config{
		Requests: 1_000_000_000,
		Window:   time.Minute,
		Strategy: strategy,
	})
}

func BenchmarkMemoryLimiter_Allow(b *testing.B) {
	for _, strategy := range []string{StrategySlidingWindow, StrategyTokenBucket} {
		b.Run(strategy, func(b *testing.B) {
			l := benchLimiter(strategy)
			defer l.Close()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = l.Allow(ctx, fmt.Sprintf("client-%d", i%100))
			}
		})
	}
}

func BenchmarkMemoryLimiter_Parallel(b *testing.B) {
	l := benchLimiter(StrategyTokenBucket)
	defer l.Close()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = l.Allow(ctx, "shared")
		}
	})
}

func BenchmarkClientKey(b *testing.B) {
	req := httptest.NewRequest("GET", "/v1/search", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	for i := 0; i < b.N; i++ {
		ClientKey(req)
	}
}
