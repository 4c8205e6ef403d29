package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestCache(t *testing.T, maxEntries int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(&Options{DefaultTTL: time.Minute, MaxEntries: maxEntries, CleanupInterval: time.Hour})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("Get() = %s, want value1", val)
	}

	// возвращается копия
	val[0] = 'X'
	again, _ := c.Get(ctx, "key1")
	if string(again) != "value1" {
		t.Errorf("cached value mutated through returned slice: %s", again)
	}
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	c := newTestCache(t, 10)

	if _, err := c.Get(context.Background(), "missing"); err != ErrKeyNotFound {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("short"), 0)
	c.Set(ctx, "k", []byte("much longer value"), 0)

	val, _ := c.Get(ctx, "k")
	if string(val) != "much longer value" {
		t.Errorf("Get() = %s", val)
	}
	stats, _ := c.Stats(ctx)
	if stats.TotalKeys != 1 || stats.MemoryBytes != int64(len("much longer value")) {
		t.Errorf("unexpected stats after overwrite: %+v", stats)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("value1"), 0)
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "key1"); err != ErrKeyNotFound {
		t.Error("expected key to be deleted")
	}
	if err := c.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); err != ErrKeyNotFound {
		t.Errorf("expected expired key, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on read, len = %d", c.Len())
	}
}

func TestMemoryCache_PurgeExpired(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	c.Set(ctx, "long", []byte("v"), time.Hour)
	time.Sleep(30 * time.Millisecond)

	c.purgeExpired()

	if c.Len() != 1 {
		t.Errorf("expected 1 entry after purge, got %d", c.Len())
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "search:astar:1", []byte("a"), 0)
	c.Set(ctx, "search:astar:2", []byte("b"), 0)
	c.Set(ctx, "search:beam:1", []byte("c"), 0)

	n, err := c.DeleteByPattern(ctx, "search:astar:*")
	if err != nil {
		t.Fatalf("DeleteByPattern() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	if _, err := c.Get(ctx, "search:beam:1"); err != nil {
		t.Errorf("beam entry should survive: %v", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("123"), 0)
	c.Get(ctx, "a")
	c.Get(ctx, "a")
	c.Get(ctx, "b")

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.TotalKeys != 1 || stats.MemoryBytes != 3 {
		t.Errorf("keys/bytes = %d/%d, want 1/3", stats.TotalKeys, stats.MemoryBytes)
	}
	if stats.Backend != BackendMemory {
		t.Errorf("backend = %s", stats.Backend)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := newTestCache(t, 10)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := newTestCache(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
	}
	// k0 становится самым свежим, вытесняется k1
	c.Get(ctx, "k0")
	c.Set(ctx, "k3", []byte("v"), 0)

	if _, err := c.Get(ctx, "k1"); err != ErrKeyNotFound {
		t.Error("expected k1 to be evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Errorf("expected %s to survive: %v", k, err)
		}
	}

	stats, _ := c.Stats(ctx)
	if stats.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := c.Get(ctx, "a"); err != ErrCacheClosed {
		t.Errorf("Get() after close = %v", err)
	}
	if err := c.Set(ctx, "a", nil, 0); err != ErrCacheClosed {
		t.Errorf("Set() after close = %v", err)
	}
	if _, err := c.Stats(ctx); err != ErrCacheClosed {
		t.Errorf("Stats() after close = %v", err)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"*", "anything", true},
		{"search:*", "search:astar:abc", true},
		{"search:*", "stats", false},
		{"*:abc", "search:astar:abc", true},
		{"search:*:abc", "search:beam:abc", true},
		{"search:*:abc", "search:beam:abd", false},
		{"ab*ba", "aba", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.key); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
		}
	}
}
