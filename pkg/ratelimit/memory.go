package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryLimiter лимитер в памяти процесса
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	cfg     Config
	now     func() time.Time

	closeOnce sync.Once
	stopCh    chan struct{}
	closed    bool
}

type client struct {
	// token bucket
	tokens float64
	last   time.Time
	// sliding window
	hits []time.Time
}

// NewMemoryLimiter создаёт лимитер и запускает очистку неактивных клиентов
func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &MemoryLimiter{
		clients: make(map[string]*client),
		cfg:     *cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if l.cfg.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Decision{}, ErrLimiterClosed
	}

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{tokens: float64(l.capacity()), last: now}
		l.clients[key] = c
	}

	if l.cfg.Strategy == StrategyTokenBucket {
		return l.takeToken(c, now), nil
	}
	return l.slide(c, now), nil
}

func (l *MemoryLimiter) capacity() int {
	return l.cfg.Requests + l.cfg.BurstSize
}

// takeToken пополняет ведро со скоростью Requests/Window до Requests+BurstSize
func (l *MemoryLimiter) takeToken(c *client, now time.Time) Decision {
	rate := float64(l.cfg.Requests) / l.cfg.Window.Seconds()
	c.tokens = math.Min(float64(l.capacity()), c.tokens+now.Sub(c.last).Seconds()*rate)
	c.last = now

	d := Decision{Limit: l.capacity()}
	if c.tokens >= 1 {
		c.tokens--
		d.Allowed = true
		d.Remaining = int(c.tokens)
		return d
	}
	if rate > 0 {
		d.RetryAfter = time.Duration((1 - c.tokens) / rate * float64(time.Second))
	}
	return d
}

// slide считает запросы за последние Window
func (l *MemoryLimiter) slide(c *client, now time.Time) Decision {
	c.hits = dropBefore(c.hits, now.Add(-l.cfg.Window))
	c.last = now

	d := Decision{Limit: l.cfg.Requests}
	if len(c.hits) < l.cfg.Requests {
		c.hits = append(c.hits, now)
		d.Allowed = true
		d.Remaining = l.cfg.Requests - len(c.hits)
		return d
	}
	if len(c.hits) > 0 {
		d.RetryAfter = c.hits[0].Add(l.cfg.Window).Sub(now)
	}
	return d
}

// dropBefore отбрасывает отметки не позже cutoff, hits упорядочены по времени
func dropBefore(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.clients, key)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLimiter) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.clients = nil
		l.mu.Unlock()
		close(l.stopCh)
	})
	return nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

// evictIdle удаляет клиентов, молчавших дольше двух окон
func (l *MemoryLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.cfg.Window)
	for key, c := range l.clients {
		if c.last.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
