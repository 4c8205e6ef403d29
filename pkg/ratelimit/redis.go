package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript атомарно чистит окно, считает и добавляет запрос.
// Возвращает {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, count + 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, count, tonumber(oldest[2])}
`)

// RedisLimiter скользящее окно в Redis, общее для нескольких экземпляров сервиса
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	seq    func() int64
}

// NewRedisLimiter подключается к Redis
func NewRedisLimiter(cfg *Config) (*RedisLimiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLimiter{client: client, cfg: *cfg, seq: func() int64 { return time.Now().UnixNano() }}, nil
}

func redisKey(key string) string {
	return "ratelimit:" + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now().UnixMilli()
	window := l.cfg.Window.Milliseconds()

	res, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey(key)},
		l.cfg.Requests, window, now, fmt.Sprintf("%d", l.seq())).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis script error: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected redis script result %v", res)
	}

	d := Decision{Allowed: res[0] == 1, Limit: l.cfg.Requests}
	if d.Allowed {
		d.Remaining = l.cfg.Requests - int(res[1])
	} else {
		d.RetryAfter = time.Duration(res[2]+window-now) * time.Millisecond
	}
	return d, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKey(key)).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
