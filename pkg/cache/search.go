package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gridbench/pkg/domain"
)

const searchKeyPrefix = "search:"

// SearchKey параметры, полностью определяющие результат поиска на процедурной сетке
type SearchKey struct {
	Algorithm string
	Bounds    domain.Bounds
	Start     domain.Position
	Goal      domain.Position
	Seed      int64
	Density   float64
	MaxNodes  int
	BeamWidth int
}

// canonical детерминированное представление. Ширина луча для A* не влияет на результат.
func (k SearchKey) canonical() string {
	width := k.BeamWidth
	if k.Algorithm != domain.AlgorithmBeam {
		width = 0
	}
	return fmt.Sprintf("b:%d,%d;s:%d,%d;g:%d,%d;seed:%d;d:%s;n:%d;w:%d",
		k.Bounds.Rows, k.Bounds.Cols,
		k.Start.Row, k.Start.Col,
		k.Goal.Row, k.Goal.Col,
		k.Seed, strconv.FormatFloat(k.Density, 'g', -1, 64),
		k.MaxNodes, width)
}

// String ключ вида search:<algorithm>:<hash>
func (k SearchKey) String() string {
	sum := sha256.Sum256([]byte(k.canonical()))
	return searchKeyPrefix + k.Algorithm + ":" + hex.EncodeToString(sum[:16])
}

// ResultCache кэш результатов поиска поверх байтового Cache
type ResultCache struct {
	cache      Cache
	defaultTTL time.Duration
}

type cachedResult struct {
	Result   *domain.SearchResult `json:"result"`
	CachedAt time.Time            `json:"cached_at"`
}

// NewResultCache создаёт кэш результатов
func NewResultCache(c Cache, defaultTTL time.Duration) *ResultCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &ResultCache{cache: c, defaultTTL: defaultTTL}
}

// Get возвращает (nil, false, nil) при промахе. Повреждённая запись удаляется.
func (rc *ResultCache) Get(ctx context.Context, key SearchKey) (*domain.SearchResult, bool, error) {
	k := key.String()

	data, err := rc.cache.Get(ctx, k)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cr cachedResult
	if err := json.Unmarshal(data, &cr); err != nil || cr.Result == nil {
		_ = rc.cache.Delete(ctx, k) //nolint:errcheck // повреждённую запись просто выбрасываем
		return nil, false, nil
	}
	return cr.Result, true, nil
}

// Set сохраняет результат, ttl <= 0 означает TTL по умолчанию
func (rc *ResultCache) Set(ctx context.Context, key SearchKey, result *domain.SearchResult, ttl time.Duration) error {
	if result == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	data, err := json.Marshal(cachedResult{Result: result, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal search result: %w", err)
	}
	return rc.cache.Set(ctx, key.String(), data, ttl)
}

// InvalidateAlgorithm удаляет все результаты одного алгоритма
func (rc *ResultCache) InvalidateAlgorithm(ctx context.Context, algorithm string) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, searchKeyPrefix+algorithm+":*")
}

// InvalidateAll удаляет все результаты поиска
func (rc *ResultCache) InvalidateAll(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, searchKeyPrefix+"*")
}

// Stats статистика нижележащего кэша
func (rc *ResultCache) Stats(ctx context.Context) (*Stats, error) {
	return rc.cache.Stats(ctx)
}
