package service

import (
	"context"

	"gridbench/pkg/apperror"
	"gridbench/pkg/cache"
	"gridbench/pkg/domain"
)

var errCacheDisabled = apperror.New(apperror.CodeUnavailable, "result cache is disabled")

// CacheStats статистика кэша результатов
func (s *SearchService) CacheStats(ctx context.Context) (*cache.Stats, error) {
	if s.cache == nil {
		return nil, errCacheDisabled
	}
	return s.cache.Stats(ctx)
}

// InvalidateCache удаляет закэшированные результаты одного алгоритма,
// а при пустом algorithm все. Возвращает число удалённых записей.
func (s *SearchService) InvalidateCache(ctx context.Context, algorithm string) (int64, error) {
	if s.cache == nil {
		return 0, errCacheDisabled
	}
	if algorithm == "" {
		n, err := s.cache.InvalidateAll(ctx)
		s.log.Info("Result cache cleared", "deleted", n)
		return n, err
	}
	if !domain.IsValidAlgorithm(algorithm) {
		return 0, apperror.NewWithField(apperror.CodeInvalidAlgorithm, "unknown algorithm "+algorithm, "algorithm")
	}
	n, err := s.cache.InvalidateAlgorithm(ctx, algorithm)
	s.log.Info("Result cache invalidated", "algorithm", algorithm, "deleted", n)
	return n, err
}
