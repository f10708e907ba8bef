package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps a cache backend with metrics and failure tolerance.
// A nil *CacheService is a disabled cache.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCacheService constructs a cache service. A nil repo disables caching.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, generations: map[string]uint64{}}
}

// StatsKey is the cache key of the stats of resource as seen by scope.
func StatsKey(resource string, scope models.Scope) string {
	return fmt.Sprintf("stats:%s:%s", resource, scope.Key())
}

// StatsPattern matches every cached stats entry of resource.
func StatsPattern(resource string) string {
	return fmt.Sprintf("stats:%s:*", resource)
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Get decodes a cached entry into dest and reports whether it was a hit.
// Backend failures are logged and reported as misses.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Generation returns how many times pattern has been invalidated.
func (s *CacheService) Generation(pattern string) uint64 {
	if !s.Enabled() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[pattern]
}

// SetFresh stores value under key only if pattern was not invalidated since
// generation was read. An entry written while an invalidation raced with it
// is removed again.
func (s *CacheService) SetFresh(ctx context.Context, pattern string, generation uint64, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() || s.Generation(pattern) != generation {
		return
	}
	s.Set(ctx, key, value, ttl)
	if s.Generation(pattern) != generation {
		if err := s.repo.DeleteByPattern(ctx, key); err != nil {
			s.logger.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Invalidate removes cached values matching pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	if s.generations == nil {
		s.generations = map[string]uint64{}
	}
	s.generations[pattern]++
	s.mu.Unlock()
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
