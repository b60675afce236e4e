// --- File: internal/storage/cache/resultstore.go ---
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns ErrCacheMiss (or any error) when the value is unavailable.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedResultStore is a Decorator that adds read-aside caching to any
// ResultStore. Save writes through, so a redelivered request replaces the
// cached outcome along with the stored one.
type CachedResultStore struct {
	realStore dispatch.ResultStore
	cache     CacheClient
	ttl       time.Duration
	logger    *slog.Logger
}

var _ dispatch.ResultStore = (*CachedResultStore)(nil)

// NewCachedResultStore creates the decorator.
func NewCachedResultStore(realStore dispatch.ResultStore, cache CacheClient, ttl time.Duration, logger *slog.Logger) *CachedResultStore {
	return &CachedResultStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With("component", "CachedResultStore"),
	}
}

// --- READ PATH (Read-Aside) ---

func (s *CachedResultStore) Fetch(ctx context.Context, requestID string) (*push.DispatchRecord, error) {
	key := cacheKey(requestID)

	var cached push.DispatchRecord
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	fresh, err := s.realStore.Fetch(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Caching is an optimization; if Redis is down we serve from the store.
	if err := s.cache.Set(ctx, key, fresh, s.ttl); err != nil {
		s.logger.Debug("Failed to populate cache", "key", key, "err", err)
	}
	return fresh, nil
}

// Recent is not cached; it is an operator query, not a hot path.
func (s *CachedResultStore) Recent(ctx context.Context, limit int) ([]*push.DispatchRecord, error) {
	return s.realStore.Recent(ctx, limit)
}

// --- WRITE PATH (Write-Through) ---

func (s *CachedResultStore) Save(ctx context.Context, record *push.DispatchRecord) error {
	if err := s.realStore.Save(ctx, record); err != nil {
		return err
	}

	key := cacheKey(record.RequestID)
	if err := s.cache.Set(ctx, key, record, s.ttl); err != nil {
		// A stale entry could mask the new record; drop it instead.
		s.logger.Warn("Failed to write through cache", "key", key, "err", err)
		_ = s.cache.Del(ctx, key)
	}
	return nil
}

func cacheKey(requestID string) string {
	return "push:dispatch:" + requestID
}
