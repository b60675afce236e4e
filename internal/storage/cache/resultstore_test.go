// --- File: internal/storage/cache/resultstore_test.go ---
package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-sns-push-service/internal/storage/cache"
	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// --- Mocks ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}
func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockRealStore struct {
	mock.Mock
}

func (m *MockRealStore) Save(ctx context.Context, record *push.DispatchRecord) error {
	return m.Called(ctx, record).Error(0)
}
func (m *MockRealStore) Fetch(ctx context.Context, requestID string) (*push.DispatchRecord, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*push.DispatchRecord), args.Error(1)
}
func (m *MockRealStore) Recent(ctx context.Context, limit int) ([]*push.DispatchRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*push.DispatchRecord), args.Error(1)
}

func newStore() (*cache.CachedResultStore, *MockCache, *MockRealStore) {
	mockCache := new(MockCache)
	mockDB := new(MockRealStore)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cache.NewCachedResultStore(mockDB, mockCache, time.Hour, logger), mockCache, mockDB
}

func TestCachedResultStore(t *testing.T) {
	ctx := context.Background()
	record := &push.DispatchRecord{RequestID: "req-1", Transmitted: 1}
	cacheKey := "push:dispatch:req-1"

	t.Run("Save writes through to the cache", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockDB.On("Save", ctx, record).Return(nil)
		mockCache.On("Set", ctx, cacheKey, record, time.Hour).Return(nil)

		require.NoError(t, store.Save(ctx, record))
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Save drops the key when the cache write fails", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockDB.On("Save", ctx, record).Return(nil)
		mockCache.On("Set", ctx, cacheKey, record, time.Hour).Return(assert.AnError)
		mockCache.On("Del", ctx, cacheKey).Return(nil)

		require.NoError(t, store.Save(ctx, record))
		mockCache.AssertExpectations(t)
	})

	t.Run("Save does not touch the cache when the store fails", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockDB.On("Save", ctx, record).Return(assert.AnError)

		require.Error(t, store.Save(ctx, record))
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fetch hit skips the store", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			*args.Get(2).(*push.DispatchRecord) = *record
		})

		got, err := store.Fetch(ctx, "req-1")

		require.NoError(t, err)
		assert.Equal(t, record, got)
		mockDB.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("Fetch miss reads the store and fills the cache", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(cache.ErrCacheMiss)
		mockDB.On("Fetch", ctx, "req-1").Return(record, nil)
		mockCache.On("Set", ctx, cacheKey, record, time.Hour).Return(nil)

		got, err := store.Fetch(ctx, "req-1")

		require.NoError(t, err)
		assert.Equal(t, record, got)
		mockDB.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Fetch miss propagates not found", func(t *testing.T) {
		store, mockCache, mockDB := newStore()
		mockCache.On("Get", ctx, "push:dispatch:nope", mock.Anything).Return(cache.ErrCacheMiss)
		mockDB.On("Fetch", ctx, "nope").Return(nil, dispatch.ErrNotFound)

		_, err := store.Fetch(ctx, "nope")

		assert.ErrorIs(t, err, dispatch.ErrNotFound)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Recent delegates", func(t *testing.T) {
		store, _, mockDB := newStore()
		mockDB.On("Recent", ctx, 5).Return([]*push.DispatchRecord{record}, nil)

		got, err := store.Recent(ctx, 5)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
