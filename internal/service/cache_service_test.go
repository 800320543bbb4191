package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu       sync.Mutex
	items    map[string][]byte
	getErr   error
	delErr   error
	sets     int
	patterns []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	if m.delErr != nil {
		return m.delErr
	}
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestRememberLoadsOnceAndCaches(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	var loads int32
	load := func(context.Context) ([]int, error) {
		atomic.AddInt32(&loads, 1)
		return []int{1, 2}, nil
	}

	first, err := Remember(context.Background(), cache, "k", 0, load)
	require.NoError(t, err)
	second, err := Remember(context.Background(), cache, "k", 0, load)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{1, 2}, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	_, err := Remember(context.Background(), cache, "k", 0, func(context.Context) ([]int, error) {
		return nil, appErrors.ErrNotFound
	})

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 0, repo.sets)
}

func TestRememberFallsBackWhenCacheFails(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("redis down")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	got, err := Remember(context.Background(), cache, "k", 0, func(context.Context) (string, error) {
		return "fresh", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestRememberDisabledAlwaysLoads(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, false)

	var loads int
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), cache, "k", 0, func(context.Context) (int, error) {
			loads++
			return loads, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loads)
}

func TestRememberSharedLoadSurvivesCallerCancellation(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var loadErr atomic.Value
	load := func(ctx context.Context) (string, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			loadErr.Store(err)
			return "", err
		}
		return "rows", nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := Remember(firstCtx, cache, "k", 0, load)
		firstDone <- err
	}()
	<-started

	type result struct {
		value string
		err   error
	}
	secondDone := make(chan result, 1)
	go func() {
		v, err := Remember(context.Background(), cache, "k", 0, load)
		secondDone <- result{v, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstDone, context.Canceled)

	close(release)
	second := <-secondDone
	require.NoError(t, second.err)
	assert.Equal(t, "rows", second.value)
	assert.Nil(t, loadErr.Load())
}

func TestInvalidateDeletesMatchingKeys(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "capacity:rows:1:", []int{1}, 0))
	require.NoError(t, cache.Set(ctx, "capacity:rows:10:", []int{10}, 0))

	require.NoError(t, cache.Invalidate(ctx, "capacity:rows:1:*"))

	var v []int
	hit, err := cache.Get(ctx, "capacity:rows:1:", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = cache.Get(ctx, "capacity:rows:10:", &v)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestInvalidateDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)

	require.NoError(t, cache.Invalidate(context.Background(), "capacity:rows:1:*"))
	assert.Empty(t, repo.patterns)
}
