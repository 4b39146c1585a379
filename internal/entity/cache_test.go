package entity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/trending/internal/model"
)

type countingResolver struct {
	calls int
	err   error
}

func (c *countingResolver) Resolve(ctx context.Context, id uint64) (any, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return id, nil
}

// checkedResolver 额外实现 Checker，gone 中的主键视为已删除
type checkedResolver struct {
	countingResolver
	gone     map[uint64]bool
	checks   int
	checkErr error
}

func (c *checkedResolver) Exists(ctx context.Context, id uint64) (bool, error) {
	c.checks++
	if c.checkErr != nil {
		return false, c.checkErr
	}
	return !c.gone[id], nil
}

func TestCachedResolver(t *testing.T) {
	t.Run("hit within ttl", func(t *testing.T) {
		next := &countingResolver{}
		c := NewCachedResolver(next, 8, time.Minute)

		for i := 0; i < 3; i++ {
			obj, err := c.Resolve(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), obj)
		}
		assert.Equal(t, 1, next.calls)
	})

	t.Run("expired entries are reloaded", func(t *testing.T) {
		next := &countingResolver{}
		c := NewCachedResolver(next, 8, 20*time.Millisecond)

		_, err := c.Resolve(context.Background(), 1)
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
		_, err = c.Resolve(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingResolver{err: ErrNotFound}
		c := NewCachedResolver(next, 8, time.Minute)

		_, err := c.Resolve(context.Background(), 1)
		assert.True(t, errors.Is(err, ErrNotFound))
		_, err = c.Resolve(context.Background(), 1)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, 2, next.calls)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		next := &countingResolver{}
		c := NewCachedResolver(next, 2, time.Minute)

		ctx := context.Background()
		_, _ = c.Resolve(ctx, 1)
		_, _ = c.Resolve(ctx, 2)
		_, _ = c.Resolve(ctx, 3)
		assert.Equal(t, 3, next.calls)

		_, _ = c.Resolve(ctx, 1)
		assert.Equal(t, 4, next.calls)
	})

	t.Run("purge", func(t *testing.T) {
		next := &countingResolver{}
		c := NewCachedResolver(next, 0, time.Minute)

		_, _ = c.Resolve(context.Background(), 1)
		c.Purge()
		_, _ = c.Resolve(context.Background(), 1)
		assert.Equal(t, 2, next.calls)
	})
}

func TestCachedResolver_Checker(t *testing.T) {
	t.Run("hit confirms existence without reloading", func(t *testing.T) {
		next := &checkedResolver{gone: map[uint64]bool{}}
		c := NewCachedResolver(next, 8, time.Minute)

		for i := 0; i < 3; i++ {
			obj, err := c.Resolve(context.Background(), 5)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), obj)
		}
		assert.Equal(t, 1, next.calls)
		assert.Equal(t, 2, next.checks)
	})

	t.Run("deleted entity is not served from cache", func(t *testing.T) {
		next := &checkedResolver{gone: map[uint64]bool{}}
		c := NewCachedResolver(next, 8, time.Minute)

		_, err := c.Resolve(context.Background(), 5)
		require.NoError(t, err)

		next.gone[5] = true
		obj, err := c.Resolve(context.Background(), 5)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, obj)

		// 条目已移除，下一次回源
		next.err = ErrNotFound
		_, err = c.Resolve(context.Background(), 5)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("check error passes through", func(t *testing.T) {
		boom := errors.New("boom")
		next := &checkedResolver{gone: map[uint64]bool{}}
		c := NewCachedResolver(next, 8, time.Minute)

		_, err := c.Resolve(context.Background(), 5)
		require.NoError(t, err)

		next.checkErr = boom
		_, err = c.Resolve(context.Background(), 5)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRegistry_Purge(t *testing.T) {
	next := &countingResolver{}
	r := NewRegistry()
	r.Register("article", NewCachedResolver(next, 8, time.Minute))
	r.Register("video", ResolverFunc(func(ctx context.Context, id uint64) (any, error) { return id, nil }))

	ref := model.EntityRef{EntityType: "article", EntityID: 1}
	_, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	r.Purge()
	_, err = r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
