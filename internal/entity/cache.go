package entity

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Checker 只判断实体是否仍然存在，比完整加载更轻
type Checker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// CachedResolver 在 Resolver 外加一层带过期时间的 LRU。
// 不存在的实体不缓存；next 实现 Checker 时，命中缓存也会确认实体仍存在，
// 删除立即可见。
type CachedResolver struct {
	next    Resolver
	checker Checker
	storage *expirable.LRU[uint64, any]
}

func NewCachedResolver(next Resolver, size int, ttl time.Duration) *CachedResolver {
	if size <= 0 {
		size = 1024
	}
	checker, _ := next.(Checker)
	return &CachedResolver{
		next:    next,
		checker: checker,
		storage: expirable.NewLRU[uint64, any](size, nil, ttl),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, id uint64) (any, error) {
	if value, ok := c.storage.Get(id); ok {
		if c.checker == nil {
			return value, nil
		}
		exists, err := c.checker.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return value, nil
		}
		c.storage.Remove(id)
		return nil, ErrNotFound
	}

	value, err := c.next.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	c.storage.Add(id, value)
	return value, nil
}

// Purge 清空缓存
func (c *CachedResolver) Purge() {
	c.storage.Purge()
}
