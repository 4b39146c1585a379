// Package entity 维护实体类型到解析器的注册表，用于把 (类型, 主键) 还原为具体对象。
package entity

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/qs3c/trending/internal/model"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrUnregistered = errors.New("entity type not registered")
)

// Resolver 按主键查找某一类实体，不存在时返回 ErrNotFound
type Resolver interface {
	Resolve(ctx context.Context, id uint64) (any, error)
}

// ResolverFunc 允许用普通函数充当 Resolver
type ResolverFunc func(ctx context.Context, id uint64) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context, id uint64) (any, error) {
	return f(ctx, id)
}

type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register 注册（或替换）某个实体类型的解析器
func (r *Registry) Register(entityType string, resolver Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[entityType] = resolver
}

func (r *Registry) Has(entityType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resolvers[entityType]
	return ok
}

// Types 已注册的类型，按字典序
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.resolvers))
	for t := range r.resolvers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Resolve 解析引用指向的对象
func (r *Registry) Resolve(ctx context.Context, ref model.EntityRef) (any, error) {
	r.mu.RLock()
	resolver, ok := r.resolvers[ref.EntityType]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnregistered
	}
	return resolver.Resolve(ctx, ref.EntityID)
}

// Purge 清空所有带缓存的解析器
func (r *Registry) Purge() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, resolver := range r.resolvers {
		if p, ok := resolver.(interface{ Purge() }); ok {
			p.Purge()
		}
	}
}
