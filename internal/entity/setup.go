package entity

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/trending/config"
)

// NewRegistryFromConfig 按配置注册表级解析器，cacheSize > 0 时包一层 LRU
func NewRegistryFromConfig(db *gorm.DB, entities []config.EntityConfig, trending config.TrendingConfig) (*Registry, error) {
	registry := NewRegistry()
	for _, e := range entities {
		if e.Type == "" || e.Table == "" {
			return nil, fmt.Errorf("entity config requires type and table: %+v", e)
		}

		var resolver Resolver = NewTableResolver(db, e.Table, e.KeyColumn())
		if trending.ResolverCacheSize > 0 {
			resolver = NewCachedResolver(resolver, trending.ResolverCacheSize, trending.ResolverCacheTTL())
		}
		registry.Register(e.Type, resolver)
	}
	return registry, nil
}
