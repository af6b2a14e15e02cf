package registry

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
)

// RepositoryOption configures role registry construction.
type RepositoryOption func(*RepositoryOptions)

// RepositoryOptions captures optional behavior for registry persistence.
type RepositoryOptions struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
}

// WithCache toggles the repository cache decorator. Authority resolution runs
// on every guarded command, so hosts with read-heavy workloads should enable
// it.
func WithCache(enabled bool) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration to use when caching is enabled.
func WithCacheConfig(cfg cache.Config) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

func applyRepositoryOptions(options []RepositoryOption) RepositoryOptions {
	var opts RepositoryOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}

func (o RepositoryOptions) cacheConfig() cache.Config {
	if o.CacheConfig != nil {
		return *o.CacheConfig
	}
	return cache.DefaultConfig()
}

func wrapRoleCache(repo repository.Repository[*CustomRole], opts RepositoryOptions) (repository.Repository[*CustomRole], error) {
	if _, ok := repo.(*repositorycache.CachedRepository[*CustomRole]); ok {
		return repo, nil
	}
	service, err := cache.NewCacheService(opts.cacheConfig())
	if err != nil {
		return nil, err
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer()), nil
}

func wrapMembershipCache(repo repository.Repository[*Membership], opts RepositoryOptions) (repository.Repository[*Membership], error) {
	if _, ok := repo.(*repositorycache.CachedRepository[*Membership]); ok {
		return repo, nil
	}
	service, err := cache.NewCacheService(opts.cacheConfig())
	if err != nil {
		return nil, err
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer()), nil
}
