package bucketfront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LookupCache memoizes existence probes and whole-path resolutions.
// A resolution cached as the empty key records that the path resolved to
// nothing.
type LookupCache struct {
	probes  *Cache[string, bool]
	results *Cache[string, ObjectKey]
}

func NewLookupCache(ttl time.Duration, capacity uint64) *LookupCache {
	return &LookupCache{
		probes:  NewCache[string, bool](ttl, capacity),
		results: NewCache[string, ObjectKey](ttl, capacity),
	}
}

// Run purges expired entries from both caches until ctx is cancelled.
func (c *LookupCache) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.probes.Run(ctx)
	}()
	c.results.Run(ctx)
	<-done
}

func (c *LookupCache) ProbeStats() CacheStats {
	return c.probes.Stats()
}

func (c *LookupCache) ResultStats() CacheStats {
	return c.results.Stats()
}

// ResolverConfig holds configuration options for Resolver.
type ResolverConfig struct {
	Bucket        string
	Prefix        string         // Namespace segment (default: www)
	Policy        FallbackPolicy // Directory fallback policy (default: walkup)
	HTMLExtension bool           // Also try "<path>.html" for extensionless paths
	ProbeTimeout  time.Duration  // Bound on a single existence probe (0: none)
}

// Resolver maps request paths to the object key that should serve them,
// falling back to index documents for client-side routed applications.
type Resolver struct {
	storage Storage
	cache   *LookupCache
	cfg     ResolverConfig
}

func NewResolver(storage Storage, cache *LookupCache, cfg ResolverConfig) (*Resolver, error) {
	if storage == nil {
		return nil, errors.New("new resolver: storage is required")
	}
	if cache == nil {
		return nil, errors.New("new resolver: cache is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	cfg.Prefix = JoinKey(cfg.Prefix)
	if cfg.Policy == "" {
		cfg.Policy = FallbackWalkUp
	}
	if !cfg.Policy.IsValid() {
		return nil, fmt.Errorf("new resolver: invalid fallback policy: %s", cfg.Policy)
	}

	return &Resolver{
		storage: storage,
		cache:   cache,
		cfg:     cfg,
	}, nil
}

// Key returns the direct object key for a request path, without probing.
func (r *Resolver) Key(p string) ObjectKey {
	return Resolve(r.cfg.Prefix, p)
}

// Resolve returns the first existing candidate key for p.
//
// Candidates are probed in order: the direct key (or the directory index),
// the ".html" sibling when enabled, then index.html files chosen by the
// fallback policy, then the root index.html. Both individual probes and the
// final answer are cached.
//
// Error types returned:
//   - ErrNotFound: No candidate exists
//   - ErrUpstreamFetch: A probe failed; nothing is cached for the path
func (r *Resolver) Resolve(ctx context.Context, p string) (ObjectKey, error) {
	pathKey := r.cfg.Bucket + ":path:" + normalizePath(p)

	if key, ok := r.cache.results.Get(pathKey); ok {
		if key == "" {
			return "", fmt.Errorf("resolve %s: %w", p, ErrNotFound)
		}
		return key, nil
	}

	candidates := Candidates(r.cfg.Prefix, p, r.cfg.Policy, r.cfg.HTMLExtension)
	for i, key := range candidates {
		found, err := r.exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", p, err)
		}
		if !found {
			continue
		}

		if i > 0 {
			slog.Debug("fallback resolved", "path", p, "key", key)
		}
		r.cache.results.Set(pathKey, key)
		return key, nil
	}

	r.cache.results.Set(pathKey, "")
	return "", fmt.Errorf("resolve %s: %w", p, ErrNotFound)
}

func (r *Resolver) exists(ctx context.Context, key ObjectKey) (bool, error) {
	return r.cache.probes.GetOrCompute(r.cfg.Bucket+":"+key.String(), func() (bool, error) {
		probeCtx := ctx
		if r.cfg.ProbeTimeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, r.cfg.ProbeTimeout)
			defer cancel()
		}

		found, err := r.storage.Exists(probeCtx, key)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return false, fmt.Errorf("probe %s: %w", key, errors.Join(ErrUpstreamFetch, ErrTimeout, err))
			}
			return false, fmt.Errorf("probe %s: %w", key, errors.Join(ErrUpstreamFetch, err))
		}
		return found, nil
	})
}

// normalizePath returns the canonical form of p used for cache keys.
// Directory paths keep their trailing slash.
func normalizePath(p string) string {
	norm := strings.Join(Segments(p), "/")
	if norm != "" && strings.HasSuffix(p, "/") {
		norm += "/"
	}
	return norm
}
