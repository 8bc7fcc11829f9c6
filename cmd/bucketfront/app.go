package main

import (
	"context"
	"fmt"

	"github.com/sagarc03/bucketfront"
	"github.com/sagarc03/bucketfront/config"
	"github.com/sagarc03/bucketfront/s3store"
)

// gateway holds the wired components shared by serve and resolve.
type gateway struct {
	store    *s3store.Store
	lookups  *bucketfront.LookupCache
	urls     *bucketfront.Cache[string, bucketfront.SignedURL]
	resolver *bucketfront.Resolver
	proxy    *bucketfront.Proxy
}

func newGateway(ctx context.Context, cfg *config.Config) (*gateway, error) {
	store, err := s3store.New(ctx, s3store.Config{
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}

	lookups := bucketfront.NewLookupCache(cfg.Fallback.CacheTTL, cfg.Fallback.CacheCapacity)
	resolver, err := bucketfront.NewResolver(store, lookups, bucketfront.ResolverConfig{
		Bucket:        cfg.Storage.Bucket,
		Prefix:        cfg.Storage.Prefix,
		Policy:        cfg.FallbackPolicy(),
		HTMLExtension: cfg.Fallback.HTMLExtension,
		ProbeTimeout:  cfg.Proxy.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	urls := bucketfront.NewCache[string, bucketfront.SignedURL](cfg.Sign.CacheTTL, cfg.Sign.CacheCapacity)
	signer, err := bucketfront.NewSigner(store, urls, bucketfront.SignerConfig{
		Bucket:  cfg.Storage.Bucket,
		Expires: cfg.Sign.Expires,
		Timeout: cfg.Proxy.SignTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	proxy, err := bucketfront.NewProxy(resolver, signer, nil, bucketfront.ProxyConfig{
		AssetMaxAge:  cfg.Proxy.AssetMaxAge,
		FetchTimeout: cfg.Proxy.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create proxy: %w", err)
	}

	return &gateway{
		store:    store,
		lookups:  lookups,
		urls:     urls,
		resolver: resolver,
		proxy:    proxy,
	}, nil
}
