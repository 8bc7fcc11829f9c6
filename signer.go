package bucketfront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SignerConfig holds configuration options for Signer.
type SignerConfig struct {
	Bucket  string
	Expires time.Duration // Validity window of issued URLs (default: 1h)
	Timeout time.Duration // Bound on a single signing call (0: none)
}

// Signer issues signed URLs and memoizes them for less than their validity
// window, so a cached URL is never served after it has expired.
type Signer struct {
	storage Storage
	cache   *Cache[string, SignedURL]
	cfg     SignerConfig
}

func NewSigner(storage Storage, cache *Cache[string, SignedURL], cfg SignerConfig) (*Signer, error) {
	if storage == nil {
		return nil, errors.New("new signer: storage is required")
	}
	if cache == nil {
		return nil, errors.New("new signer: cache is required")
	}
	if cfg.Expires <= 0 {
		cfg.Expires = time.Hour
	}
	if cache.TTL() >= cfg.Expires {
		return nil, fmt.Errorf("new signer: cache ttl %s must be shorter than url validity %s", cache.TTL(), cfg.Expires)
	}

	return &Signer{
		storage: storage,
		cache:   cache,
		cfg:     cfg,
	}, nil
}

// URL returns a signed URL granting method access to key.
// HEAD requests get their own signature; an empty method means GET.
//
// Error types returned:
//   - ErrSigning: The storage backend failed to sign; nothing is cached
//   - ErrSigning joined with ErrTimeout: Signing exceeded the configured timeout
func (s *Signer) URL(ctx context.Context, method string, key ObjectKey) (SignedURL, error) {
	if method == "" {
		method = http.MethodGet
	}

	return s.cache.GetOrCompute(s.cacheKey(method, key), func() (SignedURL, error) {
		signCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			signCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}

		u, err := s.storage.Sign(signCtx, method, key, s.cfg.Expires)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("sign %s: %w", key, errors.Join(ErrSigning, ErrTimeout, err))
			}
			return "", fmt.Errorf("sign %s: %w", key, errors.Join(ErrSigning, err))
		}
		return u, nil
	})
}

// GET URLs use the plain "bucket:key" form; other methods are qualified
// since their signatures differ.
func (s *Signer) cacheKey(method string, key ObjectKey) string {
	if method == http.MethodGet {
		return s.cfg.Bucket + ":" + key.String()
	}
	return method + " " + s.cfg.Bucket + ":" + key.String()
}
