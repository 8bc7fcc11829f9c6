package bucketfront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"
)

// DefaultAssetMaxAge is the client cache lifetime, in seconds, of non-HTML assets.
const DefaultAssetMaxAge = 2592000

// KeyResolver maps a request path to the object key that serves it.
type KeyResolver interface {
	Resolve(ctx context.Context, path string) (ObjectKey, error)
}

// URLSigner issues signed URLs for object keys.
type URLSigner interface {
	URL(ctx context.Context, method string, key ObjectKey) (SignedURL, error)
}

// HTTPDoer sends upstream requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProxyConfig holds configuration options for Proxy.
type ProxyConfig struct {
	AssetMaxAge  int           // Cache-Control max-age for non-HTML assets (default: 2592000)
	FetchTimeout time.Duration // Bound on time to upstream response headers (0: none)
}

// Proxy resolves request paths to objects and opens them upstream through
// signed URLs.
type Proxy struct {
	resolver KeyResolver
	signer   URLSigner
	client   HTTPDoer
	cfg      ProxyConfig
}

func NewProxy(resolver KeyResolver, signer URLSigner, client HTTPDoer, cfg ProxyConfig) (*Proxy, error) {
	if resolver == nil {
		return nil, errors.New("new proxy: resolver is required")
	}
	if signer == nil {
		return nil, errors.New("new proxy: signer is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.AssetMaxAge <= 0 {
		cfg.AssetMaxAge = DefaultAssetMaxAge
	}

	return &Proxy{
		resolver: resolver,
		signer:   signer,
		client:   client,
		cfg:      cfg,
	}, nil
}

// Serve resolves path, fetches the object from storage and returns the
// upstream response with filtered headers and the gateway's cache policy.
// The caller must close the returned body.
//
// The upstream request is bound to ctx, so cancelling ctx aborts the
// transfer. Upstream statuses (206, 304, 412...) are passed through.
//
// Error types returned:
//   - ErrNotFound: Neither the path nor any fallback exists
//   - ErrSigning: No signed URL could be obtained
//   - ErrUpstreamFetch: Storage could not be probed or fetched from
//   - ErrTimeout: Joined with the above when a deadline expired
//   - ErrResponseBuild: The upstream request could not be constructed
func (p *Proxy) Serve(ctx context.Context, method, path string, header http.Header) (*Response, error) {
	key, err := p.resolver.Resolve(ctx, path)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Error("resolve failed", "path", path, "err", err)
		}
		return nil, fmt.Errorf("serve: %w", err)
	}

	signed, err := p.signer.URL(ctx, method, key)
	if err != nil {
		slog.Error("sign failed", "key", key, "err", err)
		return nil, fmt.Errorf("serve %s: %w", key, err)
	}

	resp, err := p.fetch(ctx, method, key, signed, header)
	if err != nil {
		slog.Error("fetch failed", "key", key, "err", err)
		return nil, fmt.Errorf("serve %s: %w", key, err)
	}

	out := FilterResponseHeaders(resp.Header)
	if out.Get("Content-Type") == "" {
		out.Set("Content-Type", ContentType(key))
	}
	if resp.StatusCode == http.StatusOK && out.Get("Cache-Control") == "" && !key.IsHTML() {
		out.Set("Cache-Control", "public, max-age="+strconv.Itoa(p.cfg.AssetMaxAge))
	}

	return &Response{
		Status: resp.StatusCode,
		Header: out,
		Body:   resp.Body,
		Key:    key,
	}, nil
}

func (p *Proxy) fetch(ctx context.Context, method string, key ObjectKey, signed SignedURL, header http.Header) (*http.Response, error) {
	fetchCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(fetchCtx, method, string(signed), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch %s: %w", key, errors.Join(ErrResponseBuild, unwrapURLError(err)))
	}
	req.Header = FilterRequestHeaders(header)

	// The timer only bounds the wait for response headers; the body is
	// streamed under the caller's context.
	var timedOut atomic.Bool
	var timer *time.Timer
	if p.cfg.FetchTimeout > 0 {
		timer = time.AfterFunc(p.cfg.FetchTimeout, func() {
			timedOut.Store(true)
			cancel()
		})
	}

	resp, err := p.client.Do(req)
	stopped := timer == nil || timer.Stop()
	if err != nil {
		cancel()
		if timedOut.Load() {
			return nil, fmt.Errorf("fetch %s: %w", key, errors.Join(ErrUpstreamFetch, ErrTimeout))
		}
		return nil, fmt.Errorf("fetch %s: %w", key, errors.Join(ErrUpstreamFetch, unwrapURLError(err)))
	}
	if !stopped {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetch %s: %w", key, errors.Join(ErrUpstreamFetch, ErrTimeout))
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// ContentType guesses a media type from the key's extension.
func ContentType(key ObjectKey) string {
	if ct := mime.TypeByExtension(key.Ext()); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// unwrapURLError strips *url.Error, whose message embeds the signed URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
