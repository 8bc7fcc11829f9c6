package bucketfront_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sagarc03/bucketfront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func NewSigner(t *testing.T, cfg bucketfront.SignerConfig) (*bucketfront.Signer, *SpyStorage) {
	t.Helper()
	spy := new(SpyStorage)
	if cfg.Bucket == "" {
		cfg.Bucket = "site"
	}
	if cfg.Expires == 0 {
		cfg.Expires = time.Hour
	}
	urls := bucketfront.NewCache[string, bucketfront.SignedURL](30*time.Minute, 8192)
	s, err := bucketfront.NewSigner(spy, urls, cfg)
	require.NoError(t, err, "new signer")
	return s, spy
}

func TestNewSigner_CacheTTLMustBeShorterThanExpiry(t *testing.T) {
	spy := new(SpyStorage)

	tests := []struct {
		name      string
		cacheTTL  time.Duration
		expires   time.Duration
		expectErr bool
	}{
		{name: "shorter ttl", cacheTTL: 30 * time.Minute, expires: time.Hour},
		{name: "equal ttl", cacheTTL: time.Hour, expires: time.Hour, expectErr: true},
		{name: "longer ttl", cacheTTL: 2 * time.Hour, expires: time.Hour, expectErr: true},
		{name: "default expiry", cacheTTL: 30 * time.Minute, expires: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := bucketfront.NewCache[string, bucketfront.SignedURL](tt.cacheTTL, 16)
			_, err := bucketfront.NewSigner(spy, urls, bucketfront.SignerConfig{Bucket: "site", Expires: tt.expires})
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSigner_URLCached(t *testing.T) {
	s, spy := NewSigner(t, bucketfront.SignerConfig{})
	key := bucketfront.ObjectKey("www/app.js")
	spy.On("Sign", mock.Anything, http.MethodGet, key, time.Hour).
		Return(bucketfront.SignedURL("https://s3.local/site/www/app.js?X-Amz-Signature=1"), nil).Once()

	u1, err := s.URL(context.Background(), http.MethodGet, key)
	require.NoError(t, err)
	u2, err := s.URL(context.Background(), "", key)
	require.NoError(t, err)

	assert.Equal(t, u1, u2)
	spy.AssertNumberOfCalls(t, "Sign", 1)
}

func TestSigner_HEADSignedSeparately(t *testing.T) {
	s, spy := NewSigner(t, bucketfront.SignerConfig{})
	key := bucketfront.ObjectKey("www/app.js")
	spy.On("Sign", mock.Anything, http.MethodGet, key, time.Hour).Return(bucketfront.SignedURL("get-url"), nil).Once()
	spy.On("Sign", mock.Anything, http.MethodHead, key, time.Hour).Return(bucketfront.SignedURL("head-url"), nil).Once()

	get, err := s.URL(context.Background(), http.MethodGet, key)
	require.NoError(t, err)
	head, err := s.URL(context.Background(), http.MethodHead, key)
	require.NoError(t, err)

	assert.Equal(t, bucketfront.SignedURL("get-url"), get)
	assert.Equal(t, bucketfront.SignedURL("head-url"), head)
	spy.AssertExpectations(t)
}

func TestSigner_FailureNotCached(t *testing.T) {
	s, spy := NewSigner(t, bucketfront.SignerConfig{})
	key := bucketfront.ObjectKey("www/app.js")
	boom := errors.New("no credentials")
	spy.On("Sign", mock.Anything, http.MethodGet, key, time.Hour).Return(bucketfront.SignedURL(""), boom).Once()
	spy.On("Sign", mock.Anything, http.MethodGet, key, time.Hour).Return(bucketfront.SignedURL("ok"), nil).Once()

	_, err := s.URL(context.Background(), http.MethodGet, key)
	assert.ErrorIs(t, err, bucketfront.ErrSigning)
	assert.ErrorIs(t, err, boom)

	u, err := s.URL(context.Background(), http.MethodGet, key)
	require.NoError(t, err)
	assert.Equal(t, bucketfront.SignedURL("ok"), u)
	spy.AssertNumberOfCalls(t, "Sign", 2)
}

func TestSigner_Timeout(t *testing.T) {
	s, spy := NewSigner(t, bucketfront.SignerConfig{Timeout: 10 * time.Millisecond})
	spy.On("Sign", mock.Anything, http.MethodGet, mock.Anything, time.Hour).
		Return(bucketfront.SignedURL(""), context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		})

	_, err := s.URL(context.Background(), http.MethodGet, "www/slow.js")
	assert.ErrorIs(t, err, bucketfront.ErrSigning)
	assert.ErrorIs(t, err, bucketfront.ErrTimeout)
}

func TestSigner_CacheKeyScopedByBucket(t *testing.T) {
	spy := new(SpyStorage)
	urls := bucketfront.NewCache[string, bucketfront.SignedURL](time.Minute, 16)
	a, err := bucketfront.NewSigner(spy, urls, bucketfront.SignerConfig{Bucket: "a"})
	require.NoError(t, err)
	b, err := bucketfront.NewSigner(spy, urls, bucketfront.SignerConfig{Bucket: "b"})
	require.NoError(t, err)

	spy.On("Sign", mock.Anything, http.MethodGet, bucketfront.ObjectKey("www/x"), time.Hour).Return(bucketfront.SignedURL("u"), nil)

	_, err = a.URL(context.Background(), http.MethodGet, "www/x")
	require.NoError(t, err)
	_, err = b.URL(context.Background(), http.MethodGet, "www/x")
	require.NoError(t, err)

	spy.AssertNumberOfCalls(t, "Sign", 2)
	assert.Equal(t, 2, urls.Len())
}
