package bucketfront

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// ObjectKey is a normalized storage key. It never starts or ends with a slash.
type ObjectKey string

func (k ObjectKey) String() string {
	return string(k)
}

// Ext returns the lowercased file extension of the key including the dot.
func (k ObjectKey) Ext() string {
	return strings.ToLower(path.Ext(string(k)))
}

// IsHTML reports whether the key names an HTML document.
func (k ObjectKey) IsHTML() bool {
	switch k.Ext() {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// SignedURL is a time-limited URL granting read access to a single object.
type SignedURL string

type FallbackPolicy string

const (
	// FallbackWalkUp tests index.html in every ancestor directory, deepest first.
	FallbackWalkUp FallbackPolicy = "walkup"
	// FallbackFirstLevel tests only the first path segment's index.html.
	FallbackFirstLevel FallbackPolicy = "first-level"
	// FallbackNone serves exact keys and directory indexes only.
	FallbackNone FallbackPolicy = "none"
)

func (p FallbackPolicy) IsValid() bool {
	switch p {
	case FallbackWalkUp, FallbackFirstLevel, FallbackNone:
		return true
	default:
		return false
	}
}

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	policy := FallbackPolicy(s)
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid fallback policy: %s (valid policies: walkup, first-level, none): %w", s, ErrInvalidInput)
	}
	return policy, nil
}

// Response is an upstream object ready to be streamed to the client.
// Body must be closed by whoever consumes it.
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
	Key    ObjectKey
}

// CacheStats is a point-in-time snapshot of a cache's counters.
type CacheStats struct {
	Entries    int
	Hits       uint64
	Misses     uint64
	Insertions uint64
	Evictions  uint64
}
