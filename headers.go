package bucketfront

import (
	"net/http"
	"strings"
)

var requestBlocklist = map[string]struct{}{
	"Host":                {},
	"Connection":          {},
	"Keep-Alive":          {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Te":                  {},
	"Trailer":             {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Cookie":              {},
	"Origin":              {},
	"Referer":             {},
	"Authorization":       {},
}

var responseBlocklist = map[string]struct{}{
	"Connection":        {},
	"Keep-Alive":        {},
	"Te":                {},
	"Trailer":           {},
	"Transfer-Encoding": {},
	"Upgrade":           {},
	"Set-Cookie":        {},
	"Cache-Control":     {},
	"Expires":           {},
	"Age":               {},
	"Pragma":            {},
	"Vary":              {},
}

var responseBlockedPrefixes = []string{
	"Access-Control-",
	"X-Amz-",
}

// FilterRequestHeaders returns the client headers that may be forwarded to
// storage. Hop-by-hop headers, credentials and headers named in Connection
// are dropped. The input is not modified.
func FilterRequestHeaders(h http.Header) http.Header {
	named := connectionHeaders(h)

	out := make(http.Header, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		if _, blocked := requestBlocklist[canonical]; blocked {
			continue
		}
		if _, blocked := named[canonical]; blocked {
			continue
		}
		out[canonical] = append(out[canonical], values...)
	}
	return out
}

// FilterResponseHeaders returns the storage headers that may be relayed to
// the client. The gateway owns caching and CORS headers, so upstream ones
// are dropped along with hop-by-hop and storage-internal headers.
func FilterResponseHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		if _, blocked := responseBlocklist[canonical]; blocked {
			continue
		}
		if hasBlockedPrefix(canonical) {
			continue
		}
		out[canonical] = append(out[canonical], values...)
	}
	return out
}

func connectionHeaders(h http.Header) map[string]struct{} {
	named := make(map[string]struct{})
	for _, v := range h.Values("Connection") {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				named[http.CanonicalHeaderKey(f)] = struct{}{}
			}
		}
	}
	return named
}

func hasBlockedPrefix(name string) bool {
	for _, p := range responseBlockedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
