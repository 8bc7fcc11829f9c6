package bucketfront

import (
	"path"
	"strings"
)

const (
	// DefaultPrefix is the namespace segment every object key lives under.
	DefaultPrefix = "www"
	// IndexFile is the document served for directories and SPA fallbacks.
	IndexFile = "index.html"
)

// Segments splits a request path into its normalized segments.
// Empty and "." segments are dropped and ".." removes the preceding
// segment. It never climbs above the root.
func Segments(p string) []string {
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, s := range parts {
		switch s {
		case "", ".":
			continue
		case "..":
			if len(segs) > 0 {
				segs = segs[:len(segs)-1]
			}
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// JoinKey joins components with a single slash, trimming slashes around
// each component and skipping empty ones.
//
//	JoinKey("www/", "/app")       // "www/app"
//	JoinKey("www", "", "app/")    // "www/app"
//	JoinKey("/", "/")             // ""
func JoinKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// Resolve maps a request path to an object key under prefix.
// It is total: malformed input degrades to the root key (the bare prefix).
func Resolve(prefix, p string) ObjectKey {
	segs := Segments(p)
	return ObjectKey(JoinKey(prefix, strings.Join(segs, "/")))
}

// IsDirPath reports whether a request path addresses a directory: the root,
// or any path ending in a slash.
func IsDirPath(p string) bool {
	return len(Segments(p)) == 0 || strings.HasSuffix(p, "/")
}

// Candidates lists, in probe order, every key that may serve the request
// path under the given fallback policy. Duplicates are removed.
func Candidates(prefix, p string, policy FallbackPolicy, htmlExtension bool) []ObjectKey {
	segs := Segments(p)
	out := make([]ObjectKey, 0, len(segs)+3)
	seen := make(map[ObjectKey]struct{}, len(segs)+3)
	add := func(parts ...string) {
		k := ObjectKey(JoinKey(parts...))
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	joined := strings.Join(segs, "/")
	if IsDirPath(p) {
		add(prefix, joined, IndexFile)
	} else {
		add(prefix, joined)
		if htmlExtension && path.Ext(segs[len(segs)-1]) == "" {
			add(prefix, joined+".html")
		}
	}

	switch policy {
	case FallbackWalkUp:
		for i := len(segs); i >= 1; i-- {
			add(prefix, strings.Join(segs[:i], "/"), IndexFile)
		}
	case FallbackFirstLevel:
		if len(segs) > 0 {
			add(prefix, segs[0], IndexFile)
		}
	case FallbackNone:
		return out
	}

	add(prefix, IndexFile)
	return out
}
