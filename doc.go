// Package bucketfront serves a static web asset tree, including single page
// applications, straight out of an S3-compatible bucket without exposing
// bucket credentials to clients.
//
// A request path is mapped to an object key under a namespace prefix, the
// key is checked for existence, and when it is missing the resolver falls
// back to the nearest index.html so client-side routes keep working. The
// resolved object is fetched through a time-limited signed URL and streamed
// back with filtered headers and a cache policy derived from its type.
//
// # Key Components
//
//   - Resolver: Path to object key resolution with SPA fallback
//   - Signer: Signed URL issuance with a bounded, expiring cache
//   - Proxy: Upstream fetch, header filtering and cache policy
//   - Storage: Interface for the object store (see the s3store package)
//   - Cache: Generic bounded expiring cache shared by the above
//
// # Fallback Policies
//
// Missing keys fall back according to one of three policies:
//
//   - FallbackWalkUp: index.html of every ancestor, deepest first, then the root
//   - FallbackFirstLevel: index.html of the first path segment, then the root
//   - FallbackNone: exact keys and directory indexes only
//
// # Example Usage
//
//	lookups := bucketfront.NewLookupCache(time.Minute, 32768)
//	resolver, err := bucketfront.NewResolver(store, lookups, bucketfront.ResolverConfig{
//	    Bucket: "site",
//	    Policy: bucketfront.FallbackWalkUp,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	urls := bucketfront.NewCache[string, bucketfront.SignedURL](30*time.Minute, 8192)
//	signer, err := bucketfront.NewSigner(store, urls, bucketfront.SignerConfig{
//	    Bucket:  "site",
//	    Expires: time.Hour,
//	})
//
//	proxy, err := bucketfront.NewProxy(resolver, signer, http.DefaultClient, bucketfront.ProxyConfig{})
//	resp, err := proxy.Serve(ctx, http.MethodGet, "/app/settings", r.Header)
//
// See the http package for the HTTP front end and the s3store package for
// the storage implementation.
package bucketfront
