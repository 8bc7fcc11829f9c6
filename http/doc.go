// Package http provides the HTTP front end of the gateway.
//
// The router answers GET and HEAD on every path by handing the request to a
// Service (normally *bucketfront.Proxy) and streaming the result. Any other
// method gets 405.
//
// # Features
//
//   - Streaming responses with a 500 for failures before the first byte
//   - Plain-text error bodies; details stay in the log
//   - Optional 303 redirect for the root path
//   - Request ids (X-Request-Id) and one log line per request
//   - Configurable CORS support
//
// # Error Mapping
//
//	bucketfront.ErrNotFound       404, empty body
//	bucketfront.ErrSigning        502 Bad Gateway
//	bucketfront.ErrUpstreamFetch  502 Bad Gateway
//	bucketfront.ErrTimeout        502 Bad Gateway
//	anything else                 500 Internal Server Error
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    RootRedirect: "https://example.com/",
//	    CORS:         http.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
//	}
//	handler := http.NewHandler(&handlerCfg, proxy)
//	http.ListenAndServe(":3000", handler.Router())
package http
