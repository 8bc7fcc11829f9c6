// Package metrics exposes Prometheus metrics for the gateway: request
// counts and latencies, response bytes, and cache counters.
package metrics
