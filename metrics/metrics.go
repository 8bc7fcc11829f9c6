package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagarc03/bucketfront"
)

const namespace = "bucketfront"

// Metrics holds the gateway's collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	bytesSent *prometheus.CounterVec
	inflight  prometheus.Gauge
}

// New creates a registry with the Go runtime and process collectors and
// the HTTP request metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed",
		}, []string{"method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
		bytesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_response_bytes_total",
			Help:      "Total bytes of response bodies sent to clients",
		}, []string{"method"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request count, latency and bytes sent per method and
// status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inflight.Inc()
		defer m.inflight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)
			m.requests.WithLabelValues(r.Method, code).Inc()
			m.duration.WithLabelValues(r.Method, code).Observe(time.Since(start).Seconds())
			m.bytesSent.WithLabelValues(r.Method).Add(float64(ww.BytesWritten()))
		}()

		next.ServeHTTP(ww, r)
	})
}

// RegisterCache exports the counters of a cache under the given name.
// stats is called on every scrape.
func (m *Metrics) RegisterCache(name string, stats func() bucketfront.CacheStats) {
	labels := prometheus.Labels{"cache": name}
	factory := promauto.With(m.registry)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "cache_entries",
		Help:        "Number of unexpired entries in the cache",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Entries) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_hits_total",
		Help:        "Total number of cache hits",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Hits) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_misses_total",
		Help:        "Total number of cache misses",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Misses) })

	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cache_evictions_total",
		Help:        "Total number of entries evicted or expired",
		ConstLabels: labels,
	}, func() float64 { return float64(stats().Evictions) })
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
