package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	taskCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "task_cache_hits_total",
		Help: "Task list reads served from cache.",
	})

	taskCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "task_cache_misses_total",
		Help: "Task list reads that fell through to the store.",
	})

	streamSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_subscribers",
		Help: "Currently connected realtime subscribers.",
	})

	ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "service_ready",
		Help: "1 when the last readiness probe succeeded.",
	})

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Taskhub API build information.",
		},
		[]string{"version"},
	)
)

// Init registers all service metrics in the default registry. Call once at
// startup before serving traffic.
func Init(version string) {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		taskCacheHits, taskCacheMisses, streamSubscribers,
		ready, buildInfo,
	)
	buildInfo.WithLabelValues(version).Set(1)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CacheHit records a task-list cache hit.
func CacheHit() { taskCacheHits.Inc() }

// CacheMiss records a task-list cache miss.
func CacheMiss() { taskCacheMisses.Inc() }

// StreamSubscriberAdd adjusts the connected subscriber gauge.
func StreamSubscriberAdd(delta float64) { streamSubscribers.Add(delta) }

// SetReady reflects the result of the latest readiness probe.
func SetReady(ok bool) {
	if ok {
		ready.Set(1)
		return
	}
	ready.Set(0)
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource identifiers so metric labels stay bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	for _, prefix := range []string{"/v1/tasks/", "/v1/users/"} {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || rest == "" {
			continue
		}
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 1 {
			return prefix + ":id"
		}
		// Only one nested action exists per resource; anything deeper is
		// left as-is and will 404 anyway.
		if parts[1] == "assign" {
			return prefix + ":id/assign"
		}
		return path
	}
	return path
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the instrumented wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
