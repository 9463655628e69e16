package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spread_dashboard"

// Collector owns the dashboard collectors and their registry.
type Collector struct {
	registry *prometheus.Registry

	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	cacheFallbacks   *prometheus.CounterVec
	ingestRuns       *prometheus.CounterVec
	ingestRows       *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Dashboard refresh cycles by outcome.",
		}, []string{"outcome"}),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of dashboard refresh cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"outcome"}),
		cacheFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "fallbacks_total",
			Help:      "Failed fetches answered from the series cache or left without data.",
		}, []string{"served"}),
		ingestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Window ingest runs by result.",
		}, []string{"window", "success"}),
		ingestRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows",
			Help:      "Rows stored by the last successful ingest of a window.",
		}, []string{"window"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
	}

	c.registry.MustRegister(
		c.pipelineRuns,
		c.pipelineDuration,
		c.cacheFallbacks,
		c.ingestRuns,
		c.ingestRows,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveRun(outcome string, duration time.Duration) {
	c.pipelineRuns.WithLabelValues(outcome).Inc()
	c.pipelineDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (c *Collector) ObserveFallback(stale bool) {
	c.cacheFallbacks.WithLabelValues(strconv.FormatBool(stale)).Inc()
}

func (c *Collector) ObserveIngest(window string, rows int, err error) {
	c.ingestRuns.WithLabelValues(window, strconv.FormatBool(err == nil)).Inc()
	if err == nil {
		c.ingestRows.WithLabelValues(window).Set(float64(rows))
	}
}

// Middleware records every routed request under its route template.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, req)

		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}
		method := strings.ToUpper(req.Method)

		c.httpRequests.WithLabelValues(method, path, strconv.Itoa(recorder.status)).Inc()
		c.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}

	return hijacker.Hijack()
}
