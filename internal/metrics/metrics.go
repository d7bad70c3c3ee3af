// Package metrics exposes Prometheus collectors for parsing and HTTP traffic
// and a rolling latency window for the stats endpoint.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dgallion1/resumeparse/internal/resume"
)

// Parse outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeSourceError = "source_error"
	OutcomeStoreError  = "store_error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	parsesTotal     *prometheus.CounterVec
	parseDuration   *prometheus.HistogramVec
	sectionsFound   *prometheus.CounterVec
	internships     prometheus.Histogram
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Stats keeps parse latencies for GET /api/stats/parse.
	Stats *ParseStats
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_parses_total",
				Help: "Documents parsed, by format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_parse_duration_seconds",
				Help:    "Time from raw bytes to extracted fields.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"format"},
		),
		sectionsFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_sections_found_total",
				Help: "Section headings located, by section kind.",
			},
			[]string{"section"},
		),
		internships: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "resume_internships_per_document",
				Help:    "Internship lines counted per parsed document.",
				Buckets: []float64{0, 1, 2, 3, 5, 8},
			},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		Stats: NewParseStats(time.Hour),
	}

	for _, c := range []prometheus.Collector{
		m.parsesTotal, m.parseDuration, m.sectionsFound, m.internships,
		m.requestCount, m.requestDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveParse records one parse attempt. format is the file extension,
// with or without the dot. A nil *Metrics records nothing.
func (m *Metrics) ObserveParse(format, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	m.parsesTotal.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeUnsupported || outcome == OutcomeStoreError {
		return
	}
	m.parseDuration.WithLabelValues(format).Observe(d.Seconds())
	m.Stats.Record(d.Milliseconds(), outcome != OutcomeOK)
}

// ObserveResult records which sections a document had and how many
// internship lines it carried.
func (m *Metrics) ObserveResult(found []resume.SectionKind, res resume.Result) {
	if m == nil {
		return
	}
	for _, k := range found {
		m.sectionsFound.WithLabelValues(string(k)).Inc()
	}
	m.internships.Observe(float64(res.Internships))
}

// Middleware counts requests by method, chi route pattern and status.
// Requests to /metrics are not counted.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestCount.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
