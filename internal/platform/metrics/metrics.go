package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
// All recording methods accept a nil receiver.
type Collector struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	ledgersGenerated prometheus.Counter
	emails           *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	jobRuns          *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrms",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hrms",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ledgersGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrms",
			Name:      "payroll_ledgers_generated_total",
			Help:      "Draft ledgers created by period generation.",
		}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrms",
			Name:      "emails_total",
			Help:      "Outgoing emails by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrms",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result.",
		}, []string{"namespace", "result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrms",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and status.",
		}, []string{"job", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.ledgersGenerated,
		c.emails,
		c.cacheLookups,
		c.jobRuns,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (c *Collector) LedgersGenerated(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.ledgersGenerated.Add(float64(n))
}

func (c *Collector) EmailSent(ok bool) {
	if c == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	c.emails.WithLabelValues(result).Inc()
}

func (c *Collector) CacheLookup(namespace string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(namespace, result).Inc()
}

func (c *Collector) JobRun(job, status string) {
	if c == nil {
		return
	}
	c.jobRuns.WithLabelValues(job, status).Inc()
}
