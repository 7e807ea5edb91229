package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UnmatchedRoute labels requests that did not match a registered route
const UnmatchedRoute = "unmatched"

// Collector records HTTP and process metrics using Prometheus
type Collector struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	uptime           prometheus.Gauge
	buildInfo        *prometheus.GaugeVec
}

// NewCollector creates a new Prometheus metrics collector registered on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devops_info_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devops_info_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "devops_info_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "devops_info_uptime_seconds",
				Help: "Seconds since the service started",
			},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "devops_info_build_info",
				Help: "Served name and version plus build metadata, always 1",
			},
			[]string{"name", "version", "build_version"},
		),
	}
}

// RecordRequest records a completed HTTP request.
// An empty route is recorded as UnmatchedRoute.
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncInFlight increments the in-flight request gauge
func (c *Collector) IncInFlight() {
	c.requestsInFlight.Inc()
}

// DecInFlight decrements the in-flight request gauge
func (c *Collector) DecInFlight() {
	c.requestsInFlight.Dec()
}

// SetUptime sets the uptime gauge
func (c *Collector) SetUptime(uptime time.Duration) {
	c.uptime.Set(uptime.Seconds())
}

// SetBuildInfo publishes the build info series
func (c *Collector) SetBuildInfo(name, version, buildVersion string) {
	c.buildInfo.WithLabelValues(name, version, buildVersion).Set(1)
}
