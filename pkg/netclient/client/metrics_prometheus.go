//go:build prometheus

package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the HTTP driver. Compiled only with the
// `prometheus` build tag; plain builds keep the counters in Stats.
var (
	driverRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netclient",
			Subsystem: "driver",
			Name:      "requests_total",
			Help:      "Total number of single-request exchanges issued",
		},
	)

	driverRedirects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netclient",
			Subsystem: "driver",
			Name:      "redirects_total",
			Help:      "Total number of redirect hops followed",
		},
	)

	driverFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netclient",
			Subsystem: "driver",
			Name:      "failures_total",
			Help:      "Total number of invalid envelopes returned",
		},
	)
)

// Collector bridges a Client's plain counters into Prometheus on each
// scrape.
type Collector struct {
	client *Client
	last   Stats
}

// NewCollector creates a Prometheus collector for one Client.
func NewCollector(c *Client) *Collector {
	return &Collector{client: c}
}

// Describe implements prometheus.Collector. Metrics are registered via
// promauto already.
func (pc *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector: it adds the delta since the
// previous scrape to the counters.
func (pc *Collector) Collect(ch chan<- prometheus.Metric) {
	cur := pc.client.Stats()
	driverRequests.Add(float64(cur.Requests - pc.last.Requests))
	driverRedirects.Add(float64(cur.Redirects - pc.last.Redirects))
	driverFailures.Add(float64(cur.Failures - pc.last.Failures))
	pc.last = cur
}
