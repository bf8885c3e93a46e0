package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels
const (
	OpScrape   = "scrape"
	OpValidate = "validate"
	OpCrawl    = "crawl"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxycrawl_requests_total",
		Help: "Outbound requests by operation and outcome",
	}, []string{"operation", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proxycrawl_request_duration_seconds",
		Help:    "Duration of outbound requests by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	ProxiesScraped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "proxycrawl_proxies_scraped",
		Help: "Endpoints that survived filtering on the last scrape",
	})
)

// Observe records one finished request.
func Observe(operation, outcome string, elapsed time.Duration) {
	Requests.WithLabelValues(operation, outcome).Inc()
	RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr in the background. Listener errors are
// reported on the returned channel so the caller decides whether they matter.
func Serve(addr string) <-chan error {
	errc := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		errc <- http.ListenAndServe(addr, mux)
	}()
	return errc
}
