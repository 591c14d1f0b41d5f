package soap

import (
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/wsbind/pkg/metrics"
)

// Metrics are the servlet's request and binding metrics.
type Metrics struct {
	// RequestsTotal counts requests by endpoint url, method and status code.
	RequestsTotal *metrics.Counter
	// RequestDuration tracks request latency in seconds by endpoint url.
	RequestDuration *metrics.Histogram
	// EndpointsBound is the number of endpoints currently bound.
	EndpointsBound *metrics.Gauge
}

// NewMetrics registers the servlet metrics in reg.
func NewMetrics(reg *metrics.Registry) *Metrics {
	return &Metrics{
		RequestsTotal:   reg.NewCounter("wsbind_soap_requests_total", "Total number of requests to bound endpoints", "url", "method", "status"),
		RequestDuration: reg.NewHistogram("wsbind_soap_request_duration_seconds", "Request latency of bound endpoints", metrics.DefaultBuckets, "url"),
		EndpointsBound:  reg.NewGauge("wsbind_endpoints_bound", "Number of bound endpoints"),
	}
}

func (m *Metrics) observe(url, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	_ = m.RequestsTotal.Inc(url, method, strconv.Itoa(status))
	_ = m.RequestDuration.Observe(elapsed.Seconds(), url)
}

func (m *Metrics) setBound(n int) {
	if m == nil {
		return
	}
	_ = m.EndpointsBound.Set(float64(n))
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
