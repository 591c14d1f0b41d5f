// Package metrics provides Prometheus-compatible metrics collection.
//
// It implements the Prometheus text exposition format (text/plain;
// version=0.0.4) for counters, gauges and histograms. Every metric carries a
// fixed set of label names and keeps one series per label combination; all
// operations are safe for concurrent use.
//
//	reg := metrics.NewRegistry()
//	requests := reg.NewCounter("wsbind_soap_requests_total", "Requests", "url", "method", "status")
//	_ = requests.Inc("/service/fibonacci", "POST", "200")
//	http.Handle("/metrics", reg.Handler())
package metrics
