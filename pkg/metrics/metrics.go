package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't match the defined labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores the bits of a float64 for atomic access.
type atomicFloat64 struct {
	bits uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&a.bits))
}

func (a *atomicFloat64) Store(val float64) {
	atomic.StoreUint64(&a.bits, math.Float64bits(val))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&a.bits)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(&a.bits, old, next) {
			return
		}
	}
}

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns all metric samples for exposition.
	Collect() []Sample
}

// Sample represents a single metric sample with labels.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// family holds one series per label combination.
type family[S any] struct {
	name       string
	help       string
	labelNames []string
	newSeries  func() *S

	mu     sync.RWMutex
	series map[string]*labelled[S]
}

type labelled[S any] struct {
	labels map[string]string
	s      *S
}

func (f *family[S]) Name() string { return f.name }
func (f *family[S]) Help() string { return f.help }

func (f *family[S]) with(values []string) (*S, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s expected %d labels, got %d", ErrLabelCountMismatch, f.name, len(f.labelNames), len(values))
	}
	key := strings.Join(values, "\x00")

	f.mu.RLock()
	l, ok := f.series[key]
	f.mu.RUnlock()
	if ok {
		return l.s, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.series[key]; ok {
		return l.s, nil
	}
	labels := make(map[string]string, len(values))
	for i, name := range f.labelNames {
		labels[name] = values[i]
	}
	l = &labelled[S]{labels: labels, s: f.newSeries()}
	f.series[key] = l
	return l.s, nil
}

func (f *family[S]) each(fn func(labels map[string]string, s *S)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.series {
		fn(l.labels, l.s)
	}
}

// Counter is a monotonically increasing metric.
type Counter struct {
	*family[atomicFloat64]
}

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// Inc increments the series for the given label values.
func (c *Counter) Inc(values ...string) error {
	s, err := c.with(values)
	if err != nil {
		return err
	}
	s.Add(1)
	return nil
}

// Value returns the current value of a series, zero when it was never touched.
func (c *Counter) Value(values ...string) float64 {
	s, err := c.with(values)
	if err != nil {
		return 0
	}
	return s.Load()
}

// Collect returns all metric samples.
func (c *Counter) Collect() []Sample {
	var samples []Sample
	c.each(func(labels map[string]string, s *atomicFloat64) {
		samples = append(samples, Sample{Name: c.name, Labels: labels, Value: s.Load()})
	})
	return samples
}

// Gauge is a metric that can arbitrarily go up and down.
type Gauge struct {
	*family[atomicFloat64]
}

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// Add adds delta to the series for the given label values.
func (g *Gauge) Add(delta float64, values ...string) error {
	s, err := g.with(values)
	if err != nil {
		return err
	}
	s.Add(delta)
	return nil
}

// Set sets the series for the given label values.
func (g *Gauge) Set(value float64, values ...string) error {
	s, err := g.with(values)
	if err != nil {
		return err
	}
	s.Store(value)
	return nil
}

// Value returns the current value of a series.
func (g *Gauge) Value(values ...string) float64 {
	s, err := g.with(values)
	if err != nil {
		return 0
	}
	return s.Load()
}

// Collect returns all metric samples.
func (g *Gauge) Collect() []Sample {
	var samples []Sample
	g.each(func(labels map[string]string, s *atomicFloat64) {
		samples = append(samples, Sample{Name: g.name, Labels: labels, Value: s.Load()})
	})
	return samples
}

// Histogram tracks the distribution of observed values.
type Histogram struct {
	*family[histogramSeries]
	buckets []float64
}

type histogramSeries struct {
	counts []uint64 // per bucket, not cumulative
	sum    atomicFloat64
	count  uint64
}

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// Observe records value in the series for the given label values.
func (h *Histogram) Observe(value float64, values ...string) error {
	s, err := h.with(values)
	if err != nil {
		return err
	}
	for i, bound := range h.buckets {
		if value <= bound {
			atomic.AddUint64(&s.counts[i], 1)
			break
		}
	}
	s.sum.Add(value)
	atomic.AddUint64(&s.count, 1)
	return nil
}

// Count returns how many values a series has observed.
func (h *Histogram) Count(values ...string) uint64 {
	s, err := h.with(values)
	if err != nil {
		return 0
	}
	return atomic.LoadUint64(&s.count)
}

// Collect returns the cumulative bucket, _sum and _count samples.
func (h *Histogram) Collect() []Sample {
	var samples []Sample
	h.each(func(labels map[string]string, s *histogramSeries) {
		cumulative := uint64(0)
		for i, bound := range h.buckets {
			cumulative += atomic.LoadUint64(&s.counts[i])
			bl := make(map[string]string, len(labels)+1)
			for k, v := range labels {
				bl[k] = v
			}
			bl["le"] = formatFloat(bound)
			samples = append(samples, Sample{Name: h.name + "_bucket", Labels: bl, Value: float64(cumulative)})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: labels, Value: s.sum.Load()},
			Sample{Name: h.name + "_count", Labels: labels, Value: float64(atomic.LoadUint64(&s.count))},
		)
	})
	return samples
}

// Registry holds all registered metrics.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates a new metric registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// NewCounter creates and registers a new counter.
func (r *Registry) NewCounter(name, help string, labels ...string) *Counter {
	c := &Counter{family: newFamily[atomicFloat64](name, help, labels, func() *atomicFloat64 { return &atomicFloat64{} })}
	r.register(c)
	return c
}

// NewGauge creates and registers a new gauge.
func (r *Registry) NewGauge(name, help string, labels ...string) *Gauge {
	g := &Gauge{family: newFamily[atomicFloat64](name, help, labels, func() *atomicFloat64 { return &atomicFloat64{} })}
	r.register(g)
	return g
}

// NewHistogram creates and registers a new histogram. A +Inf bucket is
// always added.
func (r *Registry) NewHistogram(name, help string, buckets []float64, labels ...string) *Histogram {
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	if len(sorted) == 0 || !math.IsInf(sorted[len(sorted)-1], 1) {
		sorted = append(sorted, math.Inf(1))
	}
	h := &Histogram{buckets: sorted}
	h.family = newFamily[histogramSeries](name, help, labels, func() *histogramSeries {
		return &histogramSeries{counts: make([]uint64, len(sorted))}
	})
	r.register(h)
	return h
}

func newFamily[S any](name, help string, labels []string, newSeries func() *S) *family[S] {
	return &family[S]{
		name:       name,
		help:       help,
		labelNames: labels,
		newSeries:  newSeries,
		series:     make(map[string]*labelled[S]),
	}
}

// register panics on duplicate names, which would produce invalid exposition output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// Handler returns an http.Handler serving the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_ = r.Write(w)
	})
}

// Write writes every metric in Prometheus text format.
func (r *Registry) Write(w io.Writer) error {
	r.mu.RLock()
	metrics := append([]Metric(nil), r.metrics...)
	r.mu.RUnlock()

	for _, m := range metrics {
		samples := m.Collect()
		if len(samples) == 0 {
			continue
		}
		sort.SliceStable(samples, func(i, j int) bool {
			return formatLabels(samples[i].Labels) < formatLabels(samples[j].Labels)
		})
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", m.Name(), escape(m.Help(), false), m.Name(), m.Type()); err != nil {
			return err
		}
		for _, s := range samples {
			if len(s.Labels) == 0 {
				_, err := fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
				if err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatLabels formats labels as key="value",key="value" in key order.
func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + escape(labels[k], true) + `"`
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}

func escape(s string, quote bool) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	if quote {
		s = strings.ReplaceAll(s, `"`, `\"`)
	}
	return s
}

// DefaultBuckets are the default histogram buckets for request durations (in seconds).
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
