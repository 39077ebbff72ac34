package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ByLCY/justify/layout"
)

const namespace = "justify"

// Metrics holds the collectors of one process. Collectors live on their own
// registry, so tests and embedded servers never collide on the default one.
//
// 所有方法都允许 nil 接收者，未开启指标时直接跳过。
type Metrics struct {
	registry *prometheus.Registry

	BreakDuration     *prometheus.HistogramVec
	LinesTotal        *prometheus.CounterVec
	HyphenationsTotal prometheus.Counter
	InfeasibleTotal   prometheus.Counter
	ErrorsTotal       *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	RequestsTotal     *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		BreakDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "break_duration_seconds",
				Help:      "Duration of one line-breaking pass",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"algorithm"},
		),
		LinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_total",
				Help:      "Total number of lines produced",
			},
			[]string{"algorithm"},
		),
		HyphenationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hyphenations_total",
			Help:      "Total number of lines ending in a split token",
		}),
		InfeasibleTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "infeasible_total",
			Help:      "Paragraphs that could not be broken within the width",
		}),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed breaking passes by error kind",
			},
			[]string{"kind"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveBreak records one call of layout.Build.
func (m *Metrics) ObserveBreak(algo layout.Algorithm, d time.Duration, res *layout.Result, err error) {
	if m == nil {
		return
	}
	if algo == "" {
		algo = layout.AlgorithmOptimal
	}
	m.BreakDuration.WithLabelValues(string(algo)).Observe(d.Seconds())
	if err != nil {
		kind := "invalid"
		if errors.Is(err, layout.ErrInfeasible) {
			kind = "infeasible"
			m.InfeasibleTotal.Inc()
		}
		m.ErrorsTotal.WithLabelValues(kind).Inc()
		return
	}
	if res != nil {
		m.LinesTotal.WithLabelValues(string(algo)).Add(float64(len(res.Lines)))
		m.HyphenationsTotal.Add(float64(res.Hyphenations))
	}
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Request records a served HTTP request.
func (m *Metrics) Request(route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, fmt.Sprint(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteToTextfile 以 node_exporter textfile 格式写出当前指标，供一次性的 CLI 运行使用。
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("写出指标文件失败: %w", err)
	}
	return nil
}
