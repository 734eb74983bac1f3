package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the analysis pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchRequests    *prometheus.CounterVec // labels: provider, op, outcome
	RateLimitWaits   prometheus.Counter
	RateLimitWaitDur prometheus.Histogram
	IndicatorDur     *prometheus.HistogramVec // labels: backend
	Analyses         *prometheus.CounterVec   // labels: signal
	AdviceActions    *prometheus.CounterVec   // labels: action
	AnalysisErrors   *prometheus.CounterVec   // labels: kind
	AnalysisDur      prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quant_fetch_requests_total",
			Help: "Market data provider calls by outcome",
		}, []string{"provider", "op", "outcome"}),
		RateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quant_ratelimit_waits_total",
			Help: "Requests delayed by the sliding-window rate limiter",
		}),
		RateLimitWaitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quant_ratelimit_wait_seconds",
			Help:    "Time spent blocked in the sliding-window rate limiter",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		IndicatorDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quant_indicator_compute_seconds",
			Help:    "Indicator set computation latency",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"backend"}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quant_analyses_total",
			Help: "Completed analyses by technical signal",
		}, []string{"signal"}),
		AdviceActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quant_advice_actions_total",
			Help: "Advisory actions issued",
		}, []string{"action"}),
		AnalysisErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quant_analysis_errors_total",
			Help: "Failed analyses by error kind",
		}, []string{"kind"}),
		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quant_analysis_duration_seconds",
			Help:    "End-to-end analysis latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.FetchRequests,
		m.RateLimitWaits,
		m.RateLimitWaitDur,
		m.IndicatorDur,
		m.Analyses,
		m.AdviceActions,
		m.AnalysisErrors,
		m.AnalysisDur,
	)
	return m
}

func (m *Metrics) ObserveFetch(provider, op, outcome string) {
	if m == nil {
		return
	}
	m.FetchRequests.WithLabelValues(provider, op, outcome).Inc()
}

func (m *Metrics) ObserveRateLimitWait(d time.Duration) {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
	m.RateLimitWaitDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveIndicators(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorDur.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *Metrics) ObserveAnalysis(signal, action string, d time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(signal).Inc()
	m.AdviceActions.WithLabelValues(action).Inc()
	m.AnalysisDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.AnalysisErrors.WithLabelValues(kind).Inc()
}
