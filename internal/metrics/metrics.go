package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexanderramin/dutyroster/internal/domain"
)

const namespace = "dutyroster"

// Recorder holds the engine collectors on a private registry. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	fillRate      prometheus.Gauge
	score         prometheus.Gauge
	remainingGaps prometheus.Gauge
	directFills   prometheus.Counter
	swapChains    prometheus.Counter
	backtracks    prometheus.Counter
	cspNodes      prometheus.Counter
	cspBacktracks prometheus.Counter
	cspTimeouts   prometheus.Counter
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Engine runs by the reason auto-fill stopped",
		}, []string{"stopped_by"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full engine run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		fillRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fill_rate",
			Help:      "Fill rate of the most recent run",
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Score of the most recent run",
		}),
		remainingGaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_gaps",
			Help:      "Unfilled slots left by the most recent run",
		}),
		directFills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "direct_fills_total",
			Help:      "Gaps filled directly by auto-fill",
		}),
		swapChains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_chains_applied_total",
			Help:      "Swap chains applied by auto-fill",
		}),
		backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autofill_backtracks_total",
			Help:      "Gaps auto-fill gave up on",
		}),
		cspNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csp_nodes_total",
			Help:      "Search nodes expanded by the CSP solver",
		}),
		cspBacktracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csp_backtracks_total",
			Help:      "Backtracks taken by the CSP solver",
		}),
		cspTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csp_timeouts_total",
			Help:      "CSP solves that hit their timeout",
		}),
	}

	registry.MustRegister(r.runs, r.runDuration, r.fillRate, r.score, r.remainingGaps,
		r.directFills, r.swapChains, r.backtracks, r.cspNodes, r.cspBacktracks, r.cspTimeouts)
	return r
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(run *domain.Run, stoppedBy string) {
	if r == nil || run == nil {
		return
	}
	r.runs.WithLabelValues(stoppedBy).Inc()
	r.runDuration.Observe(float64(run.DurationMillis) / 1000)
	r.fillRate.Set(run.FillRate)
	r.score.Set(run.Score)
	r.remainingGaps.Set(float64(len(run.RemainingGaps)))
	r.directFills.Add(float64(run.DirectFills))
	r.swapChains.Add(float64(run.SwapChains))
	r.backtracks.Add(float64(run.Backtracks))
}

// ObserveCSP records one CSP solve.
func (r *Recorder) ObserveCSP(nodes, backtracks int, timedOut bool) {
	if r == nil {
		return
	}
	r.cspNodes.Add(float64(nodes))
	r.cspBacktracks.Add(float64(backtracks))
	if timedOut {
		r.cspTimeouts.Inc()
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the current values for the node_exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
