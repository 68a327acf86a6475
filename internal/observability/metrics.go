// Package observability provides Prometheus metrics for monitoring engine
// runs.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Simulation metrics
	SimulationsStarted   prometheus.Counter
	SimulationsCompleted prometheus.Counter
	StepsSimulated       prometheus.Counter
	SimulationDuration   prometheus.Histogram

	// Trade metrics
	ArbTrades     prometheus.Counter
	RetailOrders  prometheus.Counter
	RouterLatency prometheus.Histogram

	// Boundary metrics
	QuoteFaults   *prometheus.CounterVec
	PoolsHalted   *prometheus.CounterVec
	ValidatorRuns *prometheus.CounterVec

	// Rebalance metrics
	EpochRebalances prometheus.Counter
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "prop_amm_lab"
	}

	return &Metrics{
		SimulationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "simulations_started_total",
			Help:      "Total number of simulations started",
		}),
		SimulationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "simulations_completed_total",
			Help:      "Total number of simulations completed",
		}),
		StepsSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "steps_total",
			Help:      "Total number of simulation steps executed",
		}),
		SimulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sim",
			Name:      "simulation_duration_seconds",
			Help:      "Wall-clock duration of one simulation",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		ArbTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "arb_trades_total",
			Help:      "Total number of executed arbitrage trades",
		}),
		RetailOrders: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "retail_orders_total",
			Help:      "Total number of routed retail orders",
		}),
		RouterLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "router_latency_seconds",
			Help:      "Latency of one N-way routing search",
			Buckets:   prometheus.DefBuckets,
		}),
		QuoteFaults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "boundary",
			Name:      "quote_faults_total",
			Help:      "Total number of quote calls degraded to zero output",
		}, []string{"strategy"}),
		PoolsHalted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "boundary",
			Name:      "pools_halted_total",
			Help:      "Total number of pools excluded after repeated faults",
		}, []string{"strategy"}),
		ValidatorRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "boundary",
			Name:      "validator_runs_total",
			Help:      "Total number of validator runs by verdict",
		}, []string{"verdict"}),
		EpochRebalances: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capital",
			Name:      "epoch_rebalances_total",
			Help:      "Total number of epoch capital rebalances",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuoteFault increments the degraded-quote counter for a strategy.
func RecordQuoteFault(strategy string) {
	DefaultMetrics.QuoteFaults.WithLabelValues(strategy).Inc()
}

// RecordPoolHalted increments the halted-pool counter for a strategy.
func RecordPoolHalted(strategy string) {
	DefaultMetrics.PoolsHalted.WithLabelValues(strategy).Inc()
}

// RecordValidatorRun records a validator verdict ("pass" or "fail").
func RecordValidatorRun(verdict string) {
	DefaultMetrics.ValidatorRuns.WithLabelValues(verdict).Inc()
}

// RecordArbTrade increments the executed arbitrage trade counter.
func RecordArbTrade() {
	DefaultMetrics.ArbTrades.Inc()
}

// RecordRetailOrder increments the routed retail order counter.
func RecordRetailOrder() {
	DefaultMetrics.RetailOrders.Inc()
}

// RecordRouterLatency records one routing search duration.
func RecordRouterLatency(seconds float64) {
	DefaultMetrics.RouterLatency.Observe(seconds)
}

// RecordRebalance increments the epoch rebalance counter.
func RecordRebalance() {
	DefaultMetrics.EpochRebalances.Inc()
}

// RecordSimulationStarted increments the started-simulation counter.
func RecordSimulationStarted() {
	DefaultMetrics.SimulationsStarted.Inc()
}

// RecordSimulation records one completed simulation and its duration.
func RecordSimulation(seconds float64, steps int) {
	DefaultMetrics.SimulationsCompleted.Inc()
	DefaultMetrics.StepsSimulated.Add(float64(steps))
	DefaultMetrics.SimulationDuration.Observe(seconds)
}
