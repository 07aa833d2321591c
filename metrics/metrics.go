// Package metrics exports Prometheus metrics for simpsat engines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cespare/simpsat/engine"
)

const (
	OutcomeLabel = "outcome"
	OpLabel      = "op"
	EngineLabel  = "engine"
)

// To add new metrics:
// 1. Register new metrics in Register() below.
// 2. Add an observer function that the engine decorator can call.
var (
	solveDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "simpsat_solve_duration_seconds",
			Help:       "The duration of a single engine solve call",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{EngineLabel, OutcomeLabel},
	)

	engineCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simpsat_engine_calls_total",
			Help: "Number of calls across the engine boundary",
		},
		[]string{EngineLabel, OpLabel},
	)
)

// Register registers the simpsat collectors with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(solveDuration)
	reg.MustRegister(engineCalls)
}

// ObserveSolve records the outcome and duration of one solve call.
func ObserveSolve(engineName string, st engine.Status, d time.Duration) {
	solveDuration.WithLabelValues(engineName, outcome(st)).Observe(d.Seconds())
}

// CountCall records one boundary call.
func CountCall(engineName, op string) {
	engineCalls.WithLabelValues(engineName, op).Inc()
}

// Instrument wraps f so that every engine it creates reports to the
// collectors in this package under engineName.
func Instrument(engineName string, f engine.Factory) engine.Factory {
	return engine.InstrumentedFactory(f,
		func(st engine.Status, d time.Duration) { ObserveSolve(engineName, st, d) },
		func(op string) { CountCall(engineName, op) },
	)
}

func outcome(st engine.Status) string {
	switch st {
	case engine.Sat:
		return "sat"
	case engine.Unsat:
		return "unsat"
	default:
		return "invalid"
	}
}
