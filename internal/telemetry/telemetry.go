// Package telemetry provides the ambient metrics and tracing a scan
// emits: one prometheus counter/histogram pair per orchestrator phase,
// and an otel/trace span per phase and per-advisory analysis.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the package-scoped tracer every Scan uses to create phase
// and per-advisory spans.
var Tracer = otel.Tracer("github.com/kennethkcox/depguard")

var (
	// PhaseDuration records wall-clock time per orchestrator phase.
	PhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "depguard",
			Name:      "phase_duration_seconds",
			Help:      "Duration of each orchestrator phase.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	// FindingsEmitted counts findings produced per scan, by reachability.
	FindingsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "depguard",
			Name:      "findings_emitted_total",
			Help:      "Findings emitted by the orchestrator, labeled by reachability.",
		},
		[]string{"reachable"},
	)

	// PhaseFailures counts phases that degraded (per spec.md §7, a
	// phase failure is tolerated and logged, never fatal except the
	// catastrophic cases the orchestrator checks explicitly).
	PhaseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "depguard",
			Name:      "phase_failures_total",
			Help:      "Phases that produced zero output due to a recoverable error.",
		},
		[]string{"phase"},
	)
)

// MustRegister registers the package's collectors against reg. Callers
// own the registry (typically prometheus.NewRegistry() per process, or
// prometheus.DefaultRegisterer); this package never registers itself
// implicitly so tests can use isolated registries.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(PhaseDuration, FindingsEmitted, PhaseFailures)
}

// StartPhase starts a span named phase and returns it alongside the
// derived context; callers defer span.End().
func StartPhase(ctx context.Context, phase string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "depguard.phase."+phase)
}

// StartAnalysis starts a span for one advisory's reachability/taint
// analysis, tagged with the advisory ID.
func StartAnalysis(ctx context.Context, advisoryID string) (context.Context, trace.Span) {
	ctx, span := Tracer.Start(ctx, "depguard.analyze", trace.WithAttributes(
		attribute.String("advisory.id", advisoryID),
	))
	return ctx, span
}
