// Package observability owns the Prometheus collectors of the stipend service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stipend"

var (
	calculations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "calculations_total",
		Help:      "Stipend amounts computed, by activity and calculator path.",
	}, []string{"activity", "path"})

	ineligible = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "ineligible_selections_total",
		Help:      "Holiday-only activities rejected on work days.",
	}, []string{"activity"})

	recordsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "records",
		Name:      "writes_total",
		Help:      "Stipend records saved or cleared.",
	}, []string{"op"})

	transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "Monthly application status changes, by target status.",
	}, []string{"status"})

	unsubmitted = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "workflow",
		Name:      "unsubmitted_after_deadline",
		Help:      "Staff with draft stipends for the previous month after its deadline.",
	})
)

func init() {
	prometheus.MustRegister(calculations, ineligible, recordsWritten, transitions, unsubmitted)
}

// Calculator paths.
const (
	PathMaster = "master"
	PathFixed  = "fixed"
	PathCustom = "custom"
)

// RecordCalculation counts one priced entry.
func RecordCalculation(activity, path string) {
	calculations.WithLabelValues(activityLabel(activity), path).Inc()
}

// RecordIneligible counts one rejected selection.
func RecordIneligible(activity string) {
	ineligible.WithLabelValues(activityLabel(activity)).Inc()
}

// RecordWrite counts a record save ("save") or clear ("clear").
func RecordWrite(op string) {
	recordsWritten.WithLabelValues(op).Inc()
}

// RecordTransition counts an application moving to status.
func RecordTransition(status string) {
	transitions.WithLabelValues(status).Inc()
}

// activityLabel bounds label cardinality: free-form ids collapse to "unknown".
func activityLabel(activity string) string {
	switch activity {
	case "A", "B", "C", "D", "E", "F", "G", "DISASTER", "CUSTOM", "OTHER":
		return activity
	default:
		return "unknown"
	}
}

// SetUnsubmitted records the latest deadline check.
func SetUnsubmitted(n int) {
	unsubmitted.Set(float64(n))
}
