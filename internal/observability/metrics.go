package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbxtree",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Decoded documents by outcome.",
		},
		[]string{"outcome"},
	)
	decodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fbxtree",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Document decode duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	decodeNodes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fbxtree",
			Subsystem: "decode",
			Name:      "nodes_total",
			Help:      "Nodes committed to document trees.",
		},
	)
	decodeAttributes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fbxtree",
			Subsystem: "decode",
			Name:      "attributes_total",
			Help:      "Attributes committed to document stores.",
		},
	)
	decodeDiagnostics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fbxtree",
			Subsystem: "decode",
			Name:      "diagnostics_total",
			Help:      "Diagnostic log entries by severity.",
		},
		[]string{"severity"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decodeTotal, decodeDuration, decodeNodes, decodeAttributes, decodeDiagnostics)
	})
}

func RecordDecode(r DecodeReport) {
	RegisterMetrics()
	decodeTotal.WithLabelValues(r.Outcome()).Inc()
	decodeDuration.Observe(r.Duration.Seconds())
	decodeNodes.Add(float64(r.Nodes))
	decodeAttributes.Add(float64(r.Attributes))
	decodeDiagnostics.WithLabelValues("warning").Add(float64(r.Warnings))
	decodeDiagnostics.WithLabelValues("error").Add(float64(r.Errors))
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
