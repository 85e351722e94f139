// Package metrics exports Prometheus collectors for the editor, the
// persistence adapter and the HTTP API.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/archboard/pkg/buildinfo"
	"github.com/matzehuels/archboard/pkg/observability"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archboard_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archboard_mutations_total",
			Help: "Diagram mutations by operation",
		},
		[]string{"op"},
	)

	Nodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archboard_diagram_nodes",
		Help: "Number of nodes in the diagram",
	})

	Edges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archboard_diagram_edges",
		Help: "Number of edges in the diagram",
	})

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archboard_exports_total",
			Help: "Exports by format and result",
		},
		[]string{"format", "result"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archboard_export_duration_seconds",
			Help:    "Time spent encoding or rendering an export",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archboard_loads_total",
			Help: "Diagram loads by outcome",
		},
		[]string{"outcome"},
	)

	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archboard_saves_total",
			Help: "Autosaves by result",
		},
		[]string{"result"},
	)

	SaveBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "archboard_save_bytes",
		Help: "Size of the last saved document",
	})

	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "archboard_build_info",
		Help: "Build version and commit, always 1",
	}, []string{"version", "commit"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Hooks records editor and store events into the collectors above.
type Hooks struct{}

var (
	_ observability.EditorHooks = Hooks{}
	_ observability.StoreHooks  = Hooks{}
)

func (Hooks) OnMutation(_ context.Context, op string, nodes, edges int) {
	MutationsTotal.WithLabelValues(op).Inc()
	Nodes.Set(float64(nodes))
	Edges.Set(float64(edges))
}

func (Hooks) OnExport(_ context.Context, format string, d time.Duration, err error) {
	ExportsTotal.WithLabelValues(format, result(err)).Inc()
	ExportDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (Hooks) OnLoad(_ context.Context, outcome string) {
	LoadsTotal.WithLabelValues(outcome).Inc()
}

func (Hooks) OnSave(_ context.Context, size int, _ time.Duration, err error) {
	SavesTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		SaveBytes.Set(float64(size))
	}
}

// Install routes editor and store events to Prometheus.
func Install() {
	observability.SetEditorHooks(Hooks{})
	observability.SetStoreHooks(Hooks{})
	BuildInfo.WithLabelValues(buildinfo.Version, buildinfo.Commit).Set(1)
}
