package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Custom registry, only scanner metrics
	registry = prometheus.NewRegistry()

	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktports_scans_total",
			Help: "Port scans by platform and result",
		},
		[]string{"platform", "result"},
	)

	PortsDiscovered = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ktports_ports_discovered",
			Help: "Open ports found by the last scan, by protocol",
		},
		[]string{"protocol"},
	)

	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ktports_scan_duration_seconds",
		Help:    "Wall time of a full scan including enrichment",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	KillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktports_kills_total",
			Help: "Kill requests by result",
		},
		[]string{"result"},
	)
)

func init() {
	registry.MustRegister(ScansTotal)
	registry.MustRegister(PortsDiscovered)
	registry.MustRegister(ScanDuration)
	registry.MustRegister(KillsTotal)
}

func Registry() *prometheus.Registry {
	return registry
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveScan records one scan. byProtocol replaces the previous gauge values.
func ObserveScan(platform string, elapsed time.Duration, byProtocol map[string]int, err error) {
	ScansTotal.WithLabelValues(platform, resultLabel(err)).Inc()
	ScanDuration.Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	PortsDiscovered.Reset()
	for proto, n := range byProtocol {
		PortsDiscovered.WithLabelValues(proto).Set(float64(n))
	}
}

func ObserveKill(err error) {
	KillsTotal.WithLabelValues(resultLabel(err)).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
