package app

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kttools/ktports/internal/config"
	"github.com/kttools/ktports/internal/metrics"
	"github.com/kttools/ktports/internal/proc"
	"github.com/kttools/ktports/pkg/logger"
	"github.com/kttools/ktports/pkg/model"
)

// scanPorts runs one full scan and records it in the metrics registry.
func scanPorts(cfg *config.Config) ([]model.PortInfo, error) {
	start := time.Now()

	var ports []model.PortInfo
	s, err := newScanner()
	if err == nil {
		ports, err = proc.ScanPorts(s)
	}

	metrics.ObserveScan(proc.Platform(), time.Since(start), lo.CountValuesBy(ports, func(p model.PortInfo) string {
		return p.Protocol
	}), err)
	flushMetrics(cfg)

	return ports, err
}

func flushMetrics(cfg *config.Config) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
	}
}

// filterPorts keeps listening sockets only when listenOnly is set, and
// protocols starting with proto ("tcp" matches tcp, tcp6 and TCP).
func filterPorts(ports []model.PortInfo, listenOnly bool, proto string) []model.PortInfo {
	proto = strings.ToLower(proto)
	return lo.Filter(ports, func(p model.PortInfo, _ int) bool {
		if listenOnly && !p.IsListening() {
			return false
		}
		return strings.HasPrefix(strings.ToLower(p.Protocol), proto)
	})
}
