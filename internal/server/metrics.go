package server

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-metrics"
)

// SetupMetrics installs a global in-memory metrics sink and starts dumping
// it to stderr on SIGUSR1. The returned signal handler must be stopped on
// shutdown.
func SetupMetrics() (*metrics.InmemSignal, error) {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metricsConf := metrics.DefaultConfig("memkvd")
	metricsConf.EnableHostname = false
	if _, err := metrics.NewGlobal(metricsConf, inm); err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	return metrics.DefaultInmemSignal(inm), nil
}
