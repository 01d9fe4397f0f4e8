package iface

import (
	"syslogcollector/internal/global"
	"syslogcollector/internal/metrics"
	"time"
)

func boolGauge(value bool) (raw uint64) {
	if value {
		raw = 1
	}
	return
}

func (state *State) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	batch := metrics.NewBatch([]string{global.NSIface, state.Name}, interval)
	batch.Gauge("running", "count", "1 while the interface accepts traffic", boolGauge(state.IsRunning()))
	batch.Gauge("idle", "count", "1 while the interface is paused", boolGauge(state.IsIdle()))
	batch.Counter("purge_requests", "count", "Purge requests from the collector in the interval", state.Metrics.Purges.Swap(0))
	batch.Counter("expired_flows", "count", "Flows expired through purge requests in the interval", state.Metrics.Expired.Swap(0))
	collection = batch.Metrics()
	return
}
