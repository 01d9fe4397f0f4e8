package output

import (
	"sync/atomic"
	"syslogcollector/internal/metrics"
	"time"
)

type MetricStorage struct {
	ReceivedFlows         atomic.Uint64
	SuccessfulFileWrites  atomic.Uint64
	SuccessfulBeatsWrites atomic.Uint64
	FailedWrites          atomic.Uint64
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	fileWrites := instance.Metrics.SuccessfulFileWrites.Swap(0)
	beatsWrites := instance.Metrics.SuccessfulBeatsWrites.Swap(0)

	batch := metrics.NewBatch(instance.Namespace, interval)
	batch.Counter("received_flows", "count", "Expired flows taken from the export queue in the interval",
		instance.Metrics.ReceivedFlows.Swap(0))
	batch.Counter("written_flows", "count", "Writes across all outputs in the interval", fileWrites+beatsWrites)
	batch.Counter("success_file_writes", "count", "Lines written to the file output in the interval", fileWrites)
	batch.Counter("success_beats_writes", "count", "Events acknowledged by the beats output in the interval", beatsWrites)
	batch.Counter("failed_writes", "count", "Failed writes to any output in the interval",
		instance.Metrics.FailedWrites.Swap(0))
	collection = batch.Metrics()
	return
}
