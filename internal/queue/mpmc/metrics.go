package mpmc

import (
	"sync/atomic"
	"syslogcollector/internal/metrics"
	"time"
)

type MetricStorage struct {
	Depth atomic.Uint64 // Current items in queue

	PushSuccess    atomic.Uint64
	PushFull       atomic.Uint64 // rejected, queue full
	PushCASRetries atomic.Uint64 // CAS failed (seq==pos but CAS failed)

	PopSuccess    atomic.Uint64
	PopCASRetries atomic.Uint64
}

func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	batch := metrics.NewBatch(queue.Namespace, interval)
	batch.Gauge("depth", "count", "Flow records waiting for export", queue.Metrics.Depth.Load())
	batch.Gauge("capacity", "count", "Fixed capacity of the queue", uint64(queue.Size))
	batch.Counter("push_success", "count", "Records queued in the interval", queue.Metrics.PushSuccess.Swap(0))
	batch.Counter("push_full", "count", "Records dropped because the queue was full in the interval", queue.Metrics.PushFull.Swap(0))
	batch.Counter("push_cas_retries", "count", "Contended push attempts retried in the interval", queue.Metrics.PushCASRetries.Swap(0))
	batch.Counter("pop_success", "count", "Records consumed in the interval", queue.Metrics.PopSuccess.Swap(0))
	batch.Counter("pop_cas_retries", "count", "Contended pop attempts retried in the interval", queue.Metrics.PopCASRetries.Swap(0))
	collection = batch.Metrics()
	return
}
