package collector

import (
	"sync/atomic"
	"syslogcollector/internal/metrics"
	"time"
)

type MetricStorage struct {
	BytesReceived    atomic.Uint64
	LinesReceived    atomic.Uint64
	DroppedFragments atomic.Uint64 // reads ending without a line terminator
	ReadErrors       atomic.Uint64
	AcceptedConns    atomic.Uint64
	RejectedConns    atomic.Uint64 // table full
	AcceptFailures   atomic.Uint64
	ClosedConns      atomic.Uint64
	ActiveConns      atomic.Uint64 // gauge, written by the worker
	Purges           atomic.Uint64
	Polls            atomic.Uint64
}

// Snapshot of the externally visible counters
func (collector *Collector) Stats() (stats Stats) {
	stats = Stats{
		IsSyslogSource:    true,
		ReceivedFlowCount: collector.receivedFlows.Load(),
	}
	return
}

func (collector *Collector) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	batch := metrics.NewBatch(collector.Namespace, interval)
	batch.Counter("received_flows", "count", "Flow records produced from received lines since start",
		collector.receivedFlows.Load())
	batch.Counter("bytes_received", "bytes", "Bytes read from syslog sockets in the interval",
		collector.Metrics.BytesReceived.Swap(0))
	batch.Counter("lines_received", "count", "Complete lines forwarded to the parser in the interval",
		collector.Metrics.LinesReceived.Swap(0))
	batch.Counter("dropped_fragments", "count", "Reads ending in an unterminated line fragment in the interval",
		collector.Metrics.DroppedFragments.Swap(0))
	batch.Counter("read_errors", "count", "Socket reads that failed with an error in the interval",
		collector.Metrics.ReadErrors.Swap(0))
	batch.Counter("accepted_connections", "count", "Peers registered in the connection table in the interval",
		collector.Metrics.AcceptedConns.Swap(0))
	batch.Counter("rejected_connections", "count", "Peers closed because the connection table was full in the interval",
		collector.Metrics.RejectedConns.Swap(0))
	batch.Counter("accept_failures", "count", "Failed accept calls in the interval",
		collector.Metrics.AcceptFailures.Swap(0))
	batch.Counter("closed_connections", "count", "Connections closed in the interval",
		collector.Metrics.ClosedConns.Swap(0))
	batch.Gauge("active_connections", "count", "Occupied connection table slots",
		collector.Metrics.ActiveConns.Load())
	batch.Gauge("connection_capacity", "count", "Connection table capacity",
		uint64(collector.cfg.MaxSubscribers))
	batch.Counter("purges", "count", "Idle purge passes in the interval",
		collector.Metrics.Purges.Swap(0))
	batch.Counter("polls", "count", "Readiness waits in the interval",
		collector.Metrics.Polls.Swap(0))
	collection = batch.Metrics()
	return
}
