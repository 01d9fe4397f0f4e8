package flows

import (
	"syslogcollector/internal/metrics"
	"time"
)

func (table *Table) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	batch := metrics.NewBatch(table.Namespace, interval)
	batch.Gauge("active_flows", "count", "Flows currently held in the table", uint64(table.Len()))
	batch.Counter("created_flows", "count", "New flows inserted in the interval", table.Metrics.Created.Swap(0))
	batch.Counter("updated_flows", "count", "Records merged into existing flows in the interval", table.Metrics.Updated.Swap(0))
	batch.Counter("expired_idle", "count", "Flows aged out by idle purge in the interval", table.Metrics.ExpiredIdle.Swap(0))
	batch.Counter("evicted_capacity", "count", "Flows pushed out by a full table in the interval", table.Metrics.EvictedCapacity.Swap(0))
	batch.Counter("flushed_flows", "count", "Flows emitted by a full flush in the interval", table.Metrics.Flushed.Swap(0))
	batch.Counter("purges", "count", "Idle purge passes over the table in the interval", table.Metrics.Purges.Swap(0))
	collection = batch.Metrics()
	return
}

func (parser *Parser) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	namespace := append(append([]string{}, parser.table.Namespace...), "Parser")

	batch := metrics.NewBatch(namespace, interval)
	batch.Counter("lines", "count", "Lines handed to the parser in the interval", parser.Metrics.Lines.Swap(0))
	batch.Counter("records", "count", "Flow records decoded in the interval", parser.Metrics.Records.Swap(0))
	batch.Counter("unrecognized", "count", "Lines without any flow record in the interval", parser.Metrics.Unrecognized.Swap(0))
	batch.Counter("rfc5424_headers", "count", "Lines carrying a RFC5424 header in the interval", parser.Metrics.RFC5424.Swap(0))
	batch.Counter("rfc3164_headers", "count", "Lines carrying a RFC3164 header in the interval", parser.Metrics.RFC3164.Swap(0))
	collection = batch.Metrics()
	return
}
