package metrics

import (
	"syslogcollector/internal/metrics"
	"time"
)

// Any pipeline component reporting metrics for one interval
type Source interface {
	CollectMetrics(interval time.Duration) []metrics.Metric
}

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data
	Sources   []Source          // Components read every interval, in order
}
