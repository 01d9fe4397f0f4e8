package server

import (
	"context"
	"syslogcollector/internal/collector"
	"syslogcollector/internal/metrics"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

type DataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
type Discoverer func(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
type AggSearcher func(aggType, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error)
type StatsReader func() collector.Stats
type LatestReader func() []metrics.Metric

// Query backends for each route. Nil members disable their route.
type Sources struct {
	Search    DataSearcher
	Discover  Discoverer
	Aggregate AggSearcher
	Stats     StatsReader
	Gatherer  prometheus.Gatherer
}
