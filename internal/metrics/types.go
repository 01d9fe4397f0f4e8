package metrics

import (
	"sync"
	"time"
)

// Interval-bucketed metric history
type Registry struct {
	mu     sync.RWMutex
	slices []*timeSlice // ordered oldest first, unique starts
}

// All series reported within one collection interval
type timeSlice struct {
	start  time.Time
	series map[seriesKey]Metric
}

type seriesKey struct {
	namespace string // joined with "/"
	name      string
}

type MetricType string

const (
	Counter MetricType = "counter" // events within the interval
	Gauge   MetricType = "gauge"   // point in time reading
	Summary MetricType = "summary" // aggregated across slices
)

type Metric struct {
	Name        string // e.g. received_flows, open_slots
	Description string
	Namespace   []string // e.g. Collector/Reactor
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time // start of the slice the metric was recorded in
}

type MetricValue struct {
	Raw      any    // numeric, or a numeric string
	Unit     string // count, bytes, ms
	Interval time.Duration
}

// JSON version
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
