package metrics

import "time"

// Metrics of one collection pass sharing namespace, interval and read time
type Batch struct {
	namespace []string
	interval  time.Duration
	readAt    time.Time
	collected []Metric
}

func NewBatch(namespace []string, interval time.Duration) (batch *Batch) {
	batch = &Batch{
		namespace: namespace,
		interval:  interval,
		readAt:    time.Now(),
	}
	return
}

func (batch *Batch) add(metricType MetricType, name, unit, description string, raw any) {
	batch.collected = append(batch.collected, Metric{
		Name:        name,
		Description: description,
		Namespace:   batch.namespace,
		Type:        metricType,
		Timestamp:   batch.readAt,
		Value: MetricValue{
			Raw:      raw,
			Unit:     unit,
			Interval: batch.interval,
		},
	})
}

func (batch *Batch) Counter(name, unit, description string, raw any) {
	batch.add(Counter, name, unit, description, raw)
}

func (batch *Batch) Gauge(name, unit, description string, raw any) {
	batch.add(Gauge, name, unit, description, raw)
}

func (batch *Batch) Metrics() (collected []Metric) {
	collected = batch.collected
	return
}
