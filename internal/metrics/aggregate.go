package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"syslogcollector/internal/global"
	"time"
)

type accumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
}

func (acc *accumulator) add(value float64) {
	if acc.count == 0 || value < acc.min {
		acc.min = value
	}
	if acc.count == 0 || value > acc.max {
		acc.max = value
	}
	acc.sum += value
	acc.count++
}

func (acc accumulator) result(aggType string) (value float64, err error) {
	switch aggType {
	case global.MetricSum:
		value = acc.sum
	case global.MetricAvg:
		value = acc.sum / float64(acc.count)
	case global.MetricMin:
		value = acc.min
	case global.MetricMax:
		value = acc.max
	default:
		err = fmt.Errorf("unknown aggregation type %q", aggType)
	}
	return
}

// Folds every value of a metric within namespace prefix and time window into one summary metric
func (registry *Registry) Aggregate(aggType, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	found := registry.Search(name, namespacePrefix, start, end)
	if len(found) == 0 {
		err = fmt.Errorf("no metrics found for name %q", name)
		return
	}

	var acc accumulator
	for _, metric := range found {
		var value float64
		value, err = metric.Float()
		if err != nil {
			err = fmt.Errorf("metric %q in namespace %q: %w", metric.Name, strings.Join(metric.Namespace, "/"), err)
			return
		}
		acc.add(value)
	}

	aggregated, err := acc.result(aggType)
	if err != nil {
		return
	}

	latest := found[len(found)-1]
	result = Metric{
		Name:        latest.Name,
		Description: latest.Description,
		Namespace:   namespacePrefix,
		Type:        Summary,
		Timestamp:   latest.Timestamp,
		Value: MetricValue{
			Raw:      aggregated,
			Unit:     latest.Value.Unit,
			Interval: end.Sub(start),
		},
	}
	return
}

// Numeric value of the metric
func (metric Metric) Float() (value float64, err error) {
	switch v := metric.Value.Raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case uint16:
		value = float64(v)
	case uint32:
		value = float64(v)
	case uint64:
		value = float64(v)
	case string:
		value, err = strconv.ParseFloat(v, 64)
	default:
		err = fmt.Errorf("non-numeric value of type %T", metric.Value.Raw)
	}
	return
}
