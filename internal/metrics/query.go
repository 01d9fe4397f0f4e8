package metrics

import (
	"sort"
	"strings"
	"time"
)

// Exact or prefix match. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := range queryNS {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

// Series of one slice ordered by namespace then name
func (slice *timeSlice) ordered() (results []Metric) {
	keys := make([]seriesKey, 0, len(slice.series))
	for key := range slice.series {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].namespace != keys[j].namespace {
			return keys[i].namespace < keys[j].namespace
		}
		return keys[i].name < keys[j].name
	})

	results = make([]Metric, 0, len(keys))
	for _, key := range keys {
		results = append(results, slice.series[key])
	}
	return
}

// Slices whose start falls inside [start, end]. Zero bounds are open.
func (registry *Registry) window(start, end time.Time) (matched []*timeSlice) {
	lo := 0
	if !start.IsZero() {
		lo = registry.indexFrom(start)
	}
	hi := len(registry.slices)
	if !end.IsZero() {
		hi = sort.Search(len(registry.slices), func(i int) bool {
			return registry.slices[i].start.After(end)
		})
	}
	if lo >= hi {
		return
	}
	matched = registry.slices[lo:hi]
	return
}

// Returns metrics by exact name (empty for all) and namespace prefix, oldest first
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, slice := range registry.window(start, end) {
		for _, metric := range slice.ordered() {
			if name != "" && metric.Name != name {
				continue
			}
			if !matchesNamespace(metric.Namespace, namespacePrefix) {
				continue
			}
			results = append(results, metric)
		}
	}
	return
}

// Lists distinct series matching the filters across all retained slices.
// Name and description are substring filters. Values and timestamps are stripped.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	type discoveryKey struct {
		series     seriesKey
		metricType MetricType
		unit       string
	}
	seen := make(map[discoveryKey]struct{})

	for _, slice := range registry.slices {
		for key, metric := range slice.series {
			if name != "" && !strings.Contains(metric.Name, name) {
				continue
			}
			if description != "" && !strings.Contains(metric.Description, description) {
				continue
			}
			if unit != "" && metric.Value.Unit != unit {
				continue
			}
			if metricType != "" && metric.Type != metricType {
				continue
			}
			if !matchesNamespace(metric.Namespace, namespacePrefix) {
				continue
			}

			dk := discoveryKey{series: key, metricType: metric.Type, unit: metric.Value.Unit}
			if _, exists := seen[dk]; exists {
				continue
			}
			seen[dk] = struct{}{}

			results = append(results, Metric{
				Name:        metric.Name,
				Description: metric.Description,
				Namespace:   metric.Namespace,
				Type:        metric.Type,
				Value:       MetricValue{Unit: metric.Value.Unit},
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		nsI := strings.Join(results[i].Namespace, "/")
		nsJ := strings.Join(results[j].Namespace, "/")
		if nsI != nsJ {
			return nsI < nsJ
		}
		return results[i].Value.Unit < results[j].Value.Unit
	})
	return
}

// Every metric of the newest slice holding data
func (registry *Registry) Latest() (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for i := len(registry.slices) - 1; i >= 0; i-- {
		if len(registry.slices[i].series) > 0 {
			results = registry.slices[i].ordered()
			return
		}
	}
	return
}
