// Central registry for storing time-based metrics and their associated data
package metrics

import (
	"slices"
	"sort"
	"strings"
	"time"
)

func New() (new *Registry) {
	new = &Registry{}
	return
}

func keyFor(metric Metric) (key seriesKey) {
	key = seriesKey{
		namespace: strings.Join(metric.Namespace, "/"),
		name:      metric.Name,
	}
	return
}

// Index of the first slice starting at or after t
func (registry *Registry) indexFrom(t time.Time) (idx int) {
	idx = sort.Search(len(registry.slices), func(i int) bool {
		return !registry.slices[i].start.Before(t)
	})
	return
}

func (registry *Registry) lookup(start time.Time) (slice *timeSlice) {
	idx := registry.indexFrom(start)
	if idx < len(registry.slices) && registry.slices[idx].start.Equal(start) {
		slice = registry.slices[idx]
	}
	return
}

// Creates (or reuses) the slice covering now, returning its start time
func (registry *Registry) OpenSlice(now time.Time, interval time.Duration) (start time.Time) {
	start = now
	if interval > 0 {
		start = now.Truncate(interval)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	idx := registry.indexFrom(start)
	if idx < len(registry.slices) && registry.slices[idx].start.Equal(start) {
		return
	}
	newSlice := &timeSlice{
		start:  start,
		series: make(map[seriesKey]Metric),
	}
	registry.slices = slices.Insert(registry.slices, idx, newSlice)
	return
}

// Stores a batch in an open slice. Later values for the same series replace earlier ones.
func (registry *Registry) Add(start time.Time, batch []Metric) (stored int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	slice := registry.lookup(start)
	if slice == nil {
		return
	}
	for _, metric := range batch {
		slice.series[keyFor(metric)] = metric
		stored++
	}
	return
}

// Drops every slice older than maxAge relative to now
func (registry *Registry) Prune(now time.Time, maxAge time.Duration) (removed int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	removed = sort.Search(len(registry.slices), func(i int) bool {
		return now.Sub(registry.slices[i].start) <= maxAge
	})
	registry.slices = slices.Delete(registry.slices, 0, removed)
	return
}
