package server

import (
	"syslogcollector/internal/metrics"
	"testing"
	"time"
)

func TestNewPrometheusRegistry(t *testing.T) {
	now := time.Now()
	latest := []metrics.Metric{
		{
			Name:        "lines_received",
			Description: "Complete lines forwarded",
			Namespace:   []string{"Collector"},
			Type:        metrics.Counter,
			Timestamp:   now,
			Value:       metrics.MetricValue{Raw: uint64(12), Unit: "count"},
		},
		{
			Name:        "depth",
			Description: "Items in queue",
			Namespace:   []string{"Receiver", "Queue"},
			Type:        metrics.Gauge,
			Timestamp:   now,
			Value:       metrics.MetricValue{Raw: uint64(3), Unit: "count"},
		},
		{
			Name:        "depth",
			Description: "different help text for the same name",
			Namespace:   []string{"Receiver", "Other"},
			Type:        metrics.Gauge,
			Timestamp:   now,
			Value:       metrics.MetricValue{Raw: 1.5, Unit: "count"},
		},
		{
			Name:      "broken",
			Namespace: []string{"Collector"},
			Value:     metrics.MetricValue{Raw: struct{}{}},
		},
	}

	registry, err := NewPrometheusRegistry(mockStats(42), mockLatest(latest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := make(map[string]int)
	for _, family := range families {
		found[family.GetName()] = len(family.GetMetric())
		if family.GetName() == "syslogcollector_received_flows_total" {
			if got := family.GetMetric()[0].GetCounter().GetValue(); got != 42 {
				t.Errorf("received flows=%v want=42", got)
			}
		}
	}

	want := map[string]int{
		"syslogcollector_received_flows_total":   1,
		"syslogcollector_syslog_source":          1,
		"syslogcollector_internal_lines_received": 1,
		"syslogcollector_internal_depth":          2,
	}
	for name, count := range want {
		if found[name] != count {
			t.Errorf("%s: %d series, want %d", name, found[name], count)
		}
	}
	if _, ok := found["syslogcollector_internal_broken"]; ok {
		t.Errorf("expected non-numeric metric to be skipped")
	}
}

func TestPromName(t *testing.T) {
	tests := map[string]string{
		"open_slots":  "open_slots",
		"busy-pct":    "busy_pct",
		"a.b/c":       "a_b_c",
		"Valid_Name1": "Valid_Name1",
	}
	for in, want := range tests {
		if got := promName(in); got != want {
			t.Errorf("promName(%q)=%q want %q", in, got, want)
		}
	}
}
