package server

import (
	"fmt"
	"strings"
	"syslogcollector/internal/global"

	"github.com/prometheus/client_golang/prometheus"
)

const promNamespace string = global.ProgBaseName

// Builds the registry served on the prometheus path: collector statistics as native
// counter/gauge plus the newest internal metric slice as gauges labeled by namespace.
func NewPrometheusRegistry(stats StatsReader, latest LatestReader) (registry *prometheus.Registry, err error) {
	registry = prometheus.NewRegistry()

	if stats != nil {
		receivedFlows := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "received_flows_total",
			Help:      "Total flow records produced from received syslog lines.",
		}, func() float64 {
			return float64(stats().ReceivedFlowCount)
		})
		syslogSource := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: promNamespace,
			Name:      "syslog_source",
			Help:      "Always 1, the collector reads flows from syslog.",
		}, func() float64 {
			if stats().IsSyslogSource {
				return 1
			}
			return 0
		})

		if err = registry.Register(receivedFlows); err != nil {
			err = fmt.Errorf("register received flows counter: %w", err)
			return
		}
		if err = registry.Register(syslogSource); err != nil {
			err = fmt.Errorf("register syslog source gauge: %w", err)
			return
		}
	}

	if latest != nil {
		if err = registry.Register(&snapshotCollector{latest: latest}); err != nil {
			err = fmt.Errorf("register internal metric snapshot: %w", err)
			return
		}
	}
	return
}

// Exposes internal registry metrics at scrape time. Unchecked: describes nothing up front.
type snapshotCollector struct {
	latest LatestReader
}

func (snapshot *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {}

func (snapshot *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	descs := make(map[string]*prometheus.Desc)

	for _, metric := range snapshot.latest() {
		value, err := metric.Float()
		if err != nil {
			continue
		}

		fqName := prometheus.BuildFQName(promNamespace, "internal", promName(metric.Name))

		// One help text per name across namespaces
		desc, ok := descs[fqName]
		if !ok {
			help := metric.Description
			if help == "" {
				help = metric.Name
			}
			desc = prometheus.NewDesc(fqName, help, []string{"namespace", "unit"}, nil)
			descs[fqName] = desc
		}

		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value,
			strings.Join(metric.Namespace, "/"), metric.Value.Unit)
	}
}

// Replaces characters outside [a-zA-Z0-9_] with underscore
func promName(name string) (sanitized string) {
	sanitized = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return
}

var _ prometheus.Collector = (*snapshotCollector)(nil)
