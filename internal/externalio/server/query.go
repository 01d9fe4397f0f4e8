package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"syslogcollector/internal/metrics"
	"time"
)

// Filters common to every metric route
type metricQuery struct {
	namespace []string
	name      string
	start     time.Time
	end       time.Time
}

// Reads namespace from the path remainder after routePath and the shared query values
func parseMetricQuery(routePath string, clientRequest *http.Request, now time.Time) (query metricQuery, err error) {
	query.namespace = splitNamespace(strings.TrimPrefix(clientRequest.URL.Path, routePath))
	query.name = clientRequest.FormValue("name")
	query.start, query.end, err = parseTimeRange(clientRequest, now)
	return
}

// Converts "A/B/" url remainder into namespace components, empty yields nil
func splitNamespace(raw string) (namespace []string) {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}

func parseMetricType(raw string) (metricType metrics.MetricType, err error) {
	metricType = metrics.MetricType(strings.ToLower(raw))
	switch metricType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
	default:
		err = fmt.Errorf("unknown metric type %q", raw)
	}
	return
}

// Sends converted metrics, or a JSON error when nothing matched
func respondMetrics(ctx context.Context, serverResponder http.ResponseWriter, found []metrics.Metric) {
	if len(found) == 0 {
		jResp(ctx, serverResponder, Jerror{Msg: "Search returned no results"})
		return
	}
	results := make([]metrics.JMetric, 0, len(found))
	for _, metric := range found {
		results = append(results, metric.Convert())
	}
	jResp(ctx, serverResponder, results)
}

func badRequest(ctx context.Context, serverResponder http.ResponseWriter, err error) {
	jStatus(ctx, serverResponder, http.StatusBadRequest, Jerror{Msg: err.Error()})
}

// Returns raw metric values within a time window
func handleData(ctx context.Context, search DataSearcher, routePath string, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	query, err := parseMetricQuery(routePath, clientRequest, time.Now())
	if err != nil {
		badRequest(ctx, serverResponder, err)
		return
	}
	respondMetrics(ctx, serverResponder, search(query.name, query.namespace, query.start, query.end))
}

// Returns one metric folded by the requested aggregation over a time window
func handleAggregation(ctx context.Context, aggregate AggSearcher, routePath string, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	query, err := parseMetricQuery(routePath, clientRequest, time.Now())
	if err != nil {
		badRequest(ctx, serverResponder, err)
		return
	}
	aggType := strings.ToLower(clientRequest.FormValue("aggregation"))

	result, err := aggregate(aggType, query.name, query.namespace, query.start, query.end)
	if err != nil {
		jResp(ctx, serverResponder, Jerror{Msg: err.Error()})
		return
	}
	jResp(ctx, serverResponder, result.Convert())
}

// Lists available series without values. Time filters do not apply.
func handleDiscovery(ctx context.Context, discover Discoverer, routePath string, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	metricType, err := parseMetricType(clientRequest.FormValue("type"))
	if err != nil {
		badRequest(ctx, serverResponder, err)
		return
	}

	found := discover(
		clientRequest.FormValue("name"),
		clientRequest.FormValue("description"),
		splitNamespace(strings.TrimPrefix(clientRequest.URL.Path, routePath)),
		clientRequest.FormValue("unit"),
		metricType,
	)
	respondMetrics(ctx, serverResponder, found)
}
