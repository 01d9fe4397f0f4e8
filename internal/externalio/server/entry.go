// HTTP server to expose discovery and querying of metric data to other programs only on the local system
package server

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Read in web static files at compile time
//
//go:embed static-files/metric-help.html
var webFiles embed.FS

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Only GET is served on every route
func getOnly(next func(http.ResponseWriter, *http.Request)) (handler http.HandlerFunc) {
	handler = func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(serverResponder, clientRequest)
	}
	return
}

// Sets up HTTP listener configuration for metric querying
func SetupListener(ctx context.Context, port int, sources Sources) (server *http.Server, err error) {
	requestMultiplexer := http.NewServeMux()

	helpPage, err := webFiles.ReadFile("static-files/metric-help.html")
	if err != nil {
		err = fmt.Errorf("failed reading metric help html page from internal fs: %w", err)
		return
	}

	// Replace variables in html with globals
	replacer := strings.NewReplacer(
		"{LISTEN_ADDR}", global.HTTPListenAddr,
		"{LISTEN_PORT}", strconv.Itoa(port),
		"{DATA_PATH}", global.DataPath,
		"{DISCOVER_PATH}", global.DiscoveryPath,
		"{AGGREGATION_PATH}", global.AggregationPath,
		"{STATS_PATH}", global.StatsPath,
		"{PROMETHEUS_PATH}", global.PrometheusPath,
	)
	helpPage = []byte(replacer.Replace(string(helpPage)))

	// Root help page
	requestMultiplexer.HandleFunc("/", getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}
		serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write(helpPage)
	}))

	if sources.Discover != nil {
		requestMultiplexer.HandleFunc(global.DiscoveryPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			handleDiscovery(ctx, sources.Discover, global.DiscoveryPath, serverResponder, clientRequest)
		}))
	}
	if sources.Search != nil {
		requestMultiplexer.HandleFunc(global.DataPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			handleData(ctx, sources.Search, global.DataPath, serverResponder, clientRequest)
		}))
	}
	if sources.Aggregate != nil {
		requestMultiplexer.HandleFunc(global.AggregationPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			handleAggregation(ctx, sources.Aggregate, global.AggregationPath, serverResponder, clientRequest)
		}))
	}
	if sources.Stats != nil {
		requestMultiplexer.HandleFunc(global.StatsPath, getOnly(func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
			handleStats(ctx, sources.Stats, serverResponder)
		}))
	}
	if sources.Gatherer != nil {
		promHandler := promhttp.HandlerFor(sources.Gatherer, promhttp.HandlerOpts{
			ErrorLog: log.New(httpLogWriter{ctx: ctx}, "", 0),
		})
		requestMultiplexer.HandleFunc(global.PrometheusPath, getOnly(promHandler.ServeHTTP))
	}

	// Server configuration
	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the metric HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) (err error) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric query server starting on %s (http://%s/)\n",
		server.Addr,
		server.Addr,
	)
	err = server.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
		return
	}
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric query server failed to start: %v\n", err)
	}
	return
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	jStatus(ctx, serverResponder, http.StatusOK, content)
}

func jStatus(ctx context.Context, serverResponder http.ResponseWriter, status int, content any) {
	body, err := json.Marshal(content)
	if err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(status)
	serverResponder.Write(append(body, '\n'))
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}
