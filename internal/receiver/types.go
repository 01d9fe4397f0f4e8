package receiver

import (
	"context"
	"net/http"
	"syslogcollector/internal/collector"
	"syslogcollector/internal/flows"
	"syslogcollector/internal/iface"
	"syslogcollector/internal/queue/mpmc"
	"syslogcollector/internal/receiver/metrics"
	"syslogcollector/internal/receiver/output"
	"time"

	"golang.org/x/sync/errgroup"
)

type JSONConfig struct {
	Endpoint  string `json:"endpoint"`
	Collector struct {
		MaxSubscribers      int    `json:"maxSubscribers,omitempty"`
		PollWait            string `json:"pollWait,omitempty"`
		PurgeInterval       string `json:"purgeInterval,omitempty"`
		MaxPollsBeforePurge int    `json:"maxPollsBeforePurge,omitempty"`
	} `json:"collector"`
	Flows struct {
		IdleTimeout string `json:"idleTimeout,omitempty"`
		MaxFlows    int    `json:"maxFlows,omitempty"`
	} `json:"flows"`
	Queue struct {
		MinSize int `json:"minSize,omitempty"`
		MaxSize int `json:"maxSize,omitempty"`
	} `json:"exportQueue"`
	Outputs struct {
		FilePath     string `json:"filePath,omitempty"`
		BeatsAddress string `json:"beatsAddress,omitempty"`
	} `json:"outputs"`
	Metrics struct {
		Interval          string `json:"collectionInterval,omitempty"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"queryServerPort,omitempty"`
		EnablePrometheus  bool   `json:"enablePrometheus"`
	} `json:"metrics"`
}

type Config struct {
	// Listener
	Endpoint  string
	Collector collector.Config

	// Flow aging
	FlowIdleTimeout time.Duration
	MaxFlows        int

	// Export queue boundaries
	MinQueueSize int
	MaxQueueSize int

	// Outputs
	OutputFilePath string
	BeatsAddress   string

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	PrometheusEnabled        bool
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	// Output runs on its own context so it can drain after the collector stops
	outCtx    context.Context
	outCancel context.CancelFunc

	workers *errgroup.Group

	State            *iface.State
	Flows            *flows.Table
	Parser           *flows.Parser
	Collector        *collector.Collector
	Queue            *mpmc.Queue[flows.Flow]
	Output           *output.Instance
	metricsCollector *metrics.Gatherer
	MetricServer     *http.Server
}
