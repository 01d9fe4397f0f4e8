package receiver

import (
	"fmt"
	"os"
	"syslogcollector/internal/global"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Empty duration strings leave the value unset for defaults
func parseOptionalDuration(field, raw string) (duration time.Duration, err error) {
	if raw == "" {
		return
	}
	duration, err = time.ParseDuration(raw)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", field, err)
		return
	}
	if duration < 0 {
		err = fmt.Errorf("%s must not be negative, got %s", field, raw)
		return
	}
	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Listener settings
	config.Endpoint = cfg.Endpoint
	config.Collector.MaxSubscribers = cfg.Collector.MaxSubscribers
	config.Collector.MaxPollsBeforePurge = cfg.Collector.MaxPollsBeforePurge
	config.Collector.PollWait, err = parseOptionalDuration("collector poll wait", cfg.Collector.PollWait)
	if err != nil {
		return
	}
	config.Collector.PurgeInterval, err = parseOptionalDuration("collector purge interval", cfg.Collector.PurgeInterval)
	if err != nil {
		return
	}

	// Flow settings
	config.MaxFlows = cfg.Flows.MaxFlows
	config.FlowIdleTimeout, err = parseOptionalDuration("flow idle timeout", cfg.Flows.IdleTimeout)
	if err != nil {
		return
	}

	// Queue settings
	config.MinQueueSize = cfg.Queue.MinSize
	config.MaxQueueSize = cfg.Queue.MaxSize

	// Output settings
	config.OutputFilePath = cfg.Outputs.FilePath
	config.BeatsAddress = cfg.Outputs.BeatsAddress

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	config.PrometheusEnabled = cfg.Metrics.EnablePrometheus
	config.MetricMaxAge, err = parseOptionalDuration("metric max age", cfg.Metrics.MaxAge)
	if err != nil {
		return
	}
	config.MetricCollectionInterval, err = parseOptionalDuration("metric collection interval", cfg.Metrics.Interval)
	if err != nil {
		return
	}
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Listener
	if cfg.Endpoint == "" {
		cfg.Endpoint = global.DefaultEndpoint
	}
	// Collector timing defaults are applied by the collector itself

	// Flows
	if cfg.FlowIdleTimeout == 0 {
		cfg.FlowIdleTimeout = global.DefaultFlowIdleTimeout
	}
	if cfg.MaxFlows <= 0 {
		cfg.MaxFlows = global.DefaultMaxFlows
	}

	// Queue
	if cfg.MinQueueSize <= 0 {
		cfg.MinQueueSize = global.DefaultMinQueueSize
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = global.DefaultMaxQueueSize
	}
	if cfg.MaxQueueSize < cfg.MinQueueSize {
		cfg.MaxQueueSize = cfg.MinQueueSize
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = 1 * time.Hour
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPort
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = 15 * time.Second
	}
}
