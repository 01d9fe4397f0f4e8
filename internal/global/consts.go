package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v0.3.0"
	ProgBaseName string = "syslogcollector"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/syslogcollector.json"
	DefaultEndpoint   string = "syslog://*:6514"

	// Collector defaults
	DefaultMaxSubscribers      int           = 128                    // Connection table capacity (and listen backlog)
	DefaultPollWait            time.Duration = 500 * time.Millisecond // Readiness wait upper bound
	DefaultPurgeInterval       time.Duration = 5 * time.Second        // Wall clock interval between idle purges
	DefaultMaxPollsBeforePurge int           = 100                    // Purge safety net under sustained traffic
	DefaultIdleSleep           time.Duration = 1 * time.Second        // Sleep unit while interface is idle or not yet running
	ReceiveBufferSize          int           = 8192                   // Single read size for line reassembly

	// Flow table defaults
	DefaultFlowIdleTimeout time.Duration = 60 * time.Second
	DefaultMaxFlows        int           = 131072

	// Export queue defaults
	DefaultMinQueueSize int = 512
	DefaultMaxQueueSize int = 16384

	// Timeout values
	ReceiveShutdownTimeout time.Duration = 20 * time.Second
	OutputDrainTimeout     time.Duration = 5 * time.Second

	// Metric HTTP server
	HTTPListenPort   int           = 16514       // Default listen port
	HTTPListenAddr   string        = "localhost" // Metric queries only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second
	DataPath         string        = "/data/"
	DiscoveryPath    string        = "/discover/"
	AggregationPath  string        = "/aggregate/"
	StatsPath        string        = "/stats"
	PrometheusPath   string        = "/metrics"

	// Metric aggregation types
	MetricSum string = "sum"
	MetricAvg string = "avg"
	MetricMin string = "min"
	MetricMax string = "max"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSRecv      string = "Receiver"
	NSColl      string = "Collector"
	NSReactor   string = "Reactor"
	NSFlows     string = "Flows"
	NSIface     string = "Interface"
	NSOut       string = "Output"
	NSQueue     string = "Queue"
	NSWorker    string = "Worker"
)
