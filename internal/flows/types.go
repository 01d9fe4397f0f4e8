package flows

import (
	"context"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/influxdata/go-syslog/v3"
)

// Bidirectional conversation identity as reported by the sensor
type Key struct {
	Proto string
	Src   netip.AddrPort
	Dst   netip.AddrPort
}

// One flow observation decoded from a log line
type Record struct {
	Key        Key
	Exporter   string // peer address or syslog hostname of the reporting device
	Format     string // decoder that produced the record
	App        string
	Action     string
	BytesOut   uint64 // source to destination
	BytesIn    uint64
	PacketsOut uint64
	PacketsIn  uint64
	Start      time.Time // device reported bounds, zero when the format has none
	End        time.Time
}

type ExpireReason string

const (
	ExpireIdle     ExpireReason = "idle"
	ExpireCapacity ExpireReason = "capacity"
	ExpireFlush    ExpireReason = "flush"
)

// Aggregated state of one conversation
type Flow struct {
	Key        Key
	Exporter   string
	Format     string
	App        string
	Action     string
	BytesOut   uint64
	BytesIn    uint64
	PacketsOut uint64
	PacketsIn  uint64
	Records    uint64 // observations merged into this flow
	FirstSeen  time.Time // reception times, drive idle aging
	LastSeen   time.Time
	Start      time.Time // widest device reported bounds
	End        time.Time
	EndReason  ExpireReason
}

// Receives flows leaving the table. Called with the table lock held, must not block.
type Sink func(flow Flow)

// Bounded flow table ordered by last update
type Table struct {
	mu          sync.Mutex
	lru         *simplelru.LRU[Key, *Flow]
	idleTimeout time.Duration
	sink        Sink
	reason      ExpireReason // reason for the removal in progress
	Namespace   []string
	Metrics     TableMetrics
}

type TableMetrics struct {
	Created         atomic.Uint64
	Updated         atomic.Uint64
	ExpiredIdle     atomic.Uint64
	EvictedCapacity atomic.Uint64
	Flushed         atomic.Uint64
	Purges          atomic.Uint64
}

// Turns syslog lines into flow records and merges them into a table
type Parser struct {
	ctx     context.Context
	table   *Table
	now     func() time.Time
	rfc5424 syslog.Machine
	rfc3164 syslog.Machine
	mu      sync.Mutex // parsing machines keep state between calls
	Metrics ParserMetrics
}

type ParserMetrics struct {
	Lines        atomic.Uint64
	Records      atomic.Uint64
	Unrecognized atomic.Uint64
	RFC5424      atomic.Uint64 // lines with a RFC5424 header
	RFC3164      atomic.Uint64 // lines with a RFC3164 header
}
