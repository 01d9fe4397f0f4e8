package collector

import (
	"context"
	"net/netip"
	"sync"
	"sync/atomic"
	"syslogcollector/internal/network"
	"syslogcollector/internal/poller"
	"time"
)

// Consumer of complete log lines. Returns the number of flow records produced.
// The line buffer is reused after the call returns and must not be retained.
type LineParser interface {
	ParseLine(line []byte, peer string, hasPeer bool) (records int)
}

// Lifecycle flags and flow housekeeping of the surrounding network interface
type Interface interface {
	IsRunning() bool
	IsIdle() bool
	IsShutdown() bool
	Shutdown()
	PurgeIdle(now time.Time)
}

// Parsed form of "[syslog://]<host|*>:<port>[@udp]"
type Endpoint struct {
	Addr      netip.AddrPort
	Wildcard  bool
	Transport network.Transport
}

type Config struct {
	MaxSubscribers      int           // Connection table capacity and listen backlog
	PollWait            time.Duration // Upper bound of one readiness wait
	PurgeInterval       time.Duration // Maximum time between purges
	MaxPollsBeforePurge int           // Maximum readiness waits between purges
	IdleSleep           time.Duration // Sleep granularity while waiting or idle
}

// Read-only view for reporting layers
type Stats struct {
	IsSyslogSource    bool   `json:"isSyslogSource"`
	ReceivedFlowCount uint64 `json:"receivedFlowCount"`
}

// One occupied connection table entry
type Conn struct {
	FD         int
	Peer       netip.AddrPort
	PeerString string
}

type slot struct {
	conn     Conn
	occupied bool
}

// Fixed capacity slot map of accepted stream peers
type ConnTable struct {
	slots  []slot
	byFD   map[int]int
	count  int
	closer func(fd int) (err error)
}

type Collector struct {
	Namespace []string
	ctx       context.Context
	endpoint  Endpoint
	cfg       Config
	listenFD  int
	poller    poller.Poller
	conns     *ConnTable
	parser    LineParser
	iface     Interface

	// Reactor state, owned by the worker
	buf             []byte
	events          []poller.Event
	readable        []bool
	exceptional     []bool
	nextPurge       time.Time
	pollsUntilPurge int

	now     func() time.Time
	sleep   func(time.Duration)
	recv    func(fd int, buf []byte) (n int, err error)
	accept  func(listenFD int) (fd int, peer netip.AddrPort, err error)
	closeFD func(fd int) (err error)

	receivedFlows atomic.Uint64
	Metrics       MetricStorage

	started   atomic.Bool
	stopOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
}
