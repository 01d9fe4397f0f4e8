package collector

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/poller"
	"testing"
	"time"
)

type fakeIface struct {
	running  atomic.Bool
	idle     atomic.Bool
	shutdown atomic.Bool

	mu     sync.Mutex
	purges []time.Time
}

func (f *fakeIface) IsRunning() bool  { return f.running.Load() }
func (f *fakeIface) IsIdle() bool     { return f.idle.Load() }
func (f *fakeIface) IsShutdown() bool { return f.shutdown.Load() }
func (f *fakeIface) Shutdown() {
	f.shutdown.Store(true)
	f.running.Store(false)
}
func (f *fakeIface) PurgeIdle(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges = append(f.purges, now)
}
func (f *fakeIface) purgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.purges)
}

type parsedLine struct {
	line    string
	peer    string
	hasPeer bool
}

type recordingParser struct {
	mu             sync.Mutex
	lines          []parsedLine
	recordsPerLine int
}

func (p *recordingParser) ParseLine(line []byte, peer string, hasPeer bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, parsedLine{line: string(line), peer: peer, hasPeer: hasPeer})
	return p.recordsPerLine
}

func (p *recordingParser) snapshot() []parsedLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]parsedLine(nil), p.lines...)
}

// Polls until parser has seen n lines or timeout expires
func (p *recordingParser) waitFor(t *testing.T, n int, timeout time.Duration) []parsedLine {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if lines := p.snapshot(); len(lines) >= n {
			return lines
		}
		time.Sleep(5 * time.Millisecond)
	}
	lines := p.snapshot()
	t.Fatalf("timed out waiting for %d lines, got %d: %+v", n, len(lines), lines)
	return nil
}

// Scripted poller returning a fixed event list per call
type fakePoller struct {
	script func(call int) []poller.Event
	calls  int
	onWait func()
	added  map[int]bool
}

func (f *fakePoller) Add(fd int) error {
	if f.added == nil {
		f.added = map[int]bool{}
	}
	f.added[fd] = true
	return nil
}
func (f *fakePoller) Remove(fd int) error {
	delete(f.added, fd)
	return nil
}
func (f *fakePoller) Wait(timeout time.Duration, events []poller.Event) (n int, err error) {
	if f.onWait != nil {
		f.onWait()
	}
	var evs []poller.Event
	if f.script != nil {
		evs = f.script(f.calls)
	}
	f.calls++
	n = copy(events, evs)
	return
}
func (f *fakePoller) Close() error { return nil }

func testContext(t *testing.T) context.Context {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	return logctx.New(context.Background(), global.NSTest, global.VerbosityNone, done)
}

// Finds an unused loopback port for the given network
func freePort(t *testing.T, network string) int {
	t.Helper()
	switch network {
	case "udp":
		conn, err := net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve udp port: %v", err)
		}
		defer conn.Close()
		return conn.LocalAddr().(*net.UDPAddr).Port
	default:
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to reserve tcp port: %v", err)
		}
		defer listener.Close()
		return listener.Addr().(*net.TCPAddr).Port
	}
}

func fastConfig() Config {
	return Config{
		MaxSubscribers:      4,
		PollWait:            20 * time.Millisecond,
		PurgeInterval:       time.Second,
		MaxPollsBeforePurge: 100,
		IdleSleep:           5 * time.Millisecond,
	}
}
