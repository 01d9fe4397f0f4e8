package collector

import (
	"net/netip"
	"syslogcollector/internal/poller"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

const fakeListenFD = 1000

// Collector over a scripted poller with a controllable clock
func newReactorCollector(t *testing.T, spec string, cfg Config, fp *fakePoller, iface *fakeIface, parser LineParser) (c *Collector, clock *time.Time) {
	t.Helper()
	endpoint, err := ParseEndpoint(spec)
	if err != nil {
		t.Fatalf("unexpected endpoint error: %v", err)
	}
	cfg.setDefaults()
	c = assemble(testContext(t), endpoint, cfg, fakeListenFD, fp, parser, iface)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock = &now
	c.now = func() time.Time { return *clock }
	c.sleep = func(time.Duration) {}
	c.recv = func(int, []byte) (int, error) { return 0, unix.EAGAIN }
	c.nextPurge = now.Add(cfg.PurgeInterval)
	c.pollsUntilPurge = cfg.MaxPollsBeforePurge
	return
}

func listenerReadable(int) []poller.Event {
	return []poller.Event{{FD: fakeListenFD, Readable: true}}
}

func TestPollOnce_PurgeOnTimeout(t *testing.T) {
	iface := &fakeIface{}
	fp := &fakePoller{} // no events, every wait times out
	c, _ := newReactorCollector(t, "*:514@udp", fastConfig(), fp, iface, &recordingParser{})

	for range 3 {
		c.pollOnce()
	}
	if got := iface.purgeCount(); got != 3 {
		t.Fatalf("expected purge on every timed out poll, got %d", got)
	}
}

func TestPollOnce_PurgeOnInterval(t *testing.T) {
	iface := &fakeIface{}
	cfg := fastConfig()
	cfg.PurgeInterval = 5 * time.Second
	cfg.MaxPollsBeforePurge = 1000

	fp := &fakePoller{script: listenerReadable}
	c, clock := newReactorCollector(t, "*:514@udp", cfg, fp, iface, &recordingParser{})
	fp.onWait = func() { *clock = clock.Add(time.Second) }

	for range 4 {
		c.pollOnce()
	}
	if got := iface.purgeCount(); got != 0 {
		t.Fatalf("expected no purge before interval under traffic, got %d", got)
	}

	c.pollOnce() // clock reaches the deadline
	if got := iface.purgeCount(); got != 1 {
		t.Fatalf("expected purge once interval elapsed, got %d", got)
	}

	for range 5 {
		c.pollOnce()
	}
	if got := iface.purgeCount(); got != 2 {
		t.Fatalf("expected deadline to reset after purge, got %d purges", got)
	}
}

func TestPollOnce_PurgeOnPollCount(t *testing.T) {
	iface := &fakeIface{}
	cfg := fastConfig()
	cfg.PurgeInterval = time.Hour
	cfg.MaxPollsBeforePurge = 3

	fp := &fakePoller{script: listenerReadable} // clock frozen, constant traffic
	c, _ := newReactorCollector(t, "*:514@udp", cfg, fp, iface, &recordingParser{})

	for range 2 {
		c.pollOnce()
	}
	if got := iface.purgeCount(); got != 0 {
		t.Fatalf("expected no purge before poll budget, got %d", got)
	}
	c.pollOnce()
	if got := iface.purgeCount(); got != 1 {
		t.Fatalf("expected purge after 3 polls, got %d", got)
	}
	for range 6 {
		c.pollOnce()
	}
	if got := iface.purgeCount(); got != 3 {
		t.Fatalf("expected purge every 3 polls, got %d", got)
	}
}

func TestDispatch_SlotFailuresDoNotAbortScan(t *testing.T) {
	iface := &fakeIface{}
	parser := &recordingParser{}
	fp := &fakePoller{}
	c, _ := newReactorCollector(t, "*:514", fastConfig(), fp, iface, parser)

	var closed []int
	c.conns = NewConnTable(4, func(fd int) error {
		closed = append(closed, fd)
		return nil
	})
	for i, fd := range []int{11, 12, 13, 14} {
		c.conns.AcceptInto(fd, peerAt(uint16(i+1)))
		fp.Add(fd)
	}

	reads := map[int][]readResult{
		11: {{data: []byte{}}},                 // peer closed
		12: {{err: unix.ECONNRESET}},           // fatal
		13: {{data: []byte("kept\n")}},         // stays open
		14: {{data: []byte("then-error\n")}}, // exceptional
	}
	c.recv = func(fd int, buf []byte) (int, error) {
		queue := reads[fd]
		if len(queue) == 0 {
			return 0, unix.EAGAIN
		}
		reads[fd] = queue[1:]
		if queue[0].err != nil {
			return 0, queue[0].err
		}
		return copy(buf, queue[0].data), nil
	}

	c.dispatch([]poller.Event{
		{FD: 11, Readable: true},
		{FD: 12, Readable: true},
		{FD: 13, Readable: true},
		{FD: 14, Readable: true, Exceptional: true},
	})

	if len(closed) != 3 || closed[0] != 11 || closed[1] != 12 || closed[2] != 14 {
		t.Fatalf("expected fds 11, 12, 14 closed in slot order, got %v", closed)
	}
	if c.conns.Len() != 1 {
		t.Fatalf("expected one connection left open, got %d", c.conns.Len())
	}
	if _, ok := c.conns.Lookup(13); !ok {
		t.Fatalf("expected fd 13 to stay registered")
	}
	if fp.added[11] || fp.added[12] || fp.added[14] || !fp.added[13] {
		t.Fatalf("unexpected readiness registrations %v", fp.added)
	}

	lines := parser.snapshot()
	if len(lines) != 2 || lines[0].line != "kept" || lines[1].line != "then-error" {
		t.Fatalf("expected lines from fds 13 and 14, got %+v", lines)
	}
}

func TestDispatch_AcceptRejectsWhenFull(t *testing.T) {
	iface := &fakeIface{}
	fp := &fakePoller{}
	cfg := fastConfig()
	cfg.MaxSubscribers = 1
	c, _ := newReactorCollector(t, "*:514", cfg, fp, iface, &recordingParser{})

	var closed []int
	closeFD := func(fd int) error {
		closed = append(closed, fd)
		return nil
	}
	c.closeFD = closeFD
	c.conns = NewConnTable(1, closeFD)

	nextFD := 20
	c.accept = func(int) (int, netip.AddrPort, error) {
		nextFD++
		return nextFD, peerAt(uint16(nextFD)), nil
	}

	c.dispatch(listenerReadable(0))
	if c.conns.Len() != 1 || !fp.added[21] {
		t.Fatalf("expected first peer registered and watched")
	}

	c.dispatch(listenerReadable(0))
	if c.conns.Len() != 1 {
		t.Fatalf("expected table to stay at capacity, got %d", c.conns.Len())
	}
	if _, ok := c.conns.Lookup(22); ok || fp.added[22] {
		t.Fatalf("rejected peer must not be registered")
	}
	if len(closed) != 1 || closed[0] != 22 {
		t.Fatalf("expected rejected fd 22 closed, got %v", closed)
	}
	if got := c.Metrics.RejectedConns.Load(); got != 1 {
		t.Fatalf("expected one rejection, got %d", got)
	}

	// Freeing the slot admits exactly one more peer
	c.closeSlot(0)
	c.dispatch(listenerReadable(0))
	c.dispatch(listenerReadable(0))
	if _, ok := c.conns.Lookup(23); !ok {
		t.Fatalf("expected fd 23 admitted after slot was freed")
	}
	if len(closed) != 3 || closed[1] != 21 || closed[2] != 24 {
		t.Fatalf("expected fds 21 and 24 closed, got %v", closed)
	}
}

func TestDispatch_AcceptFailureIsLoggedOnly(t *testing.T) {
	fp := &fakePoller{}
	c, _ := newReactorCollector(t, "*:514", fastConfig(), fp, &fakeIface{}, &recordingParser{})
	c.accept = func(int) (int, netip.AddrPort, error) {
		return -1, netip.AddrPort{}, unix.EMFILE
	}

	c.dispatch([]poller.Event{{FD: fakeListenFD, Readable: true, Exceptional: true}})
	if c.conns.Len() != 0 {
		t.Fatalf("expected no connection registered")
	}
	if got := c.Metrics.AcceptFailures.Load(); got != 1 {
		t.Fatalf("expected accept failure recorded, got %d", got)
	}
}

func TestDispatch_UDPDrainsListenerWithoutPeer(t *testing.T) {
	parser := &recordingParser{recordsPerLine: 1}
	fp := &fakePoller{}
	c, _ := newReactorCollector(t, "*:514@udp", fastConfig(), fp, &fakeIface{}, parser)

	recv, _ := scriptedRecv(readResult{data: []byte("x\ny\n")})
	c.recv = func(fd int, buf []byte) (int, error) {
		if fd != fakeListenFD {
			t.Fatalf("expected reads from listener socket, got fd %d", fd)
		}
		return recv(fd, buf)
	}

	c.dispatch(listenerReadable(0))

	lines := parser.snapshot()
	if len(lines) != 2 || lines[0].line != "x" || lines[1].line != "y" {
		t.Fatalf("expected x then y, got %+v", lines)
	}
	for _, line := range lines {
		if line.hasPeer || line.peer != "" {
			t.Fatalf("expected absent peer for datagram source, got %+v", line)
		}
	}
}

func TestCollectFlows_IdleLoop(t *testing.T) {
	iface := &fakeIface{}
	iface.running.Store(true)
	iface.idle.Store(true)

	fp := &fakePoller{}
	c, _ := newReactorCollector(t, "*:514", fastConfig(), fp, iface, &recordingParser{})

	sleeps := 0
	c.sleep = func(time.Duration) {
		sleeps++
		if sleeps == 3 {
			iface.shutdown.Store(true)
		}
	}

	c.collectFlows()

	if fp.calls != 0 {
		t.Fatalf("expected no polling while idle, got %d waits", fp.calls)
	}
	if got := iface.purgeCount(); got != 3 {
		t.Fatalf("expected a purge per idle cycle, got %d", got)
	}
}

func TestCollectFlows_StopsWhenNotRunning(t *testing.T) {
	iface := &fakeIface{}
	iface.running.Store(true)

	fp := &fakePoller{}
	c, _ := newReactorCollector(t, "*:514", fastConfig(), fp, iface, &recordingParser{})
	fp.onWait = func() {
		if fp.calls == 4 {
			iface.running.Store(false)
		}
	}

	c.collectFlows()
	if fp.calls != 5 {
		t.Fatalf("expected loop to exit after running flag cleared, got %d waits", fp.calls)
	}
}
