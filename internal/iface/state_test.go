package iface

import (
	"context"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"testing"
	"time"
)

type countingPurger struct {
	calls   int
	expire  int
	lastNow time.Time
}

func (p *countingPurger) PurgeIdle(now time.Time) int {
	p.calls++
	p.lastNow = now
	return p.expire
}

func testState(t *testing.T, purger Purger) *State {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityNone, done)
	return New(ctx, "syslog://*:6514", purger)
}

func TestState_Flags(t *testing.T) {
	state := testState(t, nil)

	if state.IsRunning() || state.IsIdle() || state.IsShutdown() {
		t.Fatalf("expected all flags clear on creation")
	}

	state.SetRunning()
	if !state.IsRunning() {
		t.Fatalf("expected running")
	}

	if !state.ToggleIdle() || !state.IsIdle() {
		t.Fatalf("expected idle after first toggle")
	}
	if state.ToggleIdle() || state.IsIdle() {
		t.Fatalf("expected not idle after second toggle")
	}

	state.SetIdle(true)
	state.Shutdown()
	if state.IsRunning() || state.IsIdle() || !state.IsShutdown() {
		t.Fatalf("expected shutdown to clear running and idle")
	}

	// Running cannot be restored after shutdown
	state.SetRunning()
	if state.IsRunning() {
		t.Fatalf("expected running to stay cleared after shutdown")
	}
	state.Shutdown()
}

func TestState_PurgeIdle(t *testing.T) {
	purger := &countingPurger{expire: 3}
	state := testState(t, purger)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	state.PurgeIdle(now)
	state.PurgeIdle(now.Add(time.Second))

	if purger.calls != 2 || !purger.lastNow.Equal(now.Add(time.Second)) {
		t.Fatalf("expected purge delegated twice, got %d calls", purger.calls)
	}
	if state.Metrics.Purges.Load() != 2 || state.Metrics.Expired.Load() != 6 {
		t.Fatalf("unexpected metrics purges=%d expired=%d",
			state.Metrics.Purges.Load(), state.Metrics.Expired.Load())
	}
}

func TestState_PurgeWithoutPurger(t *testing.T) {
	state := testState(t, nil)
	state.PurgeIdle(time.Now())
	if state.Metrics.Purges.Load() != 1 {
		t.Fatalf("expected purge to be counted")
	}
}

func TestCollectMetrics(t *testing.T) {
	state := New(context.Background(), "eth0", &countingPurger{expire: 3})
	state.SetRunning()
	state.PurgeIdle(time.Now())

	values := make(map[string]any)
	for _, metric := range state.CollectMetrics(time.Second) {
		values[metric.Name] = metric.Value.Raw
		if len(metric.Namespace) != 2 || metric.Namespace[1] != "eth0" {
			t.Errorf("unexpected namespace %v", metric.Namespace)
		}
	}
	if values["running"] != uint64(1) || values["idle"] != uint64(0) {
		t.Errorf("unexpected state gauges: %v", values)
	}
	if values["purge_requests"] != uint64(1) || values["expired_flows"] != uint64(3) {
		t.Errorf("unexpected purge counters: %v", values)
	}
}
