// Lifecycle flags shared between the daemon and the collector worker
package iface

import (
	"context"
	"sync/atomic"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"time"
)

// Ages out higher level state on purge
type Purger interface {
	PurgeIdle(now time.Time) (expired int)
}

type State struct {
	Name     string
	ctx      context.Context
	running  atomic.Bool
	idle     atomic.Bool
	shutdown atomic.Bool
	purger   Purger
	Metrics  MetricStorage
}

type MetricStorage struct {
	Purges  atomic.Uint64
	Expired atomic.Uint64
}

func New(ctx context.Context, name string, purger Purger) (state *State) {
	state = &State{
		Name:   name,
		ctx:    ctx,
		purger: purger,
	}
	return
}

// Marks the interface running, releasing a waiting collector worker
func (state *State) SetRunning() {
	if state.shutdown.Load() {
		return
	}
	state.running.Store(true)
	logctx.LogEvent(state.ctx, global.VerbosityProgress, global.InfoLog,
		"Interface %s is running\n", state.Name)
}

func (state *State) SetIdle(idle bool) {
	state.idle.Store(idle)
}

// Flips idle state, returning the new value
func (state *State) ToggleIdle() (idle bool) {
	for {
		old := state.idle.Load()
		if state.idle.CompareAndSwap(old, !old) {
			idle = !old
			return
		}
	}
}

func (state *State) IsRunning() (running bool) {
	running = state.running.Load()
	return
}

func (state *State) IsIdle() (idle bool) {
	idle = state.idle.Load()
	return
}

func (state *State) IsShutdown() (shutdown bool) {
	shutdown = state.shutdown.Load()
	return
}

// Requests shutdown. Running and idle are cleared so waiting loops exit.
func (state *State) Shutdown() {
	if state.shutdown.Swap(true) {
		return
	}
	state.running.Store(false)
	state.idle.Store(false)
	logctx.LogEvent(state.ctx, global.VerbosityProgress, global.InfoLog,
		"Interface %s shutting down\n", state.Name)
}

func (state *State) PurgeIdle(now time.Time) {
	state.Metrics.Purges.Add(1)
	if state.purger == nil {
		return
	}
	expired := state.purger.PurgeIdle(now)
	if expired > 0 {
		state.Metrics.Expired.Add(uint64(expired))
		logctx.LogEvent(state.ctx, global.VerbosityData, global.InfoLog,
			"Expired %d idle flows\n", expired)
	}
}
