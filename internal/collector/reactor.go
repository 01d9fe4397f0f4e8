package collector

import (
	"errors"
	"runtime/debug"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/network"
	"syslogcollector/internal/poller"
	"time"
)

// Reactor loop. Returns when the interface stops running or shuts down while idle.
func (collector *Collector) collectFlows() {
	ctx := logctx.AppendCtxTag(collector.ctx, global.NSReactor)
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Collecting flows on %s\n", collector.endpoint)

	collector.nextPurge = collector.now().Add(collector.cfg.PurgeInterval)
	collector.pollsUntilPurge = collector.cfg.MaxPollsBeforePurge

	for collector.iface.IsRunning() {
		for collector.iface.IsIdle() {
			collector.purge(collector.now())
			collector.sleep(collector.cfg.IdleSleep)
			if collector.iface.IsShutdown() {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
					"Shutdown requested while idle, flow collection is over\n")
				return
			}
		}

		collector.pollOnce()
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Flow collection is over\n")
}

// One readiness wait with purge check and event dispatch
func (collector *Collector) pollOnce() {
	defer func() {
		// Record panics and continue polling
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in collector reactor iteration: %v\n%s", fatalError, stack)
		}
	}()

	n, err := collector.poller.Wait(collector.cfg.PollWait, collector.events)
	if err != nil {
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
			"Readiness wait failed: %v\n", err)
		n = -1
	}
	collector.Metrics.Polls.Add(1)

	now := collector.now()
	if collector.purgeDue(n == 0, now) {
		collector.purge(now)
	}

	if n > 0 {
		collector.dispatch(collector.events[:n])
	}
}

// Purge runs on poll timeout, once the purge deadline passes, or after the poll budget is spent.
// Deadline and budget reset whenever it runs.
func (collector *Collector) purgeDue(timedOut bool, now time.Time) (due bool) {
	collector.pollsUntilPurge--
	if !timedOut && now.Before(collector.nextPurge) && collector.pollsUntilPurge > 0 {
		return
	}
	collector.nextPurge = now.Add(collector.cfg.PurgeInterval)
	collector.pollsUntilPurge = collector.cfg.MaxPollsBeforePurge
	due = true
	return
}

func (collector *Collector) purge(now time.Time) {
	collector.Metrics.Purges.Add(1)
	collector.iface.PurgeIdle(now)
}

func (collector *Collector) dispatch(events []poller.Event) {
	clear(collector.readable)
	clear(collector.exceptional)

	var listenerReadable, listenerExceptional bool
	for _, event := range events {
		if event.FD == collector.listenFD {
			listenerReadable = event.Readable
			listenerExceptional = event.Exceptional
			continue
		}
		index, ok := collector.conns.Lookup(event.FD)
		if !ok {
			continue
		}
		collector.readable[index] = event.Readable
		collector.exceptional[index] = event.Exceptional
	}

	udp := collector.endpoint.Transport == network.UDP

	if listenerReadable {
		if udp {
			err := collector.drain(collector.listenFD, "", false)
			if err != nil {
				logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
					"Error receiving from listener socket: %v\n", err)
				return
			}
		} else {
			collector.acceptOne()
		}
	}

	if listenerExceptional {
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
			"Exception on listener socket\n")
	}

	if udp {
		return
	}

	for index, conn := range collector.conns.Occupied() {
		if collector.readable[index] {
			logctx.LogEvent(collector.ctx, global.VerbosityData, global.InfoLog,
				"Trying to receive from %s\n", conn.Peer)

			err := collector.drain(conn.FD, conn.PeerString, true)
			if err != nil {
				if errors.Is(err, ErrPeerClosed) {
					logctx.LogEvent(collector.ctx, global.VerbosityProgress, global.InfoLog,
						"Client %s shut down connection\n", conn.Peer)
				} else {
					logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
						"Client %s error: %v\n", conn.Peer, err)
				}
				collector.closeSlot(index)
				continue
			}
		}

		if collector.exceptional[index] {
			logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
				"Exception on client socket for %s\n", conn.Peer)
			collector.closeSlot(index)
		}
	}
}
