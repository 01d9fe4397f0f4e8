package collector

import (
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
)

// Accepts exactly one pending connection into the table, rejecting it when the table is full
func (collector *Collector) acceptOne() {
	fd, peer, err := collector.accept(collector.listenFD)
	if err != nil {
		collector.Metrics.AcceptFailures.Add(1)
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to accept connection: %v\n", err)
		return
	}

	logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.InfoLog,
		"Incoming connection from %s\n", peer)

	index, ok := collector.conns.AcceptInto(fd, peer)
	if !ok {
		collector.Metrics.RejectedConns.Add(1)
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.WarnLog,
			"Too many connections. Closing connection from %s\n", peer)
		collector.closeFD(fd)
		return
	}

	err = collector.poller.Add(fd)
	if err != nil {
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
			"Unable to watch connection from %s: %v\n", peer, err)
		collector.conns.Close(index)
		return
	}

	collector.Metrics.AcceptedConns.Add(1)
	collector.Metrics.ActiveConns.Store(uint64(collector.conns.Len()))
}

// Removes slot from the readiness set and closes its socket
func (collector *Collector) closeSlot(index int) {
	conn, ok := collector.conns.Get(index)
	if !ok {
		return
	}

	logctx.LogEvent(collector.ctx, global.VerbosityProgress, global.InfoLog,
		"Closing client socket for %s\n", conn.Peer)

	err := collector.poller.Remove(conn.FD)
	if err != nil {
		logctx.LogEvent(collector.ctx, global.VerbosityProgress, global.WarnLog,
			"Failed to unwatch %s: %v\n", conn.Peer, err)
	}
	err = collector.conns.Close(index)
	if err != nil {
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to close socket for %s: %v\n", conn.Peer, err)
	}

	collector.Metrics.ClosedConns.Add(1)
	collector.Metrics.ActiveConns.Store(uint64(collector.conns.Len()))
}
