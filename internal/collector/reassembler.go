package collector

import (
	"bytes"
	"errors"
	"fmt"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/network"
)

var ErrPeerClosed = errors.New("peer closed connection")

// Reads from fd until it would block and forwards complete lines to the parser.
// Returns ErrPeerClosed on orderly shutdown and a wrapped error for any other read failure.
func (collector *Collector) drain(fd int, peer string, hasPeer bool) (err error) {
	var received int
	defer func() {
		logctx.LogEvent(collector.ctx, global.VerbosityData, global.InfoLog,
			"Total received bytes: %d\n", received)
	}()

	for {
		n, readErr := collector.recv(fd, collector.buf)
		if readErr != nil {
			if network.IsWouldBlock(readErr) {
				return
			}
			collector.Metrics.ReadErrors.Add(1)
			err = fmt.Errorf("read failed: %w", readErr)
			return
		}
		if n == 0 {
			err = ErrPeerClosed
			return
		}

		received += n
		collector.Metrics.BytesReceived.Add(uint64(n))

		dropped := splitLines(collector.buf[:n], func(line []byte) {
			collector.forwardLine(line, peer, hasPeer)
		})
		if dropped > 0 {
			collector.Metrics.DroppedFragments.Add(1)
			logctx.LogEvent(collector.ctx, global.VerbosityFullData, global.WarnLog,
				"Discarded %d trailing bytes without line terminator\n", dropped)
		}
	}
}

func (collector *Collector) forwardLine(line []byte, peer string, hasPeer bool) {
	collector.Metrics.LinesReceived.Add(1)
	records := collector.parser.ParseLine(line, peer, hasPeer)
	if records > 0 {
		collector.receivedFlows.Add(uint64(records))
	}
}

// Calls emit for every non-empty newline terminated line in data, in order.
// A NUL byte ends the data. Bytes after the last newline are not emitted; their count is returned.
func splitLines(data []byte, emit func(line []byte)) (dropped int) {
	if end := bytes.IndexByte(data, 0); end >= 0 {
		data = data[:end]
	}
	for {
		newline := bytes.IndexByte(data, '\n')
		if newline < 0 {
			dropped = len(data)
			return
		}
		if newline > 0 {
			emit(data[:newline])
		}
		data = data[newline+1:]
	}
}
