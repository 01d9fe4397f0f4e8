package beats

import (
	"context"
	"fmt"
	"syslogcollector/internal/flows"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
)

// Maps expired flow onto ECS style event fields
func eventFields(flow flows.Flow) (fields map[string]interface{}) {
	doc := flow.Document()

	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": doc.End,
		"message": fmt.Sprintf("%s %s:%d -> %s:%d bytes=%d/%d packets=%d/%d",
			doc.Proto, doc.SrcIP, doc.SrcPort, doc.DstIP, doc.DstPort,
			doc.BytesOut, doc.BytesIn, doc.PacketsOut, doc.PacketsIn),

		"event": map[string]interface{}{
			"kind":     "event",
			"category": "network",
			"type":     "end",
			"action":   doc.Action,
			"reason":   doc.EndReason,
			"start":    doc.Start,
			"end":      doc.End,
			"duration": flow.Duration().Nanoseconds(),
		},
		"source": map[string]interface{}{
			"ip":      doc.SrcIP,
			"port":    doc.SrcPort,
			"bytes":   doc.BytesOut,
			"packets": doc.PacketsOut,
		},
		"destination": map[string]interface{}{
			"ip":      doc.DstIP,
			"port":    doc.DstPort,
			"bytes":   doc.BytesIn,
			"packets": doc.PacketsIn,
		},
		"network": map[string]interface{}{
			"transport":   doc.Proto,
			"application": doc.App,
			"bytes":       doc.BytesOut + doc.BytesIn,
			"packets":     doc.PacketsOut + doc.PacketsIn,
		},
		"observer": map[string]interface{}{
			"hostname": doc.Exporter,
		},
		"agent": map[string]interface{}{
			// Meta fields identifying collector daemon itself
			"program":  global.ProgBaseName,
			"version":  global.ProgVersion,
			"type":     "filebeat",
			"pid":      global.PID,
			"hostname": global.Hostname,
		},
		"log": map[string]interface{}{
			"format":  doc.Format,
			"records": doc.Records,
		},
	}
	return
}

// Sends expired flow to configured beats server, reconnecting once on failure
func (mod *OutModule) Write(ctx context.Context, flow flows.Flow) (logsSent int, err error) {
	if mod == nil {
		return
	}

	events := []interface{}{eventFields(flow)}

	if mod.sink != nil {
		logsSent, err = mod.sink.Send(events)
		if err == nil {
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"beats server %s send failed, reconnecting: %v\n", mod.address, err)
		mod.sink.Close()
		mod.sink = nil
	}

	err = mod.connect(ctx)
	if err != nil {
		err = fmt.Errorf("failed reconnect to beats server: %w", err)
		return
	}

	logsSent, err = mod.sink.Send(events)
	return
}
