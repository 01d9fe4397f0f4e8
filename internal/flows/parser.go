// Flow extraction from syslog lines and the aging flow table
package flows

import (
	"bytes"
	"context"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"time"

	"github.com/influxdata/go-syslog/v3"
	"github.com/influxdata/go-syslog/v3/rfc3164"
	"github.com/influxdata/go-syslog/v3/rfc5424"
)

func NewParser(ctx context.Context, table *Table) (parser *Parser) {
	parser = &Parser{
		ctx:     logctx.AppendCtxTag(ctx, global.NSFlows),
		table:   table,
		now:     time.Now,
		rfc5424: rfc5424.NewParser(rfc5424.WithBestEffort()),
		rfc3164: rfc3164.NewParser(rfc3164.WithBestEffort()),
	}
	return
}

// Decodes flow records from one line and merges them into the table.
// Returns the number of records produced.
func (parser *Parser) ParseLine(line []byte, peer string, hasPeer bool) (records int) {
	parser.Metrics.Lines.Add(1)

	body, hostname := parser.stripHeader(line)

	exporter := hostname
	if hasPeer {
		exporter = peer
	}

	var decoded []Record
	if eveRecords, isEVE := decodeEVE(body); isEVE {
		decoded = eveRecords
	} else if kvRecord, isKV := decodeKV(body); isKV {
		decoded = []Record{kvRecord}
	}

	if len(decoded) == 0 {
		parser.Metrics.Unrecognized.Add(1)
		logctx.LogEvent(parser.ctx, global.VerbosityFullData, global.InfoLog,
			"No flow data in line from %q: %q\n", exporter, line)
		return
	}

	now := parser.now()
	for _, record := range decoded {
		record.Exporter = exporter
		parser.table.Upsert(record, now)
	}

	records = len(decoded)
	parser.Metrics.Records.Add(uint64(records))
	return
}

// Returns the message body of a syslog line and the header hostname if present.
// Lines without a parseable header lose only a leading <PRI>.
func (parser *Parser) stripHeader(line []byte) (body []byte, hostname string) {
	if len(line) == 0 || line[0] != '<' {
		body = line
		return
	}

	parser.mu.Lock()
	defer parser.mu.Unlock()

	message, _ := parser.rfc5424.Parse(line)
	if base := messageBase(message); base != nil && base.Message != nil {
		parser.Metrics.RFC5424.Add(1)
		body, hostname = []byte(*base.Message), deref(base.Hostname)
		return
	}

	message, _ = parser.rfc3164.Parse(line)
	if base := messageBase(message); base != nil && base.Message != nil {
		parser.Metrics.RFC3164.Add(1)
		body, hostname = []byte(*base.Message), deref(base.Hostname)
		return
	}

	body = stripPriority(line)
	return
}

func messageBase(message syslog.Message) (base *syslog.Base) {
	switch m := message.(type) {
	case *rfc5424.SyslogMessage:
		if m != nil {
			base = &m.Base
		}
	case *rfc3164.SyslogMessage:
		if m != nil {
			base = &m.Base
		}
	}
	return
}

// Removes a leading "<N>" priority of up to three digits
func stripPriority(line []byte) (rest []byte) {
	rest = line
	end := bytes.IndexByte(line, '>')
	if end < 2 || end > 4 {
		return
	}
	for _, digit := range line[1:end] {
		if digit < '0' || digit > '9' {
			return
		}
	}
	rest = bytes.TrimLeft(line[end+1:], " ")
	return
}

func deref(value *string) (out string) {
	if value != nil {
		out = *value
	}
	return
}
