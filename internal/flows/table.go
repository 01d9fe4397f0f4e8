package flows

import (
	"fmt"
	"syslogcollector/internal/global"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Creates a flow table holding at most maxFlows entries
func NewTable(maxFlows int, idleTimeout time.Duration, sink Sink) (table *Table, err error) {
	if maxFlows <= 0 {
		err = fmt.Errorf("flow table size must be positive, got %d", maxFlows)
		return
	}
	if idleTimeout <= 0 {
		err = fmt.Errorf("flow idle timeout must be positive, got %s", idleTimeout)
		return
	}

	table = &Table{
		idleTimeout: idleTimeout,
		sink:        sink,
		reason:      ExpireCapacity,
		Namespace:   []string{global.NSFlows},
	}

	table.lru, err = simplelru.NewLRU(maxFlows, table.onEvict)
	if err != nil {
		err = fmt.Errorf("failed to create flow table: %w", err)
		table = nil
		return
	}
	return
}

// Called by the LRU for every removed entry, lock held by caller
func (table *Table) onEvict(_ Key, flow *Flow) {
	flow.EndReason = table.reason
	switch table.reason {
	case ExpireIdle:
		table.Metrics.ExpiredIdle.Add(1)
	case ExpireFlush:
		table.Metrics.Flushed.Add(1)
	default:
		table.Metrics.EvictedCapacity.Add(1)
	}
	if table.sink != nil {
		table.sink(*flow)
	}
}

// Merges record into its flow, creating the flow if new
func (table *Table) Upsert(record Record, now time.Time) {
	table.mu.Lock()
	defer table.mu.Unlock()

	flow, exists := table.lru.Get(record.Key)
	if exists {
		flow.BytesOut += record.BytesOut
		flow.BytesIn += record.BytesIn
		flow.PacketsOut += record.PacketsOut
		flow.PacketsIn += record.PacketsIn
		flow.Records++
		flow.LastSeen = now
		if record.App != "" {
			flow.App = record.App
		}
		if record.Action != "" {
			flow.Action = record.Action
		}
		if !record.Start.IsZero() && (flow.Start.IsZero() || record.Start.Before(flow.Start)) {
			flow.Start = record.Start
		}
		if record.End.After(flow.End) {
			flow.End = record.End
		}
		table.Metrics.Updated.Add(1)
		return
	}

	flow = &Flow{
		Key:        record.Key,
		Exporter:   record.Exporter,
		Format:     record.Format,
		App:        record.App,
		Action:     record.Action,
		BytesOut:   record.BytesOut,
		BytesIn:    record.BytesIn,
		PacketsOut: record.PacketsOut,
		PacketsIn:  record.PacketsIn,
		Records:    1,
		FirstSeen:  now,
		LastSeen:   now,
		Start:      record.Start,
		End:        record.End,
	}
	table.reason = ExpireCapacity
	table.lru.Add(record.Key, flow)
	table.Metrics.Created.Add(1)
}

// Expires flows not updated within the idle timeout, oldest first. Returns number expired.
func (table *Table) PurgeIdle(now time.Time) (expired int) {
	table.mu.Lock()
	defer table.mu.Unlock()

	table.Metrics.Purges.Add(1)
	table.reason = ExpireIdle
	defer func() { table.reason = ExpireCapacity }()

	for {
		_, flow, ok := table.lru.GetOldest()
		if !ok || now.Sub(flow.LastSeen) <= table.idleTimeout {
			return
		}
		table.lru.RemoveOldest()
		expired++
	}
}

// Expires every flow regardless of age
func (table *Table) Flush() (flushed int) {
	table.mu.Lock()
	defer table.mu.Unlock()

	table.reason = ExpireFlush
	defer func() { table.reason = ExpireCapacity }()

	for {
		_, _, ok := table.lru.RemoveOldest()
		if !ok {
			return
		}
		flushed++
	}
}

func (table *Table) Len() (count int) {
	table.mu.Lock()
	defer table.mu.Unlock()
	count = table.lru.Len()
	return
}

// Copy of a flow without touching its recency
func (table *Table) Peek(key Key) (flow Flow, found bool) {
	table.mu.Lock()
	defer table.mu.Unlock()

	stored, found := table.lru.Peek(key)
	if found {
		flow = *stored
	}
	return
}
