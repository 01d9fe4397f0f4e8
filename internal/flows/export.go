package flows

import "time"

// Flat representation of an expired flow written by outputs
type Document struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMS int64     `json:"duration_ms"`
	Exporter   string    `json:"exporter"`
	Format     string    `json:"format"`
	Proto      string    `json:"proto"`
	SrcIP      string    `json:"src_ip"`
	SrcPort    uint16    `json:"src_port"`
	DstIP      string    `json:"dst_ip"`
	DstPort    uint16    `json:"dst_port"`
	App        string    `json:"app,omitempty"`
	Action     string    `json:"action,omitempty"`
	BytesOut   uint64    `json:"bytes_out"`
	BytesIn    uint64    `json:"bytes_in"`
	PacketsOut uint64    `json:"packets_out"`
	PacketsIn  uint64    `json:"packets_in"`
	Records    uint64    `json:"records"`
	EndReason  string    `json:"end_reason"`
}

// Device reported bounds when known, otherwise reception times
func (flow Flow) Bounds() (start, end time.Time) {
	start, end = flow.FirstSeen, flow.LastSeen
	if !flow.Start.IsZero() {
		start = flow.Start
	}
	if !flow.End.IsZero() {
		end = flow.End
	}
	return
}

func (flow Flow) Duration() (duration time.Duration) {
	start, end := flow.Bounds()
	if end.Before(start) {
		return
	}
	duration = end.Sub(start)
	return
}

func (flow Flow) Document() (doc Document) {
	start, end := flow.Bounds()
	doc = Document{
		Start:      start.UTC(),
		End:        end.UTC(),
		DurationMS: flow.Duration().Milliseconds(),
		Exporter:   flow.Exporter,
		Format:     flow.Format,
		Proto:      flow.Key.Proto,
		SrcIP:      flow.Key.Src.Addr().String(),
		SrcPort:    flow.Key.Src.Port(),
		DstIP:      flow.Key.Dst.Addr().String(),
		DstPort:    flow.Key.Dst.Port(),
		App:        flow.App,
		Action:     flow.Action,
		BytesOut:   flow.BytesOut,
		BytesIn:    flow.BytesIn,
		PacketsOut: flow.PacketsOut,
		PacketsIn:  flow.PacketsIn,
		Records:    flow.Records,
		EndReason:  string(flow.EndReason),
	}
	return
}

// Encodes the flow as a single JSON line with trailing newline
func (flow Flow) MarshalLine() (line []byte, err error) {
	line, err = json.Marshal(flow.Document())
	if err != nil {
		return
	}
	line = append(line, '\n')
	return
}
