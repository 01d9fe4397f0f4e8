package flows

import (
	"net/netip"
	"testing"
	"time"
)

func TestDecodeEVE(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantOK      bool
		wantRecords int
		check       func(t *testing.T, records []Record)
	}{
		{
			name:        "flow event with counters",
			input:       `{"timestamp":"2026-01-02T03:04:05.000000+0000","event_type":"flow","src_ip":"10.0.0.5","src_port":51234,"dest_ip":"93.184.216.34","dest_port":443,"proto":"TCP","app_proto":"tls","flow":{"pkts_toserver":12,"pkts_toclient":10,"bytes_toserver":1500,"bytes_toclient":9000}}`,
			wantOK:      true,
			wantRecords: 1,
			check: func(t *testing.T, records []Record) {
				r := records[0]
				if r.Key.Proto != "tcp" {
					t.Errorf("expected proto tcp, got %q", r.Key.Proto)
				}
				if r.Key.Src != netip.MustParseAddrPort("10.0.0.5:51234") || r.Key.Dst != netip.MustParseAddrPort("93.184.216.34:443") {
					t.Errorf("unexpected key %+v", r.Key)
				}
				if r.PacketsOut != 12 || r.PacketsIn != 10 || r.BytesOut != 1500 || r.BytesIn != 9000 {
					t.Errorf("unexpected counters %+v", r)
				}
				if r.App != "tls" || r.Format != FormatEVE {
					t.Errorf("unexpected app/format %q/%q", r.App, r.Format)
				}
			},
		},
		{
			name:        "flow bounds from device",
			input:       `{"event_type":"flow","src_ip":"10.0.0.5","src_port":5353,"dest_ip":"10.0.0.6","dest_port":53,"proto":"UDP","flow":{"pkts_toserver":1,"start":"2026-01-02T03:04:05.250000+0100","end":"2026-01-02T03:04:07.750000+0100"}}`,
			wantOK:      true,
			wantRecords: 1,
			check: func(t *testing.T, records []Record) {
				wantStart := time.Date(2026, 1, 2, 2, 4, 5, 250000000, time.UTC)
				wantEnd := time.Date(2026, 1, 2, 2, 4, 7, 750000000, time.UTC)
				if !records[0].Start.Equal(wantStart) || !records[0].End.Equal(wantEnd) {
					t.Errorf("expected bounds %s..%s, got %s..%s", wantStart, wantEnd, records[0].Start, records[0].End)
				}
			},
		},
		{
			name:        "unparseable flow bounds ignored",
			input:       `{"event_type":"flow","src_ip":"10.0.0.5","dest_ip":"10.0.0.6","proto":"UDP","flow":{"start":"yesterday","end":42}}`,
			wantOK:      true,
			wantRecords: 1,
			check: func(t *testing.T, records []Record) {
				if !records[0].Start.IsZero() || !records[0].End.IsZero() {
					t.Errorf("expected zero bounds, got %s..%s", records[0].Start, records[0].End)
				}
			},
		},
		{
			name:        "array of events",
			input:       `[{"event_type":"flow","src_ip":"10.0.0.1","dest_ip":"10.0.0.2","proto":"UDP"},{"event_type":"alert","src_ip":"10.0.0.3","dest_ip":"10.0.0.4","proto":6,"alert":{"action":"blocked"}}]`,
			wantOK:      true,
			wantRecords: 2,
			check: func(t *testing.T, records []Record) {
				if records[1].Key.Proto != "tcp" {
					t.Errorf("expected numeric proto 6 to map to tcp, got %q", records[1].Key.Proto)
				}
				if records[1].Action != "blocked" {
					t.Errorf("expected alert action, got %q", records[1].Action)
				}
			},
		},
		{
			name:        "non flow event type",
			input:       `{"event_type":"dns","src_ip":"10.0.0.1","dest_ip":"10.0.0.2","proto":"UDP"}`,
			wantOK:      true,
			wantRecords: 0,
		},
		{
			name:        "invalid address skipped",
			input:       `{"event_type":"flow","src_ip":"nope","dest_ip":"10.0.0.2","proto":"UDP"}`,
			wantOK:      true,
			wantRecords: 0,
		},
		{
			name:   "broken json",
			input:  `{"event_type":"flow"`,
			wantOK: false,
		},
		{
			name:   "not json",
			input:  `srcip=10.0.0.1 dstip=10.0.0.2`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, ok := decodeEVE([]byte(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if len(records) != tt.wantRecords {
				t.Fatalf("expected %d records, got %d", tt.wantRecords, len(records))
			}
			if tt.check != nil {
				tt.check(t, records)
			}
		})
	}
}

func TestDecodeKV(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   Record
	}{
		{
			name:   "fortinet traffic log",
			input:  `date=2026-01-02 time=03:04:05 devname="FGT-01" type="traffic" srcip=192.168.1.10 srcport=50000 dstip=8.8.8.8 dstport=53 proto=17 action="accept" service="DNS" sentbyte=80 rcvdbyte=120 sentpkt=1 rcvdpkt=1`,
			wantOK: true,
			want: Record{
				Key: Key{
					Proto: "udp",
					Src:   netip.MustParseAddrPort("192.168.1.10:50000"),
					Dst:   netip.MustParseAddrPort("8.8.8.8:53"),
				},
				Format:     FormatKV,
				App:        "DNS",
				Action:     "accept",
				BytesOut:   80,
				BytesIn:    120,
				PacketsOut: 1,
				PacketsIn:  1,
			},
		},
		{
			name:   "short aliases",
			input:  `SRC=10.1.1.1 DST=10.2.2.2 PROTO=TCP SPT=1234 DPT=22`,
			wantOK: true,
			want: Record{
				Key: Key{
					Proto: "tcp",
					Src:   netip.MustParseAddrPort("10.1.1.1:1234"),
					Dst:   netip.MustParseAddrPort("10.2.2.2:22"),
				},
				Format: FormatKV,
			},
		},
		{
			name:   "missing destination",
			input:  `srcip=10.1.1.1 srcport=1`,
			wantOK: false,
		},
		{
			name:   "plain text",
			input:  `session opened for user root`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeKV([]byte(tt.input))
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && got != tt.want {
				t.Fatalf("expected %+v\ngot %+v", tt.want, got)
			}
		})
	}
}

func TestNormalizeProtocol(t *testing.T) {
	tests := map[string]string{
		"6":    "tcp",
		"17":   "udp",
		"TCP":  "tcp",
		" 1 ":  "icmp",
		"250":  "250",
		"":     "",
		"ICMP": "icmp",
	}
	for in, want := range tests {
		if got := normalizeProtocol(in); got != want {
			t.Errorf("normalizeProtocol(%q) = %q, want %q", in, got, want)
		}
	}
}
