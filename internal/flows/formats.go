package flows

import (
	"bytes"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
	jsoniter "github.com/json-iterator/go"
)

const (
	FormatEVE = "eve"
	FormatKV  = "kv"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IANA protocol numbers seen in firewall logs
var protocolNames = map[int]string{
	1:   "icmp",
	2:   "igmp",
	6:   "tcp",
	17:  "udp",
	47:  "gre",
	50:  "esp",
	51:  "ah",
	58:  "ipv6-icmp",
	132: "sctp",
}

// Accepts protocol as a JSON string ("TCP") or number (6)
type protocolField string

func (proto *protocolField) UnmarshalJSON(data []byte) (err error) {
	if len(data) > 0 && data[0] == '"' {
		var name string
		err = json.Unmarshal(data, &name)
		if err != nil {
			return
		}
		*proto = protocolField(normalizeProtocol(name))
		return
	}
	var number int
	err = json.Unmarshal(data, &number)
	if err != nil {
		err = fmt.Errorf("protocol is neither name nor number: %w", err)
		return
	}
	*proto = protocolField(normalizeProtocol(strconv.Itoa(number)))
	return
}

func normalizeProtocol(raw string) (proto string) {
	raw = strings.TrimSpace(raw)
	if number, err := strconv.Atoi(raw); err == nil {
		if name, known := protocolNames[number]; known {
			proto = name
			return
		}
	}
	proto = strings.ToLower(raw)
	return
}

// Suricata writes "2006-01-02T15:04:05.000000-0700", other emitters RFC3339
var eveTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999-0700",
	time.RFC3339Nano,
}

// EVE timestamp. Unparseable values decode as zero instead of rejecting the event.
type eveTime struct {
	time.Time
}

func (ts *eveTime) UnmarshalJSON(data []byte) (err error) {
	var raw string
	if json.Unmarshal(data, &raw) != nil {
		return
	}
	for _, layout := range eveTimeLayouts {
		parsed, parseErr := time.Parse(layout, raw)
		if parseErr == nil {
			ts.Time = parsed
			return
		}
	}
	return
}

// Suricata EVE event subset
type eveEvent struct {
	EventType string        `json:"event_type"`
	SrcIP     string        `json:"src_ip"`
	DestIP    string        `json:"dest_ip"`
	SrcPort   uint16        `json:"src_port"`
	DestPort  uint16        `json:"dest_port"`
	Proto     protocolField `json:"proto"`
	AppProto  string        `json:"app_proto"`
	Flow      *struct {
		PktsToServer  uint64  `json:"pkts_toserver"`
		PktsToClient  uint64  `json:"pkts_toclient"`
		BytesToServer uint64  `json:"bytes_toserver"`
		BytesToClient uint64  `json:"bytes_toclient"`
		Start         eveTime `json:"start"`
		End           eveTime `json:"end"`
	} `json:"flow"`
	Netflow *struct {
		Pkts  uint64 `json:"pkts"`
		Bytes uint64 `json:"bytes"`
	} `json:"netflow"`
	Alert *struct {
		Action string `json:"action"`
	} `json:"alert"`
}

var eveFlowEvents = map[string]bool{
	"flow":    true,
	"netflow": true,
	"alert":   true,
}

// Decodes one EVE object or an array of them. ok is false if body is not EVE JSON.
func decodeEVE(body []byte) (records []Record, ok bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return
	}

	var events []eveEvent
	switch body[0] {
	case '{':
		var event eveEvent
		if json.Unmarshal(body, &event) != nil {
			return
		}
		events = []eveEvent{event}
	case '[':
		if json.Unmarshal(body, &events) != nil {
			return
		}
	default:
		return
	}
	ok = true

	for _, event := range events {
		if !eveFlowEvents[event.EventType] {
			continue
		}
		src, err := netip.ParseAddr(event.SrcIP)
		if err != nil {
			continue
		}
		dst, err := netip.ParseAddr(event.DestIP)
		if err != nil {
			continue
		}

		record := Record{
			Key: Key{
				Proto: string(event.Proto),
				Src:   netip.AddrPortFrom(src.Unmap(), event.SrcPort),
				Dst:   netip.AddrPortFrom(dst.Unmap(), event.DestPort),
			},
			Format: FormatEVE,
			App:    event.AppProto,
		}
		if event.Flow != nil {
			record.PacketsOut = event.Flow.PktsToServer
			record.PacketsIn = event.Flow.PktsToClient
			record.BytesOut = event.Flow.BytesToServer
			record.BytesIn = event.Flow.BytesToClient
			record.Start = event.Flow.Start.Time
			record.End = event.Flow.End.Time
		}
		if event.Netflow != nil {
			record.PacketsOut += event.Netflow.Pkts
			record.BytesOut += event.Netflow.Bytes
		}
		if event.Alert != nil {
			record.Action = event.Alert.Action
		}
		records = append(records, record)
	}
	return
}

// Field aliases across firewall vendors, first match wins
var (
	kvSrcAddr    = []string{"srcip", "src", "src_ip"}
	kvDstAddr    = []string{"dstip", "dst", "dst_ip"}
	kvSrcPort    = []string{"srcport", "spt", "src_port"}
	kvDstPort    = []string{"dstport", "dpt", "dst_port"}
	kvProto      = []string{"proto", "protocol"}
	kvBytesOut   = []string{"sentbyte", "bytes_sent", "sent_bytes"}
	kvBytesIn    = []string{"rcvdbyte", "bytes_recv", "rcvd_bytes"}
	kvPacketsOut = []string{"sentpkt", "packets_sent"}
	kvPacketsIn  = []string{"rcvdpkt", "packets_recv"}
	kvApp        = []string{"app", "service"}
	kvAction     = []string{"action"}
)

// Decodes a key=value firewall record. ok is false unless both addresses are present.
func decodeKV(body []byte) (record Record, ok bool) {
	fields := make(map[string]string)

	decoder := logfmt.NewDecoder(bytes.NewReader(body))
	for decoder.ScanRecord() {
		for decoder.ScanKeyval() {
			key := strings.ToLower(string(decoder.Key()))
			if _, seen := fields[key]; !seen {
				fields[key] = string(decoder.Value())
			}
		}
	}
	if decoder.Err() != nil {
		return
	}

	lookup := func(aliases []string) (value string) {
		for _, alias := range aliases {
			if v, found := fields[alias]; found && v != "" {
				value = v
				return
			}
		}
		return
	}
	number := func(aliases []string) (value uint64) {
		value, _ = strconv.ParseUint(lookup(aliases), 10, 64)
		return
	}

	src, err := netip.ParseAddr(lookup(kvSrcAddr))
	if err != nil {
		return
	}
	dst, err := netip.ParseAddr(lookup(kvDstAddr))
	if err != nil {
		return
	}
	srcPort, _ := strconv.ParseUint(lookup(kvSrcPort), 10, 16)
	dstPort, _ := strconv.ParseUint(lookup(kvDstPort), 10, 16)

	record = Record{
		Key: Key{
			Proto: normalizeProtocol(lookup(kvProto)),
			Src:   netip.AddrPortFrom(src.Unmap(), uint16(srcPort)),
			Dst:   netip.AddrPortFrom(dst.Unmap(), uint16(dstPort)),
		},
		Format:     FormatKV,
		App:        lookup(kvApp),
		Action:     lookup(kvAction),
		BytesOut:   number(kvBytesOut),
		BytesIn:    number(kvBytesIn),
		PacketsOut: number(kvPacketsOut),
		PacketsIn:  number(kvPacketsIn),
	}
	ok = true
	return
}
