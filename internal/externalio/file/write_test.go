package file

import (
	"bufio"
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"syslogcollector/internal/flows"
	"testing"
	"time"
)

func testFlow(port uint16, end time.Time) (flow flows.Flow) {
	flow = flows.Flow{
		Key: flows.Key{
			Proto: "udp",
			Src:   netip.AddrPortFrom(netip.MustParseAddr("10.1.1.1"), port),
			Dst:   netip.MustParseAddrPort("10.1.1.2:53"),
		},
		Exporter:  "fw01",
		Format:    flows.FormatKV,
		Records:   1,
		FirstSeen: end.Add(-time.Second),
		LastSeen:  end,
		EndReason: flows.ExpireIdle,
	}
	return
}

func readLines(t *testing.T, path string) (lines []string) {
	t.Helper()
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer fh.Close()
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return
}

func TestNewOutputEmptyPath(t *testing.T) {
	mod, err := NewOutput("")
	if err != nil || mod != nil {
		t.Fatalf("expected nil module and nil error, got %v, %v", mod, err)
	}

	// Nil module is a no-op everywhere
	n, err := mod.Write(context.Background(), flows.Flow{})
	if n != 0 || err != nil {
		t.Errorf("expected no-op write, got %d, %v", n, err)
	}
	if err := mod.Shutdown(); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestWriteBatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.json")
	mod, err := NewOutput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < batchSize-1; i++ {
		n, err := mod.Write(context.Background(), testFlow(uint16(1000+i), base.Add(time.Duration(i)*time.Second)))
		if err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
		if n != 0 {
			t.Fatalf("expected buffered write, got %d lines written", n)
		}
	}
	if mod.Pending() != batchSize-1 {
		t.Fatalf("expected %d pending lines, got %d", batchSize-1, mod.Pending())
	}
	if lines := readLines(t, path); len(lines) != 0 {
		t.Fatalf("expected nothing on disk before batch fills, got %d lines", len(lines))
	}

	n, err := mod.Write(context.Background(), testFlow(2000, base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != batchSize {
		t.Errorf("expected %d lines written on full batch, got %d", batchSize, n)
	}
	if mod.Pending() != 0 {
		t.Errorf("expected empty buffer after flush, got %d", mod.Pending())
	}

	lines := readLines(t, path)
	if len(lines) != batchSize {
		t.Fatalf("expected %d lines, got %d", batchSize, len(lines))
	}
	if !strings.Contains(lines[0], `"src_port":1000`) {
		t.Errorf("expected oldest flow first, got %s", lines[0])
	}
	if err := mod.Shutdown(); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestFlushOrdersByEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.json")
	mod, err := NewOutput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Now()
	mod.Write(context.Background(), testFlow(3, base.Add(3*time.Second)))
	mod.Write(context.Background(), testFlow(1, base.Add(1*time.Second)))
	mod.Write(context.Background(), testFlow(2, base.Add(2*time.Second)))

	// Shutdown flushes remaining lines
	if err := mod.Shutdown(); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{`"src_port":1,`, `"src_port":2,`, `"src_port":3,`} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %s in %s", i, want, lines[i])
		}
	}
}
