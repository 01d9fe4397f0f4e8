package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

func TestFlagOptionLines(t *testing.T) {
	var level int
	var config, endpoint string

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(&level, "v", 1, "Verbosity")
	fs.IntVar(&level, "verbosity", 1, "Verbosity")
	fs.StringVar(&config, "c", "", "Config path")
	fs.StringVar(&config, "config", "", "Config path")
	fs.StringVar(&endpoint, "endpoint", "", "Listen endpoint")

	lines := flagOptionLines(fs, 2)
	if len(lines) != 3 {
		t.Fatalf("expected 3 deduplicated options, got %d: %q", len(lines), lines)
	}

	expected := []string{
		"      --endpoint   Listen endpoint",
		"  -c, --config     Config path",
		"  -v, --verbosity  Verbosity [default: 1]",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("line %d: expected %q, got %q", i, want, lines[i])
		}
	}
}

func TestPrintHelpMenu(t *testing.T) {
	cliOpts := DefineOptions()

	tests := []struct {
		name        string
		command     string
		contains    []string
		notContains []string
	}{
		{
			name:     "root",
			command:  RootCLICommand,
			contains: []string{"[subcommand]", "collect", "version", "Signals:"},
		},
		{
			name:        "collect",
			command:     "collect",
			contains:    []string{"Description:", "syslog endpoint"},
			notContains: []string{"Signals:", "[subcommand]"},
		},
		{
			name:     "unknown",
			command:  "bogus",
			contains: []string{"Unknown command: bogus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			fs := flag.NewFlagSet(tt.command, flag.ContinueOnError)
			PrintHelpMenu(&out, fs, tt.command, cliOpts)

			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected help output to contain %q, got:\n%s", want, out.String())
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(out.String(), unwanted) {
					t.Errorf("expected help output to not contain %q, got:\n%s", unwanted, out.String())
				}
			}
		})
	}
}
