package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"gridbench/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WriterAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Writer: &buf})

	l.Debug("hidden")
	l.Info("search finished", "nodes", 101)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["msg"] != "search finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["nodes"] != float64(101) {
		t.Errorf("nodes = %v", entry["nodes"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "text", Writer: &buf})

	l.Debug("expanding", "row", 3)

	if !strings.Contains(buf.String(), "row=3") {
		t.Errorf("expected text attr in %q", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LogConfig{Level: "warn", Format: "text", Output: "file", FilePath: "x.log", MaxSize: 5})

	if cfg.Level != "warn" || cfg.Format != "text" || cfg.Output != "file" || cfg.FilePath != "x.log" || cfg.MaxSize != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	t.Cleanup(func() { Log = slog.Default() })
	logPath := filepath.Join(t.TempDir(), "test.log")

	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})

	if Log == nil {
		t.Fatal("Log should not be nil")
	}
	Log.Info("test message")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Writer: &buf}).With("request_id", "req-1")

	ctx := NewContext(context.Background(), l)
	FromContext(ctx, nil).Info("hello", "scenario", 3)

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"scenario":3`) {
		t.Errorf("context attrs missing in %q", out)
	}

	if FromContext(context.Background(), nil) != Log {
		t.Error("expected global logger for bare context")
	}
	fallback := New(Config{Writer: &buf})
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger for bare context")
	}
	if FromContext(ctx, fallback) != l {
		t.Error("context logger must win over fallback")
	}
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Writer: &buf})

	WithSearch(WithScenario(base, 11, "Short Path"), "beam", 8).Info("done")

	out := buf.String()
	for _, want := range []string{`"index":11`, `"name":"Short Path"`, `"algorithm":"beam"`, `"beam_width":8`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}

func TestGlobalHelpers(t *testing.T) {
	var buf bytes.Buffer
	InitWithConfig(Config{Level: "info", Writer: &buf})
	t.Cleanup(func() { Log = slog.Default() })

	if WithService("search-svc") == nil {
		t.Error("WithService should return logger")
	}
	WithRunID(nil, "run-1").Info("started")
	if !strings.Contains(buf.String(), `"run_id":"run-1"`) {
		t.Errorf("run_id missing in %q", buf.String())
	}
	if WithScenario(nil, 1, "x") == nil || WithSearch(nil, "astar", 0) == nil {
		t.Error("nil base should fall back to global logger")
	}

	Info("info message", "key", "value")
	Warn("warn message", "key", "value")
	Error("error message", "key", "value")
}
