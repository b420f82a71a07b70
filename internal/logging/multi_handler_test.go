package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// failingHandler accepts every record and fails to write it.
type failingHandler struct {
	err error
}

func (h failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

func TestMultiHandler_LevelsPerHandler(t *testing.T) {
	var terminal, file bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&terminal, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))

	logger.Debug("scanning marketplace", "dir", "/tmp/market")
	logger.Warn("plugin manifest missing", "plugin", "reviewer")

	if strings.Contains(terminal.String(), "scanning marketplace") {
		t.Errorf("terminal handler got a debug record: %q", terminal.String())
	}
	if !strings.Contains(terminal.String(), "plugin manifest missing") {
		t.Errorf("terminal handler missed the warning: %q", terminal.String())
	}

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("file handler got %d records, want 2: %q", len(lines), file.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("file record is not JSON: %v", err)
	}
	if rec["msg"] != "scanning marketplace" || rec["dir"] != "/tmp/market" {
		t.Errorf("file record = %v", rec)
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	warn := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	ctx := context.Background()

	tests := []struct {
		name     string
		handlers []slog.Handler
		level    slog.Level
		want     bool
	}{
		{"no handlers", nil, slog.LevelError, false},
		{"nil handlers ignored", []slog.Handler{nil}, slog.LevelError, false},
		{"below every handler", []slog.Handler{warn}, slog.LevelInfo, false},
		{"one handler accepts", []slog.Handler{warn, debug}, slog.LevelDebug, true},
		{"trace below debug", []slog.Handler{debug}, LevelTrace, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMultiHandler(tt.handlers...).Enabled(ctx, tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)).With("command", "install").WithGroup("plugin")

	logger.Info("installed", "name", "reviewer")

	for i, buf := range []*bytes.Buffer{&a, &b} {
		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("handler %d: record is not JSON: %v", i, err)
		}
		if rec["command"] != "install" {
			t.Errorf("handler %d: command = %v, want install", i, rec["command"])
		}
		group, ok := rec["plugin"].(map[string]any)
		if !ok || group["name"] != "reviewer" {
			t.Errorf("handler %d: plugin group = %v", i, rec["plugin"])
		}
	}
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	errDisk := errors.New("disk full")
	errPipe := errors.New("broken pipe")

	var out bytes.Buffer
	h := NewMultiHandler(
		failingHandler{err: errDisk},
		slog.NewTextHandler(&out, nil),
		failingHandler{err: errPipe},
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "hello", 0))
	if !errors.Is(err, errDisk) || !errors.Is(err, errPipe) {
		t.Errorf("Handle() error = %v, want both handler errors", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("healthy handler should still write after a failure: %q", out.String())
	}

	ok := NewMultiHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if err := ok.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "hello", 0)); err != nil {
		t.Errorf("Handle() error = %v, want nil", err)
	}
}
