package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunHandler(t *testing.T) {
	t.Run("formats tab-separated fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(&runHandler{w: &buf, runID: "create-abc12345"})

		logger.Info("inheritance created", "id", 7, "tag", "estate")

		line := strings.TrimRight(buf.String(), "\n")
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			t.Fatalf("expected 6 tab-separated fields, got %d: %q", len(fields), line)
		}
		if fields[1] != "INFO" {
			t.Errorf("expected level INFO, got %q", fields[1])
		}
		if fields[2] != "create-abc12345" {
			t.Errorf("expected the run id, got %q", fields[2])
		}
		if fields[3] != "inheritance created" {
			t.Errorf("expected the message, got %q", fields[3])
		}
		if fields[4] != "id=7" || fields[5] != "tag=estate" {
			t.Errorf("unexpected attrs: %q %q", fields[4], fields[5])
		}
	})

	t.Run("with-attrs precede record attrs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(&runHandler{w: &buf, runID: "run"})

		logger.With("wallet", "0x01").Warn("index unreachable", "error", "timeout")

		line := strings.TrimRight(buf.String(), "\n")
		if !strings.Contains(line, "wallet=0x01\terror=timeout") {
			t.Errorf("expected preset attrs before record attrs: %q", line)
		}
	})
}

func TestNewLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(logDir, "owned-deadbeef")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("listing owned inheritances")
	if err := f.Close(); err != nil {
		t.Fatalf("closing log file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(logDir, "heirloom.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "owned-deadbeef\tlisting owned inheritances") {
		t.Errorf("unexpected log contents: %q", data)
	}
}
