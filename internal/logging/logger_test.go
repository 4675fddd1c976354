package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BobDeng1974/DNNCam/internal/audit"
	"github.com/BobDeng1974/DNNCam/internal/config"
	"github.com/BobDeng1974/DNNCam/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Level: "trace"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "lensgw.log")

	logger, err := logging.New(logging.Options{Level: "info", Format: "console", File: logPath, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("filtered out")
	logger.Info("register read", zap.Int(logging.FieldAddress, 13))
	logger.Sync() //nolint:errcheck // ignore sync errors on stdout

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line above debug level, got %d: %q", len(lines), content)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	if entry["msg"] != "register read" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry[logging.FieldAddress] != float64(13) {
		t.Errorf("address = %v, want 13", entry[logging.FieldAddress])
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "lensgw.log")

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("started")
	logger.Sync() //nolint:errcheck

	if _, err := os.Stat(cfg.Logging.File); err != nil {
		t.Errorf("log file not created: %v", err)
	}

	if _, err := logging.NewFromConfig(nil); err != nil {
		t.Errorf("NewFromConfig(nil) returned error: %v", err)
	}
}

func TestWithContextAddsRequestFields(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := audit.WithRequestID(audit.WithActor(context.Background(), "192.168.1.20:40112"), "req-7")
	logging.WithContext(ctx, base).Info("write")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields[logging.FieldRequestID] != "req-7" {
		t.Errorf("request_id = %v", fields[logging.FieldRequestID])
	}
	if fields[logging.FieldActor] != "192.168.1.20:40112" {
		t.Errorf("actor = %v", fields[logging.FieldActor])
	}
}

func TestWithContextWithoutFields(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	base := zap.New(core)

	if got := logging.WithContext(context.Background(), base); got != base {
		t.Error("expected the same logger when ctx carries no fields")
	}
	logging.WithContext(context.Background(), nil).Info("dropped")
	if observed.Len() != 0 {
		t.Errorf("expected no entries, got %d", observed.Len())
	}
}
