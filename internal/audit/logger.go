package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/BobDeng1974/DNNCam/internal/backend"
)

// Actions recorded in the trail.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	RequestID string    `json:"requestId,omitempty"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Address   int       `json:"address"`
	Name      string    `json:"name,omitempty"`
	Value     int       `json:"value"`
	Outcome   string    `json:"outcome"`
	Code      string    `json:"code"`
}

// Rotation bounds the size and age of the audit file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger appends audit entries to <dir>/audit.jsonl.
type Logger struct {
	mu       sync.Mutex
	filePath string
	out      *lumberjack.Logger
}

// NewLogger creates the audit directory and file.
func NewLogger(logDir string, rotation Rotation) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(logDir, "audit.jsonl")

	// Create the file up front so permission problems surface at startup.
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	_ = f.Close()

	return &Logger{
		filePath: filePath,
		out: &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
		},
	}, nil
}

// LogAccess records one register access. err is the outcome of the access.
func (l *Logger) LogAccess(ctx context.Context, action string, address int, name string, value int, err error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = "unknown"
	}
	requestID, _ := RequestIDFromContext(ctx)

	outcome := "SUCCESS"
	if err != nil {
		outcome = "ERROR"
	}

	l.writeEntry(Entry{
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Actor:     actor,
		Action:    action,
		Address:   address,
		Name:      name,
		Value:     value,
		Outcome:   outcome,
		Code:      codeFromError(err),
	})
}

func (l *Logger) writeEntry(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal audit entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit entry: %v\n", err)
	}
}

// codeFromError maps an access error to its normalized code.
func codeFromError(err error) string {
	switch {
	case err == nil:
		return "SUCCESS"
	case errors.Is(err, backend.ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, backend.ErrFault):
		return "FAULT"
	case errors.Is(err, backend.ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "ERROR"
	}
}

// FilePath returns the path of the active audit file.
func (l *Logger) FilePath() string {
	return l.filePath
}

// Rotate moves the current file aside with a timestamp suffix and starts a
// new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Rotate()
}

// Close closes the audit file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
