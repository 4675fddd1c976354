package backend

import (
	"context"
	"errors"
	"fmt"
	"net/rpc"
	"strings"
)

// Normalized backend failure codes.
var (
	ErrUnavailable = errors.New("UNAVAILABLE")
	ErrTimeout     = errors.New("TIMEOUT")
	ErrFault       = errors.New("FAULT")
)

// CallError wraps a failed backend call with its normalized code. The
// original error is kept for diagnostics.
type CallError struct {
	Code     error
	Method   string
	Original error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v (backend: %v)", e.Method, e.Code, e.Original)
}

func (e *CallError) Unwrap() error {
	return e.Code
}

// NormalizeCallError classifies err into a *CallError. Deadline and
// cancellation map to TIMEOUT and XML-RPC faults map to FAULT. Anything else,
// including refused connections and non-2xx responses (which the XML-RPC
// codec reports as "request error" server errors), maps to UNAVAILABLE.
func NormalizeCallError(method string, err error) error {
	if err == nil {
		return nil
	}

	var existing *CallError
	if errors.As(err, &existing) {
		return existing
	}

	return &CallError{
		Code:     classify(err),
		Method:   method,
		Original: err,
	}
}

func classify(err error) error {
	var serverErr rpc.ServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	case errors.As(err, &serverErr) && !strings.HasPrefix(string(serverErr), "request error"):
		return ErrFault
	default:
		return ErrUnavailable
	}
}
