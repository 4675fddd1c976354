// Package fake provides an in-memory lens controller for tests.
//
// FakeLens answers the same named commands as the real controller, keeps a
// position per axis and supports per-method fault injection.
package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BobDeng1974/DNNCam/internal/backend"
)

// Call is one recorded backend invocation.
type Call struct {
	Method string
	Args   []int
}

// FakeLens implements lens.Caller.
type FakeLens struct {
	mu        sync.Mutex
	positions map[string]int
	faults    map[string]error
	calls     []Call
}

// NewFakeLens creates a lens with every axis at position 0.
func NewFakeLens() *FakeLens {
	return &FakeLens{
		positions: map[string]int{"focus": 0, "zoom": 0, "iris": 0},
		faults:    make(map[string]error),
	}
}

// Call executes a named lens command.
func (f *FakeLens) Call(ctx context.Context, method string, args ...int) (int, error) {
	select {
	case <-ctx.Done():
		return 0, backend.NormalizeCallError(method, ctx.Err())
	default:
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Method: method, Args: append([]int(nil), args...)})

	if code, ok := f.faults[method]; ok {
		return 0, &backend.CallError{
			Code:     code,
			Method:   method,
			Original: fmt.Errorf("simulated %v for %s", code, method),
		}
	}

	axis, action, ok := strings.Cut(method, "_")
	if _, known := f.positions[axis]; !ok || !known {
		return 0, unknownMethod(method)
	}

	switch action {
	case "home":
		f.positions[axis] = 0
		return 0, nil
	case "absolute":
		if len(args) != 1 {
			return 0, badArgs(method, args)
		}
		f.positions[axis] = args[0]
		return 0, nil
	case "relative":
		if len(args) != 1 {
			return 0, badArgs(method, args)
		}
		f.positions[axis] += args[0]
		return 0, nil
	case "get_location":
		return f.positions[axis], nil
	default:
		return 0, unknownMethod(method)
	}
}

// SetFault makes every call to method fail with code until cleared.
func (f *FakeLens) SetFault(method string, code error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[method] = code
}

// ClearFaults removes all injected faults.
func (f *FakeLens) ClearFaults() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[string]error)
}

// SetPosition sets the position of an axis (focus, zoom or iris).
func (f *FakeLens) SetPosition(axis string, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions[axis] = value
}

// Position returns the position of an axis.
func (f *FakeLens) Position(axis string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.positions[axis]
}

// Calls returns a copy of the recorded calls.
func (f *FakeLens) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// ResetCalls clears the call record.
func (f *FakeLens) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func unknownMethod(method string) error {
	return &backend.CallError{
		Code:     backend.ErrFault,
		Method:   method,
		Original: fmt.Errorf("method %s not found", method),
	}
}

func badArgs(method string, args []int) error {
	return &backend.CallError{
		Code:     backend.ErrFault,
		Method:   method,
		Original: fmt.Errorf("expected 1 argument, got %d", len(args)),
	}
}
