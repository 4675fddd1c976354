package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/BobDeng1974/DNNCam/internal/backend"
)

func TestFakeLensMoves(t *testing.T) {
	f := NewFakeLens()
	ctx := context.Background()

	steps := []struct {
		method string
		args   []int
	}{
		{"focus_absolute", []int{500}},
		{"focus_relative", []int{-120}},
		{"zoom_absolute", []int{40}},
		{"zoom_home", nil},
	}
	for _, s := range steps {
		if _, err := f.Call(ctx, s.method, s.args...); err != nil {
			t.Fatalf("Call(%s) failed: %v", s.method, err)
		}
	}

	if got, _ := f.Call(ctx, "focus_get_location"); got != 380 {
		t.Errorf("focus location = %d, want 380", got)
	}
	if got, _ := f.Call(ctx, "zoom_get_location"); got != 0 {
		t.Errorf("zoom location = %d, want 0 after home", got)
	}
	if len(f.Calls()) != 6 {
		t.Errorf("recorded %d calls, want 6", len(f.Calls()))
	}
}

func TestFakeLensUnknownMethod(t *testing.T) {
	f := NewFakeLens()
	for _, m := range []string{"shutter_home", "focus_spin", "nounderscore"} {
		if _, err := f.Call(context.Background(), m); !errors.Is(err, backend.ErrFault) {
			t.Errorf("Call(%s) error = %v, want FAULT", m, err)
		}
	}
}

func TestFakeLensFaultInjection(t *testing.T) {
	f := NewFakeLens()
	f.SetFault("iris_get_location", backend.ErrUnavailable)

	if _, err := f.Call(context.Background(), "iris_get_location"); !errors.Is(err, backend.ErrUnavailable) {
		t.Fatalf("Call() error = %v, want UNAVAILABLE", err)
	}

	f.ClearFaults()
	f.SetPosition("iris", 12)
	got, err := f.Call(context.Background(), "iris_get_location")
	if err != nil || got != 12 {
		t.Errorf("Call() = %d, %v; want 12, nil", got, err)
	}
}

func TestFakeLensCanceledContext(t *testing.T) {
	f := NewFakeLens()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Call(ctx, "focus_home"); !errors.Is(err, backend.ErrTimeout) {
		t.Errorf("Call() error = %v, want TIMEOUT", err)
	}
	if len(f.Calls()) != 0 {
		t.Error("canceled call was recorded")
	}
}
