package main

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	mb "github.com/simonvetter/modbus"

	"github.com/BobDeng1974/DNNCam/internal/backend"
	"github.com/BobDeng1974/DNNCam/internal/backend/fake"
	"github.com/BobDeng1974/DNNCam/internal/lens"
	"github.com/BobDeng1974/DNNCam/internal/modbus"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

type gatewayEnv struct {
	url  string
	lens *fake.FakeLens
}

func startGateway(t *testing.T) *gatewayEnv {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	url := fmt.Sprintf("tcp://%s", l.Addr())
	l.Close()

	lensFake := fake.NewFakeLens()
	table, err := lens.NewReferenceTable(lensFake)
	if err != nil {
		t.Fatalf("NewReferenceTable() failed: %v", err)
	}
	store, err := registers.NewStore(table, nil)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	srv, err := modbus.NewServer(modbus.Options{URL: url, Timeout: 5 * time.Second, MaxClients: 4}, modbus.NewHandler(store, nil), nil)
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })

	return &gatewayEnv{url: url, lens: lensFake}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusPlainOutput(t *testing.T) {
	env := startGateway(t)
	env.lens.SetPosition("focus", 812)
	env.lens.SetPosition("zoom", -40)

	out, err := runCommand(t, "--url", env.url, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(lens.ReferenceBindings()) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(lens.ReferenceBindings()), len(lines), out)
	}
	for _, want := range []string{
		fmt.Sprintf("%40s --> %d", "Focus Location", 812),
		fmt.Sprintf("%40s --> %d", "Zoom Location", -40),
		fmt.Sprintf("%40s --> %d", "Iris Home", 0),
	} {
		if !strings.Contains(out, want+"\n") {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusReportsFailingRegister(t *testing.T) {
	env := startGateway(t)
	env.lens.SetFault("iris_get_location", backend.ErrUnavailable)

	out, err := runCommand(t, "--url", env.url, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, fmt.Sprintf("%40s --> error:", "Iris Location")) {
		t.Errorf("failing register not reported:\n%s", out)
	}
	if !strings.Contains(out, fmt.Sprintf("%40s --> %d", "Focus Location", 0)) {
		t.Errorf("healthy registers missing:\n%s", out)
	}
}

func TestReadCommand(t *testing.T) {
	env := startGateway(t)
	env.lens.SetPosition("zoom", 3)

	out, err := runCommand(t, "--url", env.url, "read", "12", "3")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := fmt.Sprintf("%40s --> 0\n%40s --> 3\n%40s --> 14\n", "Zoom Relative", "Zoom Location", "Register 14")
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestReadOutOfRange(t *testing.T) {
	env := startGateway(t)

	_, err := runCommand(t, "--url", env.url, "read", "23", "2")
	if !errors.Is(err, mb.ErrIllegalDataAddress) {
		t.Errorf("error = %v, want %v", err, mb.ErrIllegalDataAddress)
	}
}

func TestWriteCommand(t *testing.T) {
	env := startGateway(t)
	env.lens.SetPosition("focus", 100)

	out, err := runCommand(t, "--url", env.url, "write", "2", "-25")
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if strings.TrimSpace(out) != "Focus Relative <-- -25" {
		t.Errorf("output = %q", out)
	}
	if got := env.lens.Position("focus"); got != 75 {
		t.Errorf("focus position = %d, want 75", got)
	}
}

func TestArgumentValidation(t *testing.T) {
	tests := [][]string{
		{"read"},
		{"read", "x"},
		{"read", "1", "0"},
		{"read", "70000"},
		{"write", "1"},
		{"write", "1", "70000"},
		{"write", "1", "-40000"},
		{"status", "extra"},
	}
	for _, args := range tests {
		if _, err := runCommand(t, append([]string{"--url", "tcp://127.0.0.1:1"}, args...)...); err == nil {
			t.Errorf("lensctl %v succeeded, want error", args)
		}
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderRows(&buf, []row{
		{Address: 3, Name: "Focus Location", Value: 512},
		{Address: 23, Name: "Iris Location", Err: errors.New("device failure")},
	}, true)

	out := buf.String()
	for _, want := range []string{"Address", "Register", "Focus Location", "512", "error: device failure"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ADDRESS") {
		t.Errorf("header was upper-cased:\n%s", out)
	}
}

func TestIsTerminalNonFile(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("buffer reported as terminal")
	}
}
