package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/auth"
	"github.com/BobDeng1974/DNNCam/internal/backend"
	"github.com/BobDeng1974/DNNCam/internal/backend/fake"
	"github.com/BobDeng1974/DNNCam/internal/lens"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

const testSecret = "maintenance-secret"

type envelope struct {
	Result        string          `json:"result"`
	Data          json.RawMessage `json:"data"`
	Code          string          `json:"code"`
	Message       string          `json:"message"`
	CorrelationID string          `json:"correlationId"`
}

type testEnv struct {
	server *httptest.Server
	lens   *fake.FakeLens
}

func setupTestServer(t *testing.T, secret string) *testEnv {
	t.Helper()

	lensFake := fake.NewFakeLens()
	table, err := lens.NewReferenceTable(lensFake)
	if err != nil {
		t.Fatalf("NewReferenceTable() failed: %v", err)
	}
	store, err := registers.NewStore(table, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	var verifier *auth.Verifier
	if secret != "" {
		verifier, err = auth.NewVerifier(secret)
		if err != nil {
			t.Fatalf("NewVerifier() failed: %v", err)
		}
	}

	s := NewServer(store, table, auth.NewMiddleware(verifier), "http://lens:7001/RPC2", nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, lens: lensFake}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if env.CorrelationID == "" {
		t.Error("correlationId missing")
	}
	return resp.StatusCode, env
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	tok, err := auth.IssueToken(testSecret, "operator", scopes, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}
	return tok
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t, testSecret)

	status, resp := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	if status != http.StatusOK || resp.Result != "ok" {
		t.Fatalf("health = %d %s", status, resp.Result)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if data["status"] != "ok" || data["backendUrl"] != "http://lens:7001/RPC2" {
		t.Errorf("unexpected health data: %v", data)
	}
}

func TestListRegisters(t *testing.T) {
	env := setupTestServer(t, "")
	env.lens.SetPosition("focus", 410)
	env.lens.SetFault("iris_get_location", backend.ErrUnavailable)

	status, resp := env.do(t, http.MethodGet, "/api/v1/registers", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var list []RegisterInfo
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list) != 12 {
		t.Fatalf("expected 12 registers, got %d", len(list))
	}

	focus := 410
	zoom := 0
	want := map[int]RegisterInfo{
		0:  {Address: 0, Name: "Focus Home", Capability: "write-only"},
		3:  {Address: 3, Name: "Focus Location", Capability: "read-only", Value: &focus},
		13: {Address: 13, Name: "Zoom Location", Capability: "read-only", Value: &zoom},
		23: {Address: 23, Name: "Iris Location", Capability: "read-only", Error: "UNAVAILABLE"},
	}
	for _, got := range list {
		if w, ok := want[got.Address]; ok {
			if diff := cmp.Diff(w, got); diff != "" {
				t.Errorf("register %d mismatch (-want +got):\n%s", got.Address, diff)
			}
		}
	}
}

func TestGetRegister(t *testing.T) {
	env := setupTestServer(t, "")
	env.lens.SetPosition("zoom", 88)

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
		wantValue  int
	}{
		{"/api/v1/registers/13", http.StatusOK, "", 88},
		{"/api/v1/registers/7", http.StatusOK, "", 7},
		{"/api/v1/registers/1", http.StatusOK, "", 0},
		{"/api/v1/registers/24", http.StatusBadRequest, CodeInvalidRange, 0},
		{"/api/v1/registers/-1", http.StatusBadRequest, CodeInvalidRange, 0},
		{"/api/v1/registers/zoom", http.StatusBadRequest, CodeBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, resp := env.do(t, http.MethodGet, tt.path, "", "")
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.wantCode != "" {
				return
			}
			var data struct {
				Value int `json:"value"`
			}
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				t.Fatalf("Failed to decode data: %v", err)
			}
			if data.Value != tt.wantValue {
				t.Errorf("value = %d, want %d", data.Value, tt.wantValue)
			}
		})
	}
}

func TestGetRegisterBackendDown(t *testing.T) {
	env := setupTestServer(t, "")
	env.lens.SetFault("focus_get_location", backend.ErrUnavailable)

	status, resp := env.do(t, http.MethodGet, "/api/v1/registers/3", "", "")
	if status != http.StatusServiceUnavailable || resp.Code != CodeUnavailable {
		t.Errorf("got %d %s, want 503 UNAVAILABLE", status, resp.Code)
	}
}

func TestSetRegister(t *testing.T) {
	env := setupTestServer(t, "")

	status, resp := env.do(t, http.MethodPut, "/api/v1/registers/21", "", `{"value": 1500}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", status, resp.Message)
	}
	if got := env.lens.Position("iris"); got != 1500 {
		t.Errorf("iris position = %d, want 1500", got)
	}

	bad := []struct {
		path string
		body string
		code string
	}{
		{"/api/v1/registers/21", `{"value": "high"}`, CodeBadRequest},
		{"/api/v1/registers/21", `{}`, CodeBadRequest},
		{"/api/v1/registers/21", `{"value": 1, "speed": 2}`, CodeBadRequest},
		{"/api/v1/registers/21", `{"value": 1} {"value": 2}`, CodeBadRequest},
		{"/api/v1/registers/30", `{"value": 1}`, CodeInvalidRange},
	}
	for _, tt := range bad {
		status, resp := env.do(t, http.MethodPut, tt.path, "", tt.body)
		if status != http.StatusBadRequest || resp.Code != tt.code {
			t.Errorf("PUT %s %s = %d %s, want 400 %s", tt.path, tt.body, status, resp.Code, tt.code)
		}
	}

	env.lens.SetFault("iris_absolute", backend.ErrFault)
	status, resp = env.do(t, http.MethodPut, "/api/v1/registers/21", "", `{"value": 5}`)
	if status != http.StatusServiceUnavailable || resp.Code != CodeUnavailable {
		t.Errorf("faulted write = %d %s, want 503 UNAVAILABLE", status, resp.Code)
	}
}

func TestAuthScopes(t *testing.T) {
	env := setupTestServer(t, testSecret)
	readTok := token(t, auth.ScopeRead)
	controlTok := token(t, auth.ScopeRead, auth.ScopeControl)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{"list without token", http.MethodGet, "/api/v1/registers", "", "", http.StatusUnauthorized},
		{"list with read", http.MethodGet, "/api/v1/registers", readTok, "", http.StatusOK},
		{"get with read", http.MethodGet, "/api/v1/registers/3", readTok, "", http.StatusOK},
		{"put with read", http.MethodPut, "/api/v1/registers/1", readTok, `{"value": 1}`, http.StatusForbidden},
		{"put with control", http.MethodPut, "/api/v1/registers/1", controlTok, `{"value": 1}`, http.StatusOK},
		{"bad token", http.MethodGet, "/api/v1/registers/3", "nope", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, tt.method, tt.path, tt.token, tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}
