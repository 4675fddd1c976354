package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/audit"
	"github.com/BobDeng1974/DNNCam/internal/auth"
	"github.com/BobDeng1974/DNNCam/internal/logging"
)

// RegisterInfo describes one mapped address in listings.
type RegisterInfo struct {
	Address    int    `json:"address"`
	Name       string `json:"name"`
	Capability string `json:"capability"`
	Value      *int   `json:"value,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RegisterRoutes registers all v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"
	m := s.authMiddleware

	// Health endpoint (no auth required)
	mux.HandleFunc("GET "+apiV1+"/health", s.handleHealth)

	mux.HandleFunc("GET "+apiV1+"/registers", m.RequireAuth(m.RequireScope(auth.ScopeRead)(s.handleListRegisters)))
	mux.HandleFunc("GET "+apiV1+"/registers/{address}", m.RequireAuth(m.RequireScope(auth.ScopeRead)(s.handleGetRegister)))
	mux.HandleFunc("PUT "+apiV1+"/registers/{address}", m.RequireAuth(m.RequireScope(auth.ScopeControl)(s.handleSetRegister)))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, uuid.NewString(), map[string]interface{}{
		"status":     "ok",
		"uptimeSec":  int(time.Since(s.startTime).Seconds()),
		"backendUrl": s.backendURL,
	})
}

// handleListRegisters handles GET /registers
func (s *Server) handleListRegisters(w http.ResponseWriter, r *http.Request) {
	r, id := s.requestScope(r)

	addresses := s.table.Addresses()
	list := make([]RegisterInfo, 0, len(addresses))
	for _, addr := range addresses {
		d, _ := s.table.Lookup(addr)
		info := RegisterInfo{Address: addr, Name: d.Name, Capability: d.Capability.String()}
		if d.Capability.CanRead() {
			v, err := s.store.GetValue(r.Context(), addr)
			if err != nil {
				_, code, _ := toAPIError(err)
				info.Error = code
			} else {
				info.Value = &v
			}
		}
		list = append(list, info)
	}

	WriteSuccess(w, id, list)
}

// handleGetRegister handles GET /registers/{address}
func (s *Server) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	r, id := s.requestScope(r)

	addr, ok := s.parseAddress(w, r, id)
	if !ok {
		return
	}

	v, err := s.store.GetValue(r.Context(), addr)
	if err != nil {
		s.writeStoreError(w, r, id, err)
		return
	}

	WriteSuccess(w, id, map[string]interface{}{"address": addr, "value": v})
}

// handleSetRegister handles PUT /registers/{address}
func (s *Server) handleSetRegister(w http.ResponseWriter, r *http.Request) {
	r, id := s.requestScope(r)

	addr, ok := s.parseAddress(w, r, id)
	if !ok {
		return
	}

	// Parse request (strict JSON)
	var req struct {
		Value *int `json:"value"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.Value == nil {
		WriteError(w, id, http.StatusBadRequest, CodeBadRequest, "Body must be {\"value\": <integer>}")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteError(w, id, http.StatusBadRequest, CodeBadRequest, "Trailing data after JSON object")
		return
	}

	if err := s.store.SetValue(r.Context(), addr, *req.Value); err != nil {
		s.writeStoreError(w, r, id, err)
		return
	}

	WriteSuccess(w, id, map[string]interface{}{"address": addr, "value": *req.Value})
}

// parseAddress reads and validates the {address} path segment.
func (s *Server) parseAddress(w http.ResponseWriter, r *http.Request, id string) (int, bool) {
	addr, err := strconv.Atoi(r.PathValue("address"))
	if err != nil {
		WriteError(w, id, http.StatusBadRequest, CodeBadRequest, "Address must be an integer")
		return 0, false
	}
	if !s.store.Validate(addr, 1) {
		WriteError(w, id, http.StatusBadRequest, CodeInvalidRange, "Address outside the register range")
		return 0, false
	}
	return addr, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, id string, err error) {
	status, code, message := toAPIError(err)
	logging.WithContext(r.Context(), s.logger).Warn("register request failed",
		zap.String("path", r.URL.Path),
		zap.String("code", code),
		zap.Error(err))
	WriteError(w, id, status, code, message)
}

// requestScope stamps a correlation ID and the caller identity into the
// request context.
func (s *Server) requestScope(r *http.Request) (*http.Request, string) {
	id := uuid.NewString()
	actor := r.RemoteAddr
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.Subject != "anonymous" {
		actor = claims.Subject
	}
	ctx := audit.WithActor(audit.WithRequestID(r.Context(), id), actor)
	return r.WithContext(ctx), id
}
