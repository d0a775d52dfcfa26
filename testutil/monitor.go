// Package testutil provides a fake OIC monitor service for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Call records one tool invocation the fake server received.
type Call struct {
	Tool string
	Args map[string]any
}

// MonitorServer is an httptest-backed stand-in for the monitor service.
// Tool results are scripted per tool name; unscripted tools answer with
// an empty object.
type MonitorServer struct {
	*httptest.Server

	mu      sync.Mutex
	results map[string]any
	errors  map[string]string
	calls   []Call
	healthy bool
}

// NewMonitorServer starts a fake monitor service. Callers own Close.
func NewMonitorServer() *MonitorServer {
	m := &MonitorServer{
		results: make(map[string]any),
		errors:  make(map[string]string),
		healthy: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", m.handleStream)
	mux.HandleFunc("/health", m.handleHealth)
	m.Server = httptest.NewServer(mux)
	return m
}

// ScriptResult sets the result payload a tool returns.
func (m *MonitorServer) ScriptResult(tool string, result any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[tool] = result
}

// ScriptError makes a tool answer with a JSON-RPC error.
func (m *MonitorServer) ScriptError(tool, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[tool] = message
}

// SetHealthy toggles the /health endpoint.
func (m *MonitorServer) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
}

// Calls returns the tool invocations received so far.
func (m *MonitorServer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MonitorServer) handleStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Tool: req.Params.Name, Args: req.Params.Arguments})
	msg, isErr := m.errors[req.Params.Name]
	result, ok := m.results[req.Params.Name]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if isErr {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32000, "message": msg},
		})
		return
	}
	if !ok {
		result = map[string]any{}
	}
	json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	})
}

func (m *MonitorServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	healthy := m.healthy
	m.mu.Unlock()

	if !healthy {
		http.Error(w, `{"status": "down"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "up"}`))
}
