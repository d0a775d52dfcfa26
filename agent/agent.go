package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/internal/history"
	"github.com/nareshsaladi2024/OICAgentOps/internal/metrics"
	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/stages"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Version is the fleet version advertised on agent cards.
const Version = "1.0.0"

// RunRequest is the body of POST /run. All fields are optional: a stage
// resolves what it needs from the correlation store.
type RunRequest struct {
	InstanceIDs []string       `json:"instanceIds,omitempty"`
	JobID       string         `json:"jobId,omitempty"`
	Overrides   map[string]any `json:"overrides,omitempty"`
}

// Agent serves one workflow stage over HTTP.
type Agent struct {
	name    string
	stage   string
	card    Card
	service *stages.Service
	client  *mcp.Client
	metrics *metrics.Collector
	history *history.Recorder
	logger  *zap.Logger
}

// NewAgent creates an agent for one stage. metrics and history may be nil.
func NewAgent(name, stage string, card Card, service *stages.Service, client *mcp.Client,
	collector *metrics.Collector, recorder *history.Recorder, logger *zap.Logger) *Agent {
	return &Agent{
		name:    name,
		stage:   stage,
		card:    card,
		service: service,
		client:  client,
		metrics: collector,
		history: recorder,
		logger:  logger.With(zap.String("agent", name)),
	}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Card returns the agent's discovery card.
func (a *Agent) Card() Card { return a.card }

// Handler builds the agent's HTTP routes.
func (a *Agent) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CardPath, a.handleCard)
	mux.HandleFunc("/health", a.handleHealth)
	mux.HandleFunc("/run", a.instrument("/run", a.handleRun))
	return mux
}

func (a *Agent) handleCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.card)
}

// handleHealth reports the agent's own liveness plus the upstream monitor
// service reachability.
func (a *Agent) handleHealth(w http.ResponseWriter, r *http.Request) {
	upstream := a.client.Health(r.Context())
	status := http.StatusOK
	if upstream.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"agent":    a.name,
		"stage":    a.stage,
		"status":   "up",
		"upstream": upstream,
	})
}

func (a *Agent) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req RunRequest
	// An empty body is a valid request: everything is resolved from the
	// store.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result := a.run(r.Context(), req)
	writeJSON(w, resultStatus(result), result)
}

// run executes the agent's stage and records metrics and history.
func (a *Agent) run(ctx context.Context, req RunRequest) *types.StageResult {
	start := time.Now()
	result := a.service.Run(ctx, a.stage, stages.Params{
		InstanceIDs: req.InstanceIDs,
		JobID:       req.JobID,
		Overrides:   req.Overrides,
	})
	elapsed := time.Since(start)

	status := "ok"
	if !result.OK {
		status = "failed"
	}
	if a.metrics != nil {
		a.metrics.RecordStageRun(result.Stage, status, elapsed)
	}
	if a.history != nil {
		a.history.Record(result, elapsed)
	}

	return result
}

// instrument wraps a handler with HTTP request metrics.
func (a *Agent) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		if a.metrics != nil {
			a.metrics.RecordHTTPRequest(a.name, path, sw.status, time.Since(start))
		}
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// resultStatus maps a stage result to an HTTP status. Domain errors are
// the caller's problem, everything else is upstream trouble.
func resultStatus(result *types.StageResult) int {
	if result.OK {
		return http.StatusOK
	}
	if result.Error != nil && result.Error.Code == types.ErrDomain {
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
