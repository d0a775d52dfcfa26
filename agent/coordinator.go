package agent

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/internal/history"
	"github.com/nareshsaladi2024/OICAgentOps/internal/metrics"
	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/stages"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// PipelineResult is the coordinator's combined output: one entry per
// stage that ran, in order.
type PipelineResult struct {
	OK     bool                 `json:"ok"`
	Stages []*types.StageResult `json:"stages"`
}

// Coordinator chains discover, resubmit, and check-status into one
// recovery pipeline and aggregates the fleet's operational endpoints.
type Coordinator struct {
	card    Card
	service *stages.Service
	client  *mcp.Client
	peers   []Card
	metrics *metrics.Collector
	history *history.Recorder
	logger  *zap.Logger
}

// NewCoordinator creates the coordinator agent. peers are the cards of
// the stage agents it fronts.
func NewCoordinator(card Card, service *stages.Service, client *mcp.Client, peers []Card,
	collector *metrics.Collector, recorder *history.Recorder, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		card:    card,
		service: service,
		client:  client,
		peers:   peers,
		metrics: collector,
		history: recorder,
		logger:  logger.With(zap.String("agent", card.Name)),
	}
}

// Card returns the coordinator's discovery card.
func (c *Coordinator) Card() Card { return c.card }

// RunPipeline executes discover, then resubmit, then check-status. The
// pipeline stops at the first failed stage; discovering zero instances
// is a success that ends the run early, there is nothing to recover.
func (c *Coordinator) RunPipeline(ctx context.Context) *PipelineResult {
	result := &PipelineResult{OK: true}

	discover := c.runStage(ctx, types.StageDiscover, stages.Params{})
	result.Stages = append(result.Stages, discover)
	if !discover.OK {
		result.OK = false
		return result
	}
	if len(discover.InstanceIDs) == 0 {
		c.logger.Info("no errored instances, recovery pipeline done")
		return result
	}

	resubmit := c.runStage(ctx, types.StageResubmit, stages.Params{})
	result.Stages = append(result.Stages, resubmit)
	if !resubmit.OK {
		result.OK = false
		return result
	}

	check := c.runStage(ctx, types.StageCheckStatus, stages.Params{})
	result.Stages = append(result.Stages, check)
	if !check.OK {
		result.OK = false
	}
	return result
}

func (c *Coordinator) runStage(ctx context.Context, stage string, params stages.Params) *types.StageResult {
	start := time.Now()
	result := c.service.Run(ctx, stage, params)
	elapsed := time.Since(start)

	status := "ok"
	if !result.OK {
		status = "failed"
	}
	if c.metrics != nil {
		c.metrics.RecordStageRun(result.Stage, status, elapsed)
	}
	if c.history != nil {
		c.history.Record(result, elapsed)
	}
	return result
}

// Handler builds the coordinator's HTTP routes. The coordinator also
// hosts the fleet-wide /metrics and /history endpoints.
func (c *Coordinator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CardPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.card)
	})
	mux.HandleFunc("/agents", c.handleAgents)
	mux.HandleFunc("/health", c.handleHealth)
	mux.HandleFunc("/run", c.handleRun)
	mux.HandleFunc("/history", c.handleHistory)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleAgents lists the stage agents behind the coordinator.
func (c *Coordinator) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.peers)
}

func (c *Coordinator) handleHealth(w http.ResponseWriter, r *http.Request) {
	upstream := c.client.Health(r.Context())
	status := http.StatusOK
	if upstream.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"agent":    c.card.Name,
		"status":   "up",
		"upstream": upstream,
	})
}

func (c *Coordinator) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	result := c.RunPipeline(r.Context())
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadGateway
		if last := result.Stages[len(result.Stages)-1]; last.Error != nil && last.Error.Code == types.ErrDomain {
			status = http.StatusConflict
		}
	}
	writeJSON(w, status, result)
}

func (c *Coordinator) handleHistory(w http.ResponseWriter, r *http.Request) {
	if c.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history disabled"})
		return
	}
	runs, err := c.history.Recent(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
