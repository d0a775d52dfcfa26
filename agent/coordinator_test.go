package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/stages"
	"github.com/nareshsaladi2024/OICAgentOps/state"
	"github.com/nareshsaladi2024/OICAgentOps/testutil"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *testutil.MonitorServer) {
	t.Helper()

	monitor := testutil.NewMonitorServer()
	t.Cleanup(monitor.Close)

	client := mcp.NewClient(monitor.URL)
	service := stages.NewService(client, state.NewMemoryStore(), nil)

	card := Card{Name: "coordinator", URL: "http://localhost:0", Version: Version}
	peers := []Card{{Name: "monitor-errors"}, {Name: "resubmit-errors"}}
	return NewCoordinator(card, service, client, peers, nil, nil, zap.NewNop()), monitor
}

func TestPipelineFullRecovery(t *testing.T) {
	coord, monitor := newTestCoordinator(t)
	monitor.ScriptResult(mcp.ToolErroredInstances, map[string]any{
		"items": []map[string]string{{"id": "I1"}, {"id": "I2"}},
	})
	monitor.ScriptResult(mcp.ToolResubmitInstances, map[string]any{"jobId": "J9"})
	monitor.ScriptResult(mcp.ToolRecoveryJobDetails, map[string]any{"status": "RUNNING"})

	result := coord.RunPipeline(context.Background())

	require.True(t, result.OK)
	require.Len(t, result.Stages, 3)
	assert.Equal(t, types.StageDiscover, result.Stages[0].Stage)
	assert.Equal(t, types.StageResubmit, result.Stages[1].Stage)
	assert.Equal(t, types.StageCheckStatus, result.Stages[2].Stage)

	// The resubmission used the discovered instances and the status check
	// used the job the resubmission produced.
	calls := monitor.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []any{"I1", "I2"}, calls[1].Args["instanceIds"])
	assert.Equal(t, "J9", calls[2].Args["id"])
}

func TestPipelineStopsWhenNothingToRecover(t *testing.T) {
	coord, monitor := newTestCoordinator(t)
	monitor.ScriptResult(mcp.ToolErroredInstances, map[string]any{"items": []any{}})

	result := coord.RunPipeline(context.Background())

	require.True(t, result.OK)
	require.Len(t, result.Stages, 1)
	assert.Len(t, monitor.Calls(), 1)
}

func TestPipelineStopsOnStageFailure(t *testing.T) {
	coord, monitor := newTestCoordinator(t)
	monitor.ScriptResult(mcp.ToolErroredInstances, map[string]any{
		"items": []map[string]string{{"id": "I1"}},
	})
	monitor.ScriptError(mcp.ToolResubmitInstances, "resubmission rejected")

	result := coord.RunPipeline(context.Background())

	require.False(t, result.OK)
	require.Len(t, result.Stages, 2)
	assert.True(t, result.Stages[0].OK)
	assert.False(t, result.Stages[1].OK)
	assert.Len(t, monitor.Calls(), 2)
}

func TestCoordinatorHandlerAgentsAndMetrics(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	handler := coord.Handler()

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var peers []Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &peers))
	assert.Len(t, peers, 2)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCoordinatorRunEndpoint(t *testing.T) {
	coord, monitor := newTestCoordinator(t)
	monitor.ScriptResult(mcp.ToolErroredInstances, map[string]any{"items": []any{}})

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	rec := httptest.NewRecorder()
	coord.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result PipelineResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.OK)
}
