package stages

import (
	"context"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// queueDefaults select the in-progress slice of the instance queue.
func queueDefaults() map[string]any {
	return map[string]any{
		"status":        "IN_PROGRESS",
		"includePurged": "yes",
		"limit":         50,
		"offset":        0,
	}
}

// MonitorQueue lists in-progress integration instances. The stage is
// read-only and never touches the correlation store.
func (s *Service) MonitorQueue(ctx context.Context, overrides map[string]any) *types.StageResult {
	args := queueDefaults()
	for k, v := range overrides {
		args[k] = v
	}

	out := s.caller.CallTool(ctx, mcp.ToolInstances, args)
	if out.Kind != mcp.OutcomeSuccess {
		return types.Failed(types.StageMonitorQueue, out.Err)
	}

	s.logger.Info("monitored instance queue")

	return types.Succeeded(types.StageMonitorQueue, out.Payload)
}
