package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/state"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// discoverDefaults are the arguments the errored-instances tool receives
// unless the caller overrides them. The summary projection keeps payloads
// small enough to relay verbatim.
func discoverDefaults() map[string]any {
	return map[string]any{
		"timewindow":        "1h",
		"recoverable":       "true",
		"integration-style": "appdriven",
		"includePurged":     "no",
		"orderBy":           "lastupdateddate",
		"fields":            "runId",
		"return":            "summary",
	}
}

// Discover queries the monitor service for recoverable errored instances
// and records their ids in the correlation store for a later resubmission.
// Caller overrides are merged over the defaults key by key.
func (s *Service) Discover(ctx context.Context, overrides map[string]any) *types.StageResult {
	args := discoverDefaults()
	for k, v := range overrides {
		args[k] = v
	}

	out := s.caller.CallTool(ctx, mcp.ToolErroredInstances, args)
	if out.Kind != mcp.OutcomeSuccess {
		return types.Failed(types.StageDiscover, out.Err)
	}

	ids := extractIDs(out.Payload, instanceIDRules)

	patch := state.Patch{LastFailedInstanceIDs: state.Strings(ids)}
	if env, ok := args["environment"].(string); ok && env != "" {
		patch.ActiveEnvironment = state.String(env)
	}
	if _, err := s.store.Merge(ctx, patch); err != nil {
		s.logger.Warn("failed to persist discovered instance ids", zap.Error(err))
	}

	s.logger.Info("discovered errored instances",
		zap.Int("count", len(ids)),
		zap.Strings("instance_ids", ids),
	)

	result := types.Succeeded(types.StageDiscover, out.Payload)
	result.InstanceIDs = ids
	return result
}
