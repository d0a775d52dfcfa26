package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/state"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Resubmit requests recovery for the given instance ids. An empty slice
// falls back to the ids recorded by the last Discover. If neither source
// has ids the stage fails before any network call is made.
//
// On success the recorded job ids are replaced, not appended: the next
// CheckStatus must only ever see jobs from this resubmission.
func (s *Service) Resubmit(ctx context.Context, instanceIDs []string) *types.StageResult {
	if len(instanceIDs) == 0 {
		doc, err := s.store.Read(ctx)
		if err != nil {
			return types.Failed(types.StageResubmit,
				types.NewError(types.ErrDomain, "failed to read correlation state").WithCause(err))
		}
		instanceIDs = doc.LastFailedInstanceIDs
	}

	if len(instanceIDs) == 0 {
		return types.Failed(types.StageResubmit,
			types.NewError(types.ErrDomain, "nothing to resubmit: no failed instance ids available").
				WithRemediation("run the discover stage first to find recoverable errored instances"))
	}

	out := s.caller.CallTool(ctx, mcp.ToolResubmitInstances, map[string]any{
		"instanceIds": instanceIDs,
		"return":      "monitoringui",
	})
	if out.Kind != mcp.OutcomeSuccess {
		return types.Failed(types.StageResubmit, out.Err)
	}

	jobIDs := extractIDs(out.Payload, jobIDRules)

	summary := &types.ResubmitSummary{
		Requested:   len(instanceIDs),
		Succeeded:   len(instanceIDs),
		InstanceIDs: instanceIDs,
		JobIDs:      jobIDs,
	}

	if _, err := s.store.Merge(ctx, state.Patch{
		LastRecoveryJobIDs:  state.Strings(jobIDs),
		LastResubmitSummary: summary,
	}); err != nil {
		s.logger.Warn("failed to persist recovery job ids", zap.Error(err))
	}

	s.logger.Info("resubmitted errored instances",
		zap.Int("requested", len(instanceIDs)),
		zap.Strings("job_ids", jobIDs),
	)

	result := types.Succeeded(types.StageResubmit, out.Payload)
	result.InstanceIDs = instanceIDs
	result.JobIDs = jobIDs
	result.Summary = summary
	return result
}
