package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// CheckStatus fetches details for one recovery job. An empty jobID falls
// back to the first job recorded by the last Resubmit. If no job is
// available the stage fails without a network call.
func (s *Service) CheckStatus(ctx context.Context, jobID string) *types.StageResult {
	if jobID == "" {
		doc, err := s.store.Read(ctx)
		if err != nil {
			return types.Failed(types.StageCheckStatus,
				types.NewError(types.ErrDomain, "failed to read correlation state").WithCause(err))
		}
		if len(doc.LastRecoveryJobIDs) > 0 {
			jobID = doc.LastRecoveryJobIDs[0]
		}
	}

	if jobID == "" {
		return types.Failed(types.StageCheckStatus,
			types.NewError(types.ErrDomain, "no recovery job id available").
				WithRemediation("run the resubmit stage first, or pass a job id explicitly"))
	}

	out := s.caller.CallTool(ctx, mcp.ToolRecoveryJobDetails, map[string]any{
		"id": jobID,
	})
	if out.Kind != mcp.OutcomeSuccess {
		return types.Failed(types.StageCheckStatus, out.Err)
	}

	s.logger.Info("checked recovery job status", zap.String("job_id", jobID))

	result := types.Succeeded(types.StageCheckStatus, out.Payload)
	result.JobIDs = []string{jobID}
	return result
}
