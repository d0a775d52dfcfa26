package stages

import (
	"context"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Params carries the optional inputs a stage can take. Fields a stage does
// not use are ignored.
type Params struct {
	// InstanceIDs feeds Resubmit. Empty means resolve from the store.
	InstanceIDs []string

	// JobID feeds CheckStatus. Empty means resolve from the store.
	JobID string

	// Overrides feed Discover and MonitorQueue tool arguments.
	Overrides map[string]any
}

// Run dispatches a stage by name. Unknown names fail as a domain error so
// CLI typos surface cleanly instead of panicking.
func (s *Service) Run(ctx context.Context, stage string, params Params) *types.StageResult {
	switch stage {
	case types.StageDiscover:
		return s.Discover(ctx, params.Overrides)
	case types.StageResubmit:
		return s.Resubmit(ctx, params.InstanceIDs)
	case types.StageCheckStatus:
		return s.CheckStatus(ctx, params.JobID)
	case types.StageMonitorQueue:
		return s.MonitorQueue(ctx, params.Overrides)
	default:
		return types.Failed(stage,
			types.NewError(types.ErrDomain, "unknown stage: "+stage).
				WithRemediation("valid stages are discover, resubmit, check-status, monitor-queue"))
	}
}
