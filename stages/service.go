package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/state"
)

// Caller issues tool calls against the monitor service. *mcp.Client
// satisfies it; tests substitute a fake.
type Caller interface {
	CallTool(ctx context.Context, name string, args map[string]any) mcp.Outcome
}

var _ Caller = (*mcp.Client)(nil)

// Service runs workflow stages against one monitor service endpoint and
// one correlation store.
type Service struct {
	caller Caller
	store  state.Store
	logger *zap.Logger
}

// NewService creates a stage service. A nil logger is replaced with a nop.
func NewService(caller Caller, store state.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{caller: caller, store: store, logger: logger}
}
