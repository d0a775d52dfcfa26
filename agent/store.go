package agent

import (
	"context"

	"github.com/nareshsaladi2024/OICAgentOps/internal/metrics"
	"github.com/nareshsaladi2024/OICAgentOps/state"
)

// meteredStore counts correlation store merges.
type meteredStore struct {
	state.Store
	backend   string
	collector *metrics.Collector
}

func (s *meteredStore) Merge(ctx context.Context, patch state.Patch) (state.Document, error) {
	doc, err := s.Store.Merge(ctx, patch)
	status := "ok"
	if err != nil {
		status = "failed"
	}
	s.collector.RecordStoreMerge(s.backend, status)
	return doc, err
}
