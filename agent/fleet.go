package agent

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nareshsaladi2024/OICAgentOps/config"
	"github.com/nareshsaladi2024/OICAgentOps/internal/history"
	"github.com/nareshsaladi2024/OICAgentOps/internal/metrics"
	"github.com/nareshsaladi2024/OICAgentOps/internal/server"
	"github.com/nareshsaladi2024/OICAgentOps/mcp"
	"github.com/nareshsaladi2024/OICAgentOps/stages"
	"github.com/nareshsaladi2024/OICAgentOps/state"
	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Fleet is the set of agent HTTP servers built from one configuration.
type Fleet struct {
	cfg      *config.Config
	store    state.Store
	client   *mcp.Client
	history  *history.Recorder
	managers []*server.Manager
	logger   *zap.Logger
}

// member pairs a handler with its port.
type member struct {
	name    string
	port    int
	handler http.Handler
}

// NewFleet wires the stores, client, metrics, and agents from config.
func NewFleet(cfg *config.Config, logger *zap.Logger) (*Fleet, error) {
	store, err := state.NewStore(cfg.State)
	if err != nil {
		return nil, fmt.Errorf("failed to create state store: %w", err)
	}

	collector := metrics.NewCollector("agentops", logger)

	client := mcp.NewClient(cfg.MCP.BaseURL,
		mcp.WithCallTimeout(cfg.MCP.CallTimeout),
		mcp.WithHealthTimeout(cfg.MCP.HealthTimeout),
		mcp.WithRateLimit(cfg.MCP.RateLimit),
		mcp.WithLogger(logger),
		mcp.WithObserver(func(tool string, kind mcp.OutcomeKind, elapsed time.Duration) {
			collector.RecordRPCRequest(tool, string(kind), elapsed)
		}),
	)

	var recorder *history.Recorder
	if cfg.History.Enabled {
		recorder, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
	}

	service := stages.NewService(client, &meteredStore{Store: store, backend: string(cfg.State.Type), collector: collector}, logger)

	f := &Fleet{
		cfg:     cfg,
		store:   store,
		client:  client,
		history: recorder,
		logger:  logger.With(zap.String("component", "fleet")),
	}

	members := f.buildMembers(service, client, collector, recorder, logger)
	for _, m := range members {
		srvCfg := server.DefaultConfig()
		srvCfg.Addr = fmt.Sprintf("%s:%d", cfg.Server.Host, m.port)
		srvCfg.ReadTimeout = cfg.Server.ReadTimeout
		srvCfg.WriteTimeout = cfg.Server.WriteTimeout
		srvCfg.IdleTimeout = cfg.Server.IdleTimeout
		srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
		f.managers = append(f.managers, server.NewManager(m.handler, srvCfg, logger.With(zap.String("agent", m.name))))
	}

	return f, nil
}

func (f *Fleet) buildMembers(service *stages.Service, client *mcp.Client,
	collector *metrics.Collector, recorder *history.Recorder, logger *zap.Logger) []member {

	cardURL := func(port int) string {
		return fmt.Sprintf("http://%s:%d", f.cfg.Server.Host, port)
	}

	type stageAgent struct {
		name  string
		stage string
		port  int
		skill Skill
	}
	defs := []stageAgent{
		{
			name: "monitor-errors", stage: types.StageDiscover, port: f.cfg.Agents.MonitorErrorsPort,
			skill: Skill{ID: "discover", Name: "Discover errored instances",
				Description: "Finds recoverable errored integration instances"},
		},
		{
			name: "monitor-queue", stage: types.StageMonitorQueue, port: f.cfg.Agents.MonitorQueuePort,
			skill: Skill{ID: "monitor-queue", Name: "Monitor instance queue",
				Description: "Lists in-progress integration instances"},
		},
		{
			name: "resubmit-errors", stage: types.StageResubmit, port: f.cfg.Agents.ResubmitErrorsPort,
			skill: Skill{ID: "resubmit", Name: "Resubmit errored instances",
				Description: "Requests recovery for failed integration instances"},
		},
		{
			name: "recovery-job", stage: types.StageCheckStatus, port: f.cfg.Agents.RecoveryJobPort,
			skill: Skill{ID: "check-status", Name: "Check recovery job",
				Description: "Fetches details for a submitted recovery job"},
		},
	}

	var members []member
	var peerCards []Card
	for _, d := range defs {
		if d.port == 0 {
			continue
		}
		card := Card{
			Name:        d.name,
			Description: d.skill.Description,
			URL:         cardURL(d.port),
			Version:     Version,
			Skills:      []Skill{d.skill},
		}
		peerCards = append(peerCards, card)
		a := NewAgent(d.name, d.stage, card, service, client, collector, recorder, logger)
		members = append(members, member{name: d.name, port: d.port, handler: a.Handler()})
	}

	if port := f.cfg.Agents.CoordinatorPort; port != 0 {
		card := Card{
			Name:        "coordinator",
			Description: "Chains discovery, resubmission, and status checks into one recovery pipeline",
			URL:         cardURL(port),
			Version:     Version,
			Skills: []Skill{
				{ID: "pipeline", Name: "Run recovery pipeline",
					Description: "Discovers, resubmits, and checks recovery in one call"},
			},
		}
		coord := NewCoordinator(card, service, client, peerCards, collector, recorder, logger)
		members = append(members, member{name: "coordinator", port: port, handler: coord.Handler()})
	}

	return members
}

// Run starts every agent server and blocks until the context is canceled,
// a server fails, or an interrupt arrives.
func (f *Fleet) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	for _, m := range f.managers {
		m := m
		if err := m.Start(); err != nil {
			f.shutdown(context.Background())
			return err
		}
		g.Go(func() error {
			select {
			case err := <-m.Errors():
				return err
			case <-ctx.Done():
				return nil
			}
		})
	}

	f.logger.Info("agent fleet started", zap.Int("agents", len(f.managers)))

	err := g.Wait()
	f.shutdown(context.Background())
	return err
}

func (f *Fleet) shutdown(ctx context.Context) {
	for _, m := range f.managers {
		if err := m.Shutdown(ctx); err != nil {
			f.logger.Warn("agent shutdown failed", zap.Error(err))
		}
	}
	if f.history != nil {
		f.history.Close()
	}
	if err := f.store.Close(); err != nil {
		f.logger.Warn("state store close failed", zap.Error(err))
	}
	f.logger.Info("agent fleet stopped")
}
