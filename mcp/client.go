package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// Default timeouts, matching the bounds the monitor service was tuned for.
const (
	DefaultCallTimeout   = 60 * time.Second
	DefaultHealthTimeout = 5 * time.Second
)

// serverType identifies the remote service in health reports.
const serverType = "oic-monitor-mcp"

// Observer receives a record of every completed tool call. Used to feed the
// metrics collector without coupling this package to prometheus.
type Observer func(tool string, kind OutcomeKind, elapsed time.Duration)

// Client issues tool calls against one OIC monitor service endpoint.
// It never retries: retry policy belongs to the orchestrator layer.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	healthClient *http.Client
	limiter      *rate.Limiter
	observer     Observer
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHealthTimeout overrides the health probe timeout.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.healthClient.Timeout = d }
}

// WithRateLimit throttles outbound calls to rps requests per second.
// Zero or negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithObserver registers a call observer.
func WithObserver(obs Observer) Option {
	return func(c *Client) { c.observer = obs }
}

// NewClient creates a client for the monitor service at baseURL
// (e.g. "http://localhost:3000").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: DefaultCallTimeout},
		healthClient: &http.Client{Timeout: DefaultHealthTimeout},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CallTool invokes a named tool with the given arguments and collapses the
// response into a canonical Outcome. Failures are classified, never raised.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) Outcome {
	start := time.Now()
	out := c.callTool(ctx, name, args)

	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer(name, out.Kind, elapsed)
	}

	if out.Err != nil {
		c.logger.Warn("tool call failed",
			zap.String("tool", name),
			zap.String("kind", string(out.Kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(out.Err),
		)
	} else {
		c.logger.Debug("tool call completed",
			zap.String("tool", name),
			zap.Bool("raw", out.Raw),
			zap.Duration("elapsed", elapsed),
		)
	}

	return out
}

func (c *Client) callTool(ctx context.Context, name string, args map[string]any) Outcome {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return TransportFailure(c.classify(err))
		}
	}

	rpc := NewToolCall(name, args)
	body, err := json.Marshal(rpc)
	if err != nil {
		return TransportFailure(types.NewError(types.ErrTransport, "failed to encode request").WithCause(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stream", bytes.NewReader(body))
	if err != nil {
		return TransportFailure(types.NewError(types.ErrTransport, "failed to build request").WithCause(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportFailure(c.classify(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportFailure(c.classify(err))
	}

	if resp.StatusCode >= 400 {
		return RemoteFailure(types.NewError(types.ErrRemote,
			fmt.Sprintf("monitor service returned status %d", resp.StatusCode)))
	}

	return Decode(respBody, resp.Header.Get("Content-Type"), rpc.ID)
}

// Health probes the sibling /health endpoint. Used only for pre-flight
// diagnostics, never for RPC decoding.
func (c *Client) Health(ctx context.Context) *types.HealthStatus {
	status := &types.HealthStatus{
		ServerURL:  c.baseURL,
		ServerType: serverType,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		status.Status = "error"
		status.ErrorMessage = err.Error()
		return status
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		cerr := c.classify(err)
		if cerr.Code == types.ErrConnection {
			status.Status = "unhealthy"
		} else {
			status.Status = "error"
		}
		status.ErrorMessage = cerr.Message
		return status
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		status.Status = "error"
		status.ErrorMessage = fmt.Sprintf("health check failed: status %d", resp.StatusCode)
		return status
	}

	status.Status = "healthy"
	if json.Valid(body) {
		status.HealthCheck = body
	}
	return status
}

// classify maps a transport-level failure onto the error taxonomy. The
// distinctions matter because callers surface different remediation
// guidance for each.
func (c *Client) classify(err error) *types.Error {
	switch {
	case isTimeout(err):
		return types.NewError(types.ErrTimeout, "request to the monitor service timed out").
			WithRemediation("the server may be slow or unresponsive; try again or raise the call timeout").
			WithRetryable(true).
			WithCause(err)
	case isConnectionRefused(err):
		return types.NewError(types.ErrConnection,
			fmt.Sprintf("cannot connect to OIC monitor service at %s", c.baseURL)).
			WithRemediation("make sure the monitor service is running and accessible").
			WithRetryable(true).
			WithCause(err)
	default:
		return types.NewError(types.ErrTransport, "monitor service call failed").WithCause(err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
