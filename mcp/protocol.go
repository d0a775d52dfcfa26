package mcp

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// JSONRPCVersion is the protocol version sent on every request.
const JSONRPCVersion = "2.0"

// methodToolsCall is the only method the monitor service exposes to agents.
const methodToolsCall = "tools/call"

// Tool names exposed by the OIC monitor service.
const (
	ToolErroredInstances   = "monitoringErroredInstances"
	ToolResubmitInstances  = "monitoringResubmitErroredInstances"
	ToolRecoveryJobDetails = "monitoringErrorRecoveryJobDetails"
	ToolInstances          = "monitoringInstances"
)

// Request is the JSON-RPC envelope for a tool call. Created fresh per call
// and discarded after response handling.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  Params `json:"params"`
}

// Params carries the tool name and its argument mapping.
type Params struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// NewToolCall builds a tools/call request with a fresh correlation id.
func NewToolCall(name string, args map[string]any) *Request {
	return &Request{
		JSONRPC: JSONRPCVersion,
		ID:      uuid.New().String(),
		Method:  methodToolsCall,
		Params:  Params{Name: name, Arguments: args},
	}
}

// contentPart is one typed part of an MCP result content list.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// remoteError is the JSON-RPC error member of a response envelope.
type remoteError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OutcomeKind tags the canonical result of one RPC invocation.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeTransportError OutcomeKind = "transport_error"
	OutcomeRemoteError    OutcomeKind = "remote_error"
)

// Outcome is the canonical result shape every tool call collapses into.
// Exactly one of Payload or Err is meaningful, selected by Kind. Raw marks
// a degraded payload that wraps an uninterpretable response body.
type Outcome struct {
	Kind    OutcomeKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Raw     bool            `json:"raw,omitempty"`
	Err     *types.Error    `json:"error,omitempty"`
}

// Success builds a successful outcome carrying the decoded payload.
func Success(payload json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeSuccess, Payload: payload}
}

// TransportFailure builds an outcome for a failure below the protocol layer.
func TransportFailure(err *types.Error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Err: err}
}

// RemoteFailure builds an outcome for a failure reported by the service.
func RemoteFailure(err *types.Error) Outcome {
	return Outcome{Kind: OutcomeRemoteError, Err: err}
}
