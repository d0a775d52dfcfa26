package types

import "encoding/json"

// Stage names for the monitoring and recovery workflow.
const (
	StageDiscover     = "discover"
	StageResubmit     = "resubmit"
	StageCheckStatus  = "check-status"
	StageMonitorQueue = "monitor-queue"
)

// ResubmitSummary records the outcome of one bulk resubmission.
type ResubmitSummary struct {
	Requested   int      `json:"requested"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	InstanceIDs []string `json:"instanceIds,omitempty"`
	JobIDs      []string `json:"jobIds,omitempty"`
}

// StageResult is the normalized output of a stage function. A stage either
// fully succeeds (OK with a payload) or returns a single coherent error;
// it is never partially populated.
type StageResult struct {
	Stage       string           `json:"stage"`
	OK          bool             `json:"ok"`
	Payload     json.RawMessage  `json:"payload,omitempty"`
	InstanceIDs []string         `json:"instanceIds,omitempty"`
	JobIDs      []string         `json:"jobIds,omitempty"`
	Summary     *ResubmitSummary `json:"summary,omitempty"`
	Error       *Error           `json:"error,omitempty"`
}

// Succeeded creates a successful StageResult for the given stage.
func Succeeded(stage string, payload json.RawMessage) *StageResult {
	return &StageResult{Stage: stage, OK: true, Payload: payload}
}

// Failed creates a failed StageResult carrying the error descriptor.
func Failed(stage string, err *Error) *StageResult {
	return &StageResult{Stage: stage, Error: err}
}

// HealthStatus is the result of a pre-flight probe against the remote
// monitor service. It never represents an RPC outcome.
type HealthStatus struct {
	Status       string          `json:"status"` // healthy, unhealthy, error
	ServerURL    string          `json:"server_url"`
	ServerType   string          `json:"server_type"`
	HealthCheck  json.RawMessage `json:"health_check,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
