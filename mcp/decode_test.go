package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

func TestDecodePlainJSON(t *testing.T) {
	body := []byte(`{"result": {"items": [{"id": "I1"}]}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.False(t, out.Raw)
	assert.JSONEq(t, `{"items": [{"id": "I1"}]}`, string(out.Payload))
}

func TestDecodeUnwrapsResultMember(t *testing.T) {
	body := []byte(`{"jsonrpc": "2.0", "id": "req-1", "result": {"count": 3}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"count": 3}`, string(out.Payload))
}

func TestDecodeErrorMember(t *testing.T) {
	body := []byte(`{"jsonrpc": "2.0", "id": "req-1", "error": {"code": -32000, "message": "tool exploded"}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeRemoteError, out.Kind)
	require.NotNil(t, out.Err)
	assert.Equal(t, types.ErrRemote, out.Err.Code)
	assert.Equal(t, "tool exploded", out.Err.Message)
}

func TestDecodeIsErrorFlag(t *testing.T) {
	body := []byte(`{"result": {"isError": true, "content": [{"type": "text", "text": "instance not found"}]}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeRemoteError, out.Kind)
	require.NotNil(t, out.Err)
	assert.Equal(t, types.ErrRemote, out.Err.Code)
	assert.Equal(t, "instance not found", out.Err.Message)
}

func TestDecodeContentListTextPartIsJSON(t *testing.T) {
	inner := `{"items": [{"id": "I1"}, {"id": "I2"}]}`
	envelope := map[string]any{
		"result": map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": inner},
			},
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.False(t, out.Raw)
	assert.JSONEq(t, inner, string(out.Payload))
}

func TestDecodeContentListTextPartNotJSON(t *testing.T) {
	body := []byte(`{"result": {"content": [{"type": "text", "text": "2 instances resubmitted"}]}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.True(t, out.Raw)
	assert.JSONEq(t, `{"raw": "2 instances resubmitted"}`, string(out.Payload))
}

func TestDecodeContentListSkipsNonTextParts(t *testing.T) {
	body := []byte(`{"result": {"content": [{"type": "image", "text": ""}, {"type": "text", "text": "{\"ok\": true}"}]}}`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"ok": true}`, string(out.Payload))
}

func TestDecodeEventStream(t *testing.T) {
	body := []byte("event: message\ndata: {\"jsonrpc\": \"2.0\", \"id\": \"req-1\", \"result\": {\"total\": 5}}\n\n")

	out := Decode(body, "text/event-stream", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"total": 5}`, string(out.Payload))
}

func TestDecodeEventStreamSkipsMalformedLines(t *testing.T) {
	body := []byte("data: not json at all\ndata: {\"result\": {\"total\": 1}}\n")

	out := Decode(body, "text/event-stream", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"total": 1}`, string(out.Payload))
}

func TestDecodeEventStreamError(t *testing.T) {
	body := []byte("data: {\"jsonrpc\": \"2.0\", \"id\": \"req-1\", \"error\": {\"message\": \"bad tool\"}}\n")

	out := Decode(body, "text/event-stream", "req-1")

	require.Equal(t, OutcomeRemoteError, out.Kind)
	assert.Equal(t, "bad tool", out.Err.Message)
}

func TestDecodeEventStreamAcceptsMatchingID(t *testing.T) {
	body := []byte("data: {\"id\": \"req-7\", \"status\": \"accepted\"}\n")

	out := Decode(body, "text/event-stream", "req-7")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `{"id": "req-7", "status": "accepted"}`, string(out.Payload))
}

func TestDecodeRawFallback(t *testing.T) {
	body := []byte("<html>502 Bad Gateway</html>")

	out := Decode(body, "text/html", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.True(t, out.Raw)
	assert.JSONEq(t, `{"raw": "<html>502 Bad Gateway</html>", "contentType": "text/html"}`, string(out.Payload))
}

func TestDecodeNonObjectJSON(t *testing.T) {
	body := []byte(`[{"id": "I1"}]`)

	out := Decode(body, "application/json", "req-1")

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.JSONEq(t, `[{"id": "I1"}]`, string(out.Payload))
}

func TestNewToolCallFreshIDs(t *testing.T) {
	a := NewToolCall(ToolErroredInstances, map[string]any{"timewindow": "1h"})
	b := NewToolCall(ToolErroredInstances, map[string]any{"timewindow": "1h"})

	assert.Equal(t, JSONRPCVersion, a.JSONRPC)
	assert.Equal(t, "tools/call", a.Method)
	assert.Equal(t, ToolErroredInstances, a.Params.Name)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
