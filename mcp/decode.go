package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nareshsaladi2024/OICAgentOps/types"
)

// dataPrefix is the event-stream framing marker.
const dataPrefix = "data:"

// Decode normalizes a response body into an Outcome regardless of whether
// the bytes are a bare JSON document or an event-stream framing. Decoding
// never fails past this boundary: an uninterpretable body collapses into a
// raw-fallback success so callers see a degraded result, not a crash.
func Decode(body []byte, contentType, requestID string) Outcome {
	if json.Valid(body) {
		if obj, ok := parseObject(body); ok {
			return finalize(obj, body)
		}
		// Valid JSON but not an object (array, string, number): the whole
		// document is the payload.
		return Success(compact(body))
	}

	if out, ok := decodeEventStream(body, requestID); ok {
		return out
	}

	return rawFallback(body, contentType)
}

// decodeEventStream scans data: lines and accepts the first one whose
// parsed object carries a result or matches the request's correlation id.
// Malformed lines are skipped, not fatal.
func decodeEventStream(body []byte, requestID string) (Outcome, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))

		obj, ok := parseObject([]byte(data))
		if !ok {
			continue
		}
		_, hasResult := obj["result"]
		_, hasError := obj["error"]
		if !hasResult && !hasError && !idMatches(obj["id"], requestID) {
			continue
		}
		return finalize(obj, []byte(data)), true
	}

	return Outcome{}, false
}

// finalize turns an accepted envelope object into an Outcome: unwrap the
// result member, surface protocol errors, then drill into a nested content
// list if the result carries one.
func finalize(obj map[string]json.RawMessage, body []byte) Outcome {
	if errRaw, ok := obj["error"]; ok && !isJSONNull(errRaw) {
		var re remoteError
		msg := string(errRaw)
		if err := json.Unmarshal(errRaw, &re); err == nil && re.Message != "" {
			msg = re.Message
		}
		return RemoteFailure(types.NewError(types.ErrRemote, msg))
	}

	payload := compact(body)
	if result, ok := obj["result"]; ok && !isJSONNull(result) {
		payload = result
	}

	return finalizePayload(payload)
}

// finalizePayload applies the MCP content-list convention and the isError
// flag to a candidate payload.
func finalizePayload(payload json.RawMessage) Outcome {
	inner, ok := parseObject(payload)
	if !ok {
		return Success(payload)
	}

	if isErrorFlagged(inner) {
		return RemoteFailure(types.NewError(types.ErrRemote, errorMessage(inner)))
	}

	if contentRaw, ok := inner["content"]; ok {
		if text, ok := firstTextPart(contentRaw); ok {
			if json.Valid([]byte(text)) {
				return Success(json.RawMessage(text))
			}
			// Not JSON: wrap verbatim as a raw-text payload rather than
			// failing.
			wrapped, _ := json.Marshal(map[string]string{"raw": text})
			out := Success(wrapped)
			out.Raw = true
			return out
		}
	}

	return Success(payload)
}

// rawFallback wraps an uninterpretable body so the caller still sees the
// full response.
func rawFallback(body []byte, contentType string) Outcome {
	wrapped, _ := json.Marshal(map[string]string{
		"raw":         string(body),
		"contentType": contentType,
	})
	out := Success(wrapped)
	out.Raw = true
	return out
}

// firstTextPart locates the first content part whose type tag is "text".
func firstTextPart(contentRaw json.RawMessage) (string, bool) {
	var parts []contentPart
	if err := json.Unmarshal(contentRaw, &parts); err != nil {
		return "", false
	}
	for _, p := range parts {
		if p.Type == "text" {
			return p.Text, true
		}
	}
	return "", false
}

// isErrorFlagged reports whether the payload carries an explicit
// isError: true marker.
func isErrorFlagged(obj map[string]json.RawMessage) bool {
	raw, ok := obj["isError"]
	if !ok {
		return false
	}
	var flag bool
	return json.Unmarshal(raw, &flag) == nil && flag
}

// errorMessage extracts the best available detail from an error-flagged
// payload: the error field, the first text content part, or the whole
// object.
func errorMessage(obj map[string]json.RawMessage) string {
	if raw, ok := obj["error"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		return string(raw)
	}
	if contentRaw, ok := obj["content"]; ok {
		if text, ok := firstTextPart(contentRaw); ok {
			return text
		}
	}
	return "remote service reported an error"
}

func parseObject(b []byte) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func idMatches(raw json.RawMessage, requestID string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s == requestID
	}
	return strings.TrimSpace(string(raw)) == requestID
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func compact(b []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return json.RawMessage(b)
	}
	return buf.Bytes()
}
