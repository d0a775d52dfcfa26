package stages

import (
	"encoding/json"
	"strconv"
)

// idRule names one place ids can live in a tool payload. Within a rule,
// fields are tried in order per object, so a list mixing field-name
// conventions item by item still yields every id.
type idRule struct {
	list   string   // walk this list member, empty for the root object
	nested string   // descend into this object member first
	fields []string // candidate field names, first match per object wins
}

// instanceIDRules locate instance ids in a discovery payload. The remote
// service uses both "id" and "instanceId" depending on the call path.
var instanceIDRules = []idRule{
	{list: "items", fields: []string{"id", "instanceId"}},
}

// jobIDRules locate recovery job ids in a resubmission payload. Scalar
// locations come first: a single job id at the top level is the common
// shape, the list forms are fallbacks for batched responses.
var jobIDRules = []idRule{
	{fields: []string{"jobId", "recoveryJobId", "id"}},
	{nested: "result", fields: []string{"jobId", "recoveryJobId"}},
	{list: "items", fields: []string{"jobId", "id"}},
}

// extractIDs applies the rules against a payload and returns the ids
// found by the first rule that matches anything. Later rules never mix
// with earlier ones.
func extractIDs(payload json.RawMessage, rules []idRule) []string {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil
	}

	for _, rule := range rules {
		if ids := applyRule(root, rule); len(ids) > 0 {
			return ids
		}
	}
	return nil
}

func applyRule(root map[string]json.RawMessage, rule idRule) []string {
	obj := root
	if rule.nested != "" {
		raw, ok := root[rule.nested]
		if !ok {
			return nil
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil
		}
		obj = nested
	}

	if rule.list == "" {
		if id, ok := firstField(obj, rule.fields); ok {
			return []string{id}
		}
		return nil
	}

	raw, ok := obj[rule.list]
	if !ok {
		return nil
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if id, ok := firstField(item, rule.fields); ok {
			out = append(out, id)
		}
	}
	return out
}

func firstField(obj map[string]json.RawMessage, fields []string) (string, bool) {
	for _, field := range fields {
		if raw, ok := obj[field]; ok {
			if id, ok := stringValue(raw); ok {
				return id, true
			}
		}
	}
	return "", false
}

// stringValue accepts string and integer id encodings. OIC returns ids
// as strings but some tool versions emit bare numbers.
func stringValue(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", false
		}
		return s, true
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}
