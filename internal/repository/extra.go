package repository

import (
	"encoding/json"
	"fmt"
)

// MarshalWithExtra encodes v and adds the keys of extra that v does not set.
// Keys of the encoded object are written in sorted order when extra is
// non-empty.
func MarshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("merge extra fields: %w", err)
	}
	for key, raw := range extra {
		if _, ok := fields[key]; !ok {
			fields[key] = raw
		}
	}
	return json.Marshal(fields)
}

// ExtraFields returns the members of the JSON object data whose keys are not
// in known, or nil if there are none.
func ExtraFields(data []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for key, raw := range fields {
		if known[key] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = raw
	}
	return extra, nil
}
