package docstore

import (
	"encoding/json"
	"time"
)

// The SQL drivers persist fields as JSON. References and instants do not
// survive plain JSON, so they are wrapped in single-key marker objects:
// {"$ref": "users/a@x"} and {"$time": "2026-01-02T15:04:05.999999999Z"}.

const (
	refKey  = "$ref"
	timeKey = "$time"
)

// EncodeFields serializes a field map for storage.
func EncodeFields(f Fields) ([]byte, error) {
	return json.Marshal(encodeValue(f))
}

// DecodeFields restores a field map, rehydrating Ref and time.Time values.
func DecodeFields(b []byte) (Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return decodeValue(raw).(Fields), nil
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case Ref:
		return map[string]any{refKey: t.Path}
	case time.Time:
		return map[string]any{timeKey: t.Format(time.RFC3339Nano)}
	case Fields:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = encodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	case []Fields:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			if p, ok := t[refKey].(string); ok {
				return Ref{Path: p}
			}
			if s, ok := t[timeKey].(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return ts
				}
			}
		}
		out := make(Fields, len(t))
		for k, e := range t {
			out[k] = decodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	default:
		return v
	}
}
