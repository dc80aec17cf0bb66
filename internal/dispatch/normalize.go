package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/barnabasJ/ash-ai/internal/host"
)

// normalizeArguments converts whatever the transport decoded into a
// string-keyed map. Absent and null arguments become an empty map.
func normalizeArguments(arguments any) (map[string]any, error) {
	switch args := arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case json.RawMessage:
		return decodeArguments(args)
	case []byte:
		return decodeArguments(args)
	case map[string]any:
		return normalizeValue(args).(map[string]any), nil
	case map[any]any:
		return normalizeValue(args).(map[string]any), nil
	default:
		// Structs and typed maps go through their JSON form.
		data, err := json.Marshal(args)
		if err != nil {
			return nil, invalidArguments(fmt.Sprintf("arguments cannot be encoded: %v", err))
		}
		return decodeArguments(data)
	}
}

func decodeArguments(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, invalidArguments(fmt.Sprintf("arguments are not valid JSON: %v", err))
	}
	args, ok := decoded.(map[string]any)
	if !ok {
		return nil, invalidArguments("arguments must be a JSON object")
	}
	return args, nil
}

func invalidArguments(message string) error {
	return host.Invalid(host.FieldError{Code: host.CodeBadRequest, Message: message})
}

// normalizeValue rewrites every nested map to map[string]any.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// serializePayload renders a structured result deterministically. Maps
// are encoded with sorted keys; values JSON cannot represent fall back to
// their default string form.
func serializePayload(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	}
	data, err := json.Marshal(normalizeValue(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
