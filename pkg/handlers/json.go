package handlers

import (
	"encoding/json"
	"fmt"
)

// JSONHandler encodes result payloads as compact JSON strings. It is the
// default choice when payloads are JSON-compatible and should stay
// human-readable inside the wire object.
type JSONHandler struct{}

// NewJSONHandler creates a JSON result handler.
func NewJSONHandler() *JSONHandler {
	return &JSONHandler{}
}

// Serialize implements wire.ResultHandler.
func (h *JSONHandler) Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json handler: failed to marshal result: %w", err)
	}
	return string(data), nil
}

// Deserialize implements wire.ResultHandler.
func (h *JSONHandler) Deserialize(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("json handler: failed to unmarshal result: %w", err)
	}
	return v, nil
}
