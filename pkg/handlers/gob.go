package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
)

func init() {
	// Interface-boxed gob needs the common container types registered.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// GobHandler encodes result payloads with encoding/gob and base64. Unlike
// JSONHandler it round-trips Go-native values (typed structs, integer
// kinds) exactly, at the cost of a non-human-readable wire string.
// Caller-defined types must be registered with gob.Register before use.
type GobHandler struct{}

// NewGobHandler creates a gob result handler.
func NewGobHandler() *GobHandler {
	return &GobHandler{}
}

// Serialize implements wire.ResultHandler.
func (h *GobHandler) Serialize(v any) (string, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	// Encode as interface{} so Deserialize can decode into interface{}.
	iv := v
	if err := enc.Encode(&iv); err != nil {
		return "", fmt.Errorf("gob handler: failed to encode result: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Deserialize implements wire.ResultHandler.
func (h *GobHandler) Deserialize(s string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("gob handler: invalid base64 payload: %w", err)
	}
	var iv any
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&iv); err != nil {
		return nil, fmt.Errorf("gob handler: failed to decode result: %w", err)
	}
	return iv, nil
}
