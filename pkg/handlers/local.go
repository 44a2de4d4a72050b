package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/flowstate/flowstate/pkg/telemetry"
)

// LocalHandler stores result payloads as JSON files under a directory and
// puts only the file path on the wire. It keeps large results out of
// persisted wire objects; the directory must be reachable by whatever
// process later deserializes the state.
type LocalHandler struct {
	dir string
	log *telemetry.Logger
}

// NewLocalHandler creates a local-filesystem result handler rooted at dir,
// creating the directory if needed.
func NewLocalHandler(dir string, log *telemetry.Logger) (*LocalHandler, error) {
	if dir == "" {
		return nil, fmt.Errorf("local handler: directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("local handler: failed to create directory: %w", err)
	}
	if log == nil {
		log = telemetry.FromContext(nil)
	}
	return &LocalHandler{
		dir: dir,
		log: log.NewComponentLogger("local_handler"),
	}, nil
}

// Serialize implements wire.ResultHandler. The returned wire string is the
// path of the file holding the payload.
func (h *LocalHandler) Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("local handler: failed to marshal result: %w", err)
	}
	path := filepath.Join(h.dir, uuid.NewString()+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("local handler: failed to write result: %w", err)
	}
	h.log.WithField("path", path).Debug("result payload written")
	return path, nil
}

// Deserialize implements wire.ResultHandler. The wire string must be a
// path previously returned by Serialize.
func (h *LocalHandler) Deserialize(s string) (any, error) {
	data, err := os.ReadFile(s)
	if err != nil {
		return nil, fmt.Errorf("local handler: failed to read result: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("local handler: failed to unmarshal result: %w", err)
	}
	h.log.WithField("path", s).Debug("result payload read")
	return v, nil
}
