package handlers

import (
	"fmt"

	"github.com/flowstate/flowstate/pkg/telemetry"
	"github.com/flowstate/flowstate/pkg/wire"
)

// ForName returns the handler registered under name: "json", "gob" or
// "local" (which requires dir). "none" and the empty string mean no handler,
// leaving payloads to pass through the serializer unchanged.
func ForName(name, dir string, log *telemetry.Logger) (wire.ResultHandler, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "json":
		return NewJSONHandler(), nil
	case "gob":
		return NewGobHandler(), nil
	case "local":
		h, err := NewLocalHandler(dir, log)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown result handler %q", name)
	}
}
