package wire

import (
	"encoding/json"
	"fmt"

	"github.com/flowstate/flowstate/pkg/state"
	"github.com/flowstate/flowstate/pkg/version"
)

// Wire field names shared by all schemas.
const (
	// FieldType is the discriminator naming the state variant.
	FieldType = "type"

	// FieldVersion is the engine version stamp. Always emitted on dump,
	// tolerated absent on load.
	FieldVersion = "__version__"

	FieldMessage                = "message"
	FieldResult                 = "result"
	FieldStartTime              = "start_time"
	FieldRunCount               = "run_count"
	FieldState                  = "state"
	FieldCached                 = "cached"
	FieldNMapStates             = "n_map_states"
	FieldCachedInputs           = "cached_inputs"
	FieldCachedResult           = "cached_result"
	FieldCachedParameters       = "cached_parameters"
	FieldCachedResultExpiration = "cached_result_expiration"
)

// Dump serializes a state into a JSON-compatible wire object. The object
// always carries the variant discriminator and the engine version stamp;
// fields holding their type's default value are omitted.
func Dump(s state.State, opts ...Option) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("wire: cannot dump nil state")
	}
	o := applyOptions(opts)
	return dumpState(s, codec{handler: o.handler})
}

// Load reconstructs a state from a wire object. Fields absent from the
// object default to their zero value, so {"type": "X"} loads to a default
// instance of X. The version stamp, if present, is accepted but does not
// select behavior.
func Load(obj map[string]any, opts ...Option) (state.State, error) {
	o := applyOptions(opts)
	return loadState(obj, codec{handler: o.handler})
}

func dumpState(s state.State, c codec) (map[string]any, error) {
	sc, ok := schemaFor(s.Type())
	if !ok {
		return nil, NewUnknownTypeError(string(s.Type()))
	}
	obj := map[string]any{
		FieldType:    string(s.Type()),
		FieldVersion: version.Version,
	}
	if err := sc.dump(s, c, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func loadState(obj map[string]any, c codec) (state.State, error) {
	raw, ok := obj[FieldType]
	if !ok {
		return nil, NewMissingDiscriminatorError()
	}
	name, ok := raw.(string)
	if !ok {
		return nil, NewUnknownTypeError(fmt.Sprintf("%v", raw))
	}
	sc, ok := schemaFor(state.Type(name))
	if !ok {
		return nil, NewUnknownTypeError(name)
	}
	return sc.load(obj, c)
}

// codec applies the per-call field encodings: handler-backed opaque values,
// temporal strings, and plain passthrough.
type codec struct {
	handler ResultHandler
}

// encodeOpaque encodes one opaque field value. With a handler the value is
// replaced by the handler's string; handler errors propagate unchanged.
// Without a handler the value passes through and must be JSON-compatible.
func (c codec) encodeOpaque(field string, v any) (any, error) {
	if c.handler != nil {
		return c.handler.Serialize(v)
	}
	if _, err := json.Marshal(v); err != nil {
		return nil, NewNotEncodableError(field, err)
	}
	return v, nil
}

// decodeOpaque decodes one opaque field value. Without a handler the wire
// value passes through unchanged; strings stay strings. Wire values that are
// not strings never went through a handler and pass through even when one
// is supplied.
func (c codec) decodeOpaque(v any) (any, error) {
	if c.handler == nil {
		return v, nil
	}
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	return c.handler.Deserialize(s)
}

func putMessage(obj map[string]any, msg string) {
	if msg != "" {
		obj[FieldMessage] = msg
	}
}

func putOpaque(c codec, obj map[string]any, field string, v any) error {
	if v == nil {
		return nil
	}
	enc, err := c.encodeOpaque(field, v)
	if err != nil {
		return err
	}
	obj[field] = enc
	return nil
}

func putTimestamp(obj map[string]any, field string, ts *state.Timestamp) {
	if ts != nil {
		obj[field] = ts.String()
	}
}

func getMessage(obj map[string]any) string {
	if v, ok := obj[FieldMessage]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getOpaque(c codec, obj map[string]any, field string) (any, error) {
	v, ok := obj[field]
	if !ok || v == nil {
		return nil, nil
	}
	return c.decodeOpaque(v)
}

func getTimestamp(obj map[string]any, field string) (*state.Timestamp, error) {
	v, ok := obj[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("wire: field %s: expected timestamp string, got %T", field, v)
	}
	var ts state.Timestamp
	if err := ts.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("wire: field %s: %w", field, err)
	}
	return &ts, nil
}

// getInt reads an integer field. Wire objects decoded from JSON carry
// numbers as float64; in-memory objects may carry native ints.
func getInt(obj map[string]any, field string) (int, error) {
	v, ok := obj[field]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("wire: field %s: %w", field, err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("wire: field %s: expected integer, got %T", field, v)
	}
}
