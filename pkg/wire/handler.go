package wire

// ResultHandler is the capability for encoding and decoding opaque result
// payloads. Implementations may use any encoding internally but must produce
// and accept wire-safe strings; this package never inspects values subject
// to a handler.
//
// Handlers are supplied per call via WithResultHandler, never stored in a
// state or in package state, so concurrent Dump/Load calls with different
// handlers cannot interfere. A handler that performs blocking I/O blocks the
// calling goroutine; callers that need timeouts must enforce them around
// the Dump/Load call.
type ResultHandler interface {
	// Serialize encodes an opaque value for the wire.
	Serialize(v any) (string, error)

	// Deserialize decodes a wire string back into a value.
	Deserialize(s string) (any, error)
}

// Option configures a single Dump or Load call.
type Option func(*options)

type options struct {
	handler ResultHandler
}

// WithResultHandler supplies the result handler for this call. Without it,
// opaque values pass through unchanged in both directions.
func WithResultHandler(h ResultHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
