// Package wire implements the versioned serialization protocol for execution
// states: a bijective registry mapping every state variant to a wire schema,
// and the Dump/Load operations converting between states and JSON-compatible
// wire objects.
//
// Dump and Load are pure transformations over immutable inputs and the
// static registry built at init, so they are safe to call concurrently
// without coordination. Opaque result payloads are encoded through an
// optional per-call ResultHandler; without one, values pass through
// unchanged and must already be JSON-compatible.
package wire
