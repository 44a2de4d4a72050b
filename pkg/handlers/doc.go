// Package handlers provides ready-made ResultHandler implementations for
// package wire: JSON string encoding, gob+base64 for values JSON cannot
// carry, and a local-filesystem handler that keeps large payloads out of
// the wire object entirely.
//
// Handlers are external collaborators from the serializer's point of view:
// their errors propagate to the Dump/Load caller unchanged, and any I/O
// they perform blocks the calling goroutine.
package handlers
