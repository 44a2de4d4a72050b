// Package stores persists serialized execution states. It is a collaborator
// of the serialization core, not part of it: every state crosses the storage
// boundary through wire.Dump and comes back through wire.Load, so the store
// only ever handles opaque wire objects.
package stores
