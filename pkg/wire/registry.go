package wire

import "github.com/flowstate/flowstate/pkg/state"

// schemas is the static registry mapping every state variant to its wire
// schema. It is built once and never mutated, so lookups need no locking.
// The mapping must stay bijective with state.Types(); the registry tests
// fail the build of any variant added without a schema here.
var schemas map[state.Type]schema

// The map is populated in init rather than a composite literal: several
// schema funcs (e.g. dumpSubmitted) recurse through dumpState/loadState,
// which look the schema up in this map, and a literal initializer would
// form an initialization cycle.
func init() {
	schemas = map[state.Type]schema{
		state.TypeScheduled: {dump: dumpScheduled, load: loadScheduled},
		state.TypeResume:    {dump: dumpResume, load: loadResume},
		state.TypePending:   {dump: dumpPending, load: loadPending},
		state.TypePaused:    {dump: dumpPaused, load: loadPaused},
		state.TypeSubmitted: {dump: dumpSubmitted, load: loadSubmitted},
		state.TypeRetrying:  {dump: dumpRetrying, load: loadRetrying},
		state.TypeRunning:   {dump: dumpRunning, load: loadRunning},
		state.TypeSuccess:   {dump: dumpSuccess, load: loadSuccess},
		state.TypeFailed:    {dump: dumpFailed, load: loadFailed},
		state.TypeTimedOut:  {dump: dumpTimedOut, load: loadTimedOut},
		state.TypeCached:    {dump: dumpCachedState, load: loadCachedState},
		state.TypeMapped:    {dump: dumpMapped, load: loadMapped},
	}
}

func schemaFor(t state.Type) (schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// RegisteredTypes returns the discriminators with a registered schema.
func RegisteredTypes() []state.Type {
	types := make([]state.Type, 0, len(schemas))
	for t := range schemas {
		types = append(types, t)
	}
	return types
}
