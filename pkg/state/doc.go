// Package state defines the closed set of task and flow execution states used
// by the flowstate engine, together with their category predicates and
// value-equality semantics.
//
// States are immutable value objects: the engine constructs a new State at
// every transition and never mutates one after construction. The set of
// concrete variants is fixed; serialization for each variant lives in
// package wire, which maintains a bijective schema registry over the
// variants defined here.
package state
