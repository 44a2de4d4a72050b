package state

import (
	"fmt"
	"reflect"
)

// Type is the discriminator naming a concrete state variant. It is the value
// carried in the "type" field of every serialized state.
type Type string

const (
	// TypeScheduled identifies a run that is due at a known start time.
	TypeScheduled Type = "Scheduled"

	// TypeResume identifies the transition target after a Paused state.
	TypeResume Type = "Resume"

	// TypePending identifies a run that is waiting and may hold cached inputs.
	TypePending Type = "Pending"

	// TypePaused identifies an explicit hold.
	TypePaused Type = "Paused"

	// TypeSubmitted identifies a wrapper around a state that has been handed
	// to an executor but not yet picked up.
	TypeSubmitted Type = "Submitted"

	// TypeRetrying identifies a run scheduled for another attempt.
	TypeRetrying Type = "Retrying"

	// TypeRunning identifies a run that is currently executing.
	TypeRunning Type = "Running"

	// TypeSuccess identifies a run that finished successfully.
	TypeSuccess Type = "Success"

	// TypeFailed identifies a run that finished with an error.
	TypeFailed Type = "Failed"

	// TypeTimedOut identifies a run that exceeded its execution deadline.
	TypeTimedOut Type = "TimedOut"

	// TypeCached identifies a reusable snapshot of a finished run's inputs,
	// parameters and result.
	TypeCached Type = "CachedState"

	// TypeMapped identifies a parent run that fanned out into many child runs.
	TypeMapped Type = "Mapped"
)

// Validate checks that the type names a known state variant.
func (t Type) Validate() error {
	switch t {
	case TypeScheduled, TypeResume, TypePending, TypePaused, TypeSubmitted,
		TypeRetrying, TypeRunning, TypeSuccess, TypeFailed, TypeTimedOut,
		TypeCached, TypeMapped:
		return nil
	default:
		return fmt.Errorf("invalid state type: %s", t)
	}
}

// Category returns the lifecycle category the type belongs to.
func (t Type) Category() Category {
	switch t {
	case TypeScheduled, TypeResume, TypeRetrying:
		return CategoryScheduled
	case TypePending, TypePaused, TypeCached:
		return CategoryPending
	case TypeRunning:
		return CategoryRunning
	case TypeSuccess, TypeFailed, TypeTimedOut:
		return CategoryResolved
	default:
		return CategoryComposite
	}
}

// Category groups the state variants by lifecycle role.
type Category string

const (
	// CategoryScheduled covers states that are not yet dispatched but have a
	// known or implied start time.
	CategoryScheduled Category = "scheduled"

	// CategoryPending covers states that are waiting and may carry cached
	// inputs.
	CategoryPending Category = "pending"

	// CategoryRunning covers the single actively-executing state.
	CategoryRunning Category = "running"

	// CategoryResolved covers terminal states of a finished attempt.
	CategoryResolved Category = "resolved"

	// CategoryComposite covers states that wrap or aggregate other states.
	CategoryComposite Category = "composite"
)

// State is the contract shared by every concrete variant. The variant set is
// closed: only the types defined in this package implement it.
type State interface {
	// Type returns the variant discriminator.
	Type() Type

	sealed()
}

// Scheduled is a run that is due at StartTime.
type Scheduled struct {
	Message   string
	Result    any
	StartTime *Timestamp
}

// Resume is the transition target after a Paused state.
type Resume struct {
	Message   string
	Result    any
	StartTime *Timestamp
}

// Pending is a run that is waiting to be scheduled and may hold cached
// inputs from an earlier attempt.
type Pending struct {
	Message      string
	Result       any
	CachedInputs any
}

// Paused is an explicit hold on a run.
type Paused struct {
	Message      string
	Result       any
	CachedInputs any
}

// Submitted wraps the state that was handed to an executor.
type Submitted struct {
	Message string
	Result  any
	State   State
}

// Retrying is a run scheduled for another attempt. RunCount counts the
// attempts made so far and is never negative.
type Retrying struct {
	Message   string
	Result    any
	StartTime *Timestamp
	RunCount  int
}

// Running is a run that is currently executing.
type Running struct {
	Message string
	Result  any
}

// Success is a run that finished successfully. Cached, when set, is a
// snapshot that later runs may reuse.
type Success struct {
	Message string
	Result  any
	Cached  *CachedState
}

// Failed is a run that finished with an error.
type Failed struct {
	Message string
	Result  any
	Cached  *CachedState
}

// TimedOut is a run that exceeded its execution deadline. It keeps the
// inputs it ran with so a retry can reuse them.
type TimedOut struct {
	Message      string
	Result       any
	Cached       *CachedState
	CachedInputs any
}

// CachedState is a reusable snapshot of a finished run. It is serializable
// like any other state but acts as an attachment to resolved states rather
// than a lifecycle position of its own.
type CachedState struct {
	Message                string
	Result                 any
	CachedInputs           any
	CachedResult           any
	CachedParameters       any
	CachedResultExpiration *Timestamp
}

// Mapped is a parent run that fanned out into child runs. MapStates is
// in-memory bookkeeping only; serialization deliberately collapses it to a
// count (see package wire).
type Mapped struct {
	Message   string
	Result    any
	MapStates []State
}

// Type implements State.
func (s *Scheduled) Type() Type { return TypeScheduled }

// Type implements State.
func (s *Resume) Type() Type { return TypeResume }

// Type implements State.
func (s *Pending) Type() Type { return TypePending }

// Type implements State.
func (s *Paused) Type() Type { return TypePaused }

// Type implements State.
func (s *Submitted) Type() Type { return TypeSubmitted }

// Type implements State.
func (s *Retrying) Type() Type { return TypeRetrying }

// Type implements State.
func (s *Running) Type() Type { return TypeRunning }

// Type implements State.
func (s *Success) Type() Type { return TypeSuccess }

// Type implements State.
func (s *Failed) Type() Type { return TypeFailed }

// Type implements State.
func (s *TimedOut) Type() Type { return TypeTimedOut }

// Type implements State.
func (s *CachedState) Type() Type { return TypeCached }

// Type implements State.
func (s *Mapped) Type() Type { return TypeMapped }

func (s *Scheduled) sealed()   {}
func (s *Resume) sealed()      {}
func (s *Pending) sealed()     {}
func (s *Paused) sealed()      {}
func (s *Submitted) sealed()   {}
func (s *Retrying) sealed()    {}
func (s *Running) sealed()     {}
func (s *Success) sealed()     {}
func (s *Failed) sealed()      {}
func (s *TimedOut) sealed()    {}
func (s *CachedState) sealed() {}
func (s *Mapped) sealed()      {}

// Types lists every concrete state variant. The wire registry is checked
// against this list.
func Types() []Type {
	return []Type{
		TypeScheduled, TypeResume, TypePending, TypePaused, TypeSubmitted,
		TypeRetrying, TypeRunning, TypeSuccess, TypeFailed, TypeTimedOut,
		TypeCached, TypeMapped,
	}
}

// IsScheduled reports whether s is in the scheduled category.
func IsScheduled(s State) bool { return s.Type().Category() == CategoryScheduled }

// IsPending reports whether s is in the pending category. Scheduled-category
// states also count as pending: they have not run yet.
func IsPending(s State) bool {
	c := s.Type().Category()
	return c == CategoryPending || c == CategoryScheduled
}

// IsRunning reports whether s is the running state.
func IsRunning(s State) bool { return s.Type().Category() == CategoryRunning }

// IsResolved reports whether s is a terminal state of a finished attempt.
func IsResolved(s State) bool { return s.Type().Category() == CategoryResolved }

// IsSuccessful reports whether s represents a successful finish.
func IsSuccessful(s State) bool { return s.Type() == TypeSuccess }

// IsFailed reports whether s represents an unsuccessful finish.
func IsFailed(s State) bool {
	return s.Type() == TypeFailed || s.Type() == TypeTimedOut
}

// Equal reports whether a and b are the same concrete variant with all
// fields equal by value. Timestamps compare via Timestamp.Equal, nested
// states recursively, and opaque result values by deep equality.
func Equal(a, b State) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *Scheduled:
		y := b.(*Scheduled)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			timestampsEqual(x.StartTime, y.StartTime)
	case *Resume:
		y := b.(*Resume)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			timestampsEqual(x.StartTime, y.StartTime)
	case *Pending:
		y := b.(*Pending)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			deepEqual(x.CachedInputs, y.CachedInputs)
	case *Paused:
		y := b.(*Paused)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			deepEqual(x.CachedInputs, y.CachedInputs)
	case *Submitted:
		y := b.(*Submitted)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			Equal(x.State, y.State)
	case *Retrying:
		y := b.(*Retrying)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			timestampsEqual(x.StartTime, y.StartTime) && x.RunCount == y.RunCount
	case *Running:
		y := b.(*Running)
		return x.Message == y.Message && deepEqual(x.Result, y.Result)
	case *Success:
		y := b.(*Success)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			cachedEqual(x.Cached, y.Cached)
	case *Failed:
		y := b.(*Failed)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			cachedEqual(x.Cached, y.Cached)
	case *TimedOut:
		y := b.(*TimedOut)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			cachedEqual(x.Cached, y.Cached) &&
			deepEqual(x.CachedInputs, y.CachedInputs)
	case *CachedState:
		y := b.(*CachedState)
		return x.Message == y.Message && deepEqual(x.Result, y.Result) &&
			deepEqual(x.CachedInputs, y.CachedInputs) &&
			deepEqual(x.CachedResult, y.CachedResult) &&
			deepEqual(x.CachedParameters, y.CachedParameters) &&
			timestampsEqual(x.CachedResultExpiration, y.CachedResultExpiration)
	case *Mapped:
		y := b.(*Mapped)
		if x.Message != y.Message || !deepEqual(x.Result, y.Result) {
			return false
		}
		if len(x.MapStates) != len(y.MapStates) {
			return false
		}
		for i := range x.MapStates {
			if !Equal(x.MapStates[i], y.MapStates[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func deepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func timestampsEqual(a, b *Timestamp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func cachedEqual(a, b *CachedState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(a, b)
}
