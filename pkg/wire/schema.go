package wire

import (
	"fmt"

	"github.com/flowstate/flowstate/pkg/state"
)

// schema is the wire schema for one state variant: how its fields are
// written to and read back from a wire object. The discriminator and
// version stamp are handled by dumpState/loadState, not by schemas.
type schema struct {
	dump func(s state.State, c codec, obj map[string]any) error
	load func(obj map[string]any, c codec) (state.State, error)
}

func dumpScheduled(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Scheduled)
	putMessage(obj, x.Message)
	putTimestamp(obj, FieldStartTime, x.StartTime)
	return putOpaque(c, obj, FieldResult, x.Result)
}

func loadScheduled(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	start, err := getTimestamp(obj, FieldStartTime)
	if err != nil {
		return nil, err
	}
	return &state.Scheduled{Message: getMessage(obj), Result: result, StartTime: start}, nil
}

func dumpResume(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Resume)
	putMessage(obj, x.Message)
	putTimestamp(obj, FieldStartTime, x.StartTime)
	return putOpaque(c, obj, FieldResult, x.Result)
}

func loadResume(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	start, err := getTimestamp(obj, FieldStartTime)
	if err != nil {
		return nil, err
	}
	return &state.Resume{Message: getMessage(obj), Result: result, StartTime: start}, nil
}

func dumpPending(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Pending)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	return putOpaque(c, obj, FieldCachedInputs, x.CachedInputs)
}

func loadPending(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	inputs, err := getOpaque(c, obj, FieldCachedInputs)
	if err != nil {
		return nil, err
	}
	return &state.Pending{Message: getMessage(obj), Result: result, CachedInputs: inputs}, nil
}

func dumpPaused(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Paused)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	return putOpaque(c, obj, FieldCachedInputs, x.CachedInputs)
}

func loadPaused(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	inputs, err := getOpaque(c, obj, FieldCachedInputs)
	if err != nil {
		return nil, err
	}
	return &state.Paused{Message: getMessage(obj), Result: result, CachedInputs: inputs}, nil
}

func dumpSubmitted(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Submitted)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	if x.State != nil {
		nested, err := dumpState(x.State, c)
		if err != nil {
			return err
		}
		obj[FieldState] = nested
	}
	return nil
}

func loadSubmitted(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	var wrapped state.State
	if v, ok := obj[FieldState]; ok && v != nil {
		nested, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("wire: field %s: expected wire object, got %T", FieldState, v)
		}
		wrapped, err = loadState(nested, c)
		if err != nil {
			return nil, err
		}
	}
	return &state.Submitted{Message: getMessage(obj), Result: result, State: wrapped}, nil
}

func dumpRetrying(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Retrying)
	putMessage(obj, x.Message)
	putTimestamp(obj, FieldStartTime, x.StartTime)
	if x.RunCount != 0 {
		obj[FieldRunCount] = x.RunCount
	}
	return putOpaque(c, obj, FieldResult, x.Result)
}

func loadRetrying(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	start, err := getTimestamp(obj, FieldStartTime)
	if err != nil {
		return nil, err
	}
	runCount, err := getInt(obj, FieldRunCount)
	if err != nil {
		return nil, err
	}
	return &state.Retrying{
		Message:   getMessage(obj),
		Result:    result,
		StartTime: start,
		RunCount:  runCount,
	}, nil
}

func dumpRunning(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Running)
	putMessage(obj, x.Message)
	return putOpaque(c, obj, FieldResult, x.Result)
}

func loadRunning(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	return &state.Running{Message: getMessage(obj), Result: result}, nil
}

func dumpSuccess(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Success)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	return putCached(c, obj, x.Cached)
}

func loadSuccess(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	cached, err := getCached(obj, c)
	if err != nil {
		return nil, err
	}
	return &state.Success{Message: getMessage(obj), Result: result, Cached: cached}, nil
}

func dumpFailed(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Failed)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	return putCached(c, obj, x.Cached)
}

func loadFailed(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	cached, err := getCached(obj, c)
	if err != nil {
		return nil, err
	}
	return &state.Failed{Message: getMessage(obj), Result: result, Cached: cached}, nil
}

func dumpTimedOut(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.TimedOut)
	putMessage(obj, x.Message)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	if err := putOpaque(c, obj, FieldCachedInputs, x.CachedInputs); err != nil {
		return err
	}
	return putCached(c, obj, x.Cached)
}

func loadTimedOut(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	inputs, err := getOpaque(c, obj, FieldCachedInputs)
	if err != nil {
		return nil, err
	}
	cached, err := getCached(obj, c)
	if err != nil {
		return nil, err
	}
	return &state.TimedOut{
		Message:      getMessage(obj),
		Result:       result,
		Cached:       cached,
		CachedInputs: inputs,
	}, nil
}

func dumpCachedState(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.CachedState)
	putMessage(obj, x.Message)
	putTimestamp(obj, FieldCachedResultExpiration, x.CachedResultExpiration)
	if err := putOpaque(c, obj, FieldResult, x.Result); err != nil {
		return err
	}
	if err := putOpaque(c, obj, FieldCachedInputs, x.CachedInputs); err != nil {
		return err
	}
	if err := putOpaque(c, obj, FieldCachedResult, x.CachedResult); err != nil {
		return err
	}
	return putOpaque(c, obj, FieldCachedParameters, x.CachedParameters)
}

func loadCachedState(obj map[string]any, c codec) (state.State, error) {
	result, err := getOpaque(c, obj, FieldResult)
	if err != nil {
		return nil, err
	}
	inputs, err := getOpaque(c, obj, FieldCachedInputs)
	if err != nil {
		return nil, err
	}
	cachedResult, err := getOpaque(c, obj, FieldCachedResult)
	if err != nil {
		return nil, err
	}
	params, err := getOpaque(c, obj, FieldCachedParameters)
	if err != nil {
		return nil, err
	}
	expiration, err := getTimestamp(obj, FieldCachedResultExpiration)
	if err != nil {
		return nil, err
	}
	return &state.CachedState{
		Message:                getMessage(obj),
		Result:                 result,
		CachedInputs:           inputs,
		CachedResult:           cachedResult,
		CachedParameters:       params,
		CachedResultExpiration: expiration,
	}, nil
}

// dumpMapped deliberately loses information: the children and the parent
// result are dropped and only the fan-out width survives. Child run state
// is tracked per child run elsewhere; repeating it here would make the
// parent's payload grow with the fan-out.
func dumpMapped(s state.State, c codec, obj map[string]any) error {
	x := s.(*state.Mapped)
	putMessage(obj, x.Message)
	obj[FieldNMapStates] = len(x.MapStates)
	return nil
}

// loadMapped rebuilds the fan-out width as Pending placeholders. The
// children's concrete variants are not recoverable from the wire form.
func loadMapped(obj map[string]any, c codec) (state.State, error) {
	n, err := getInt(obj, FieldNMapStates)
	if err != nil {
		return nil, err
	}
	children := make([]state.State, n)
	for i := range children {
		children[i] = &state.Pending{}
	}
	return &state.Mapped{Message: getMessage(obj), MapStates: children}, nil
}

func putCached(c codec, obj map[string]any, cached *state.CachedState) error {
	if cached == nil {
		return nil
	}
	nested, err := dumpState(cached, c)
	if err != nil {
		return err
	}
	obj[FieldCached] = nested
	return nil
}

func getCached(obj map[string]any, c codec) (*state.CachedState, error) {
	v, ok := obj[FieldCached]
	if !ok || v == nil {
		return nil, nil
	}
	nested, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("wire: field %s: expected wire object, got %T", FieldCached, v)
	}
	loaded, err := loadState(nested, c)
	if err != nil {
		return nil, err
	}
	cached, ok := loaded.(*state.CachedState)
	if !ok {
		return nil, fmt.Errorf("wire: field %s: expected %s, got %s", FieldCached, state.TypeCached, loaded.Type())
	}
	return cached, nil
}
