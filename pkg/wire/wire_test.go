package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/flowstate/flowstate/pkg/state"
	"github.com/flowstate/flowstate/pkg/version"
)

// addOneHandler shifts values by one in each direction so tests can tell
// exactly which side of the codec ran.
type addOneHandler struct{}

func (addOneHandler) Serialize(v any) (string, error) {
	return strconv.Itoa(v.(int) - 1), nil
}

func (addOneHandler) Deserialize(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return n + 1, nil
}

// stringifyHandler encodes any value, including ones JSON cannot carry.
type stringifyHandler struct{}

func (stringifyHandler) Serialize(v any) (string, error) {
	return fmt.Sprintf("%T", v), nil
}

func (stringifyHandler) Deserialize(s string) (any, error) {
	return s, nil
}

// failingHandler always fails with a recognizable error.
type failingHandler struct{ err error }

func (h failingHandler) Serialize(v any) (string, error)   { return "", h.err }
func (h failingHandler) Deserialize(s string) (any, error) { return nil, h.err }

// allStates returns one representatively-populated instance per variant,
// excluding Mapped, whose serialization is deliberately lossy.
func allStates() []state.State {
	return []state.State{
		&state.Scheduled{Message: "message", Result: 1},
		&state.Resume{Message: "message", Result: 1},
		&state.Pending{Message: "message", Result: 1},
		&state.Paused{Message: "message", Result: 1},
		&state.Submitted{Message: "message", Result: 1},
		&state.Retrying{Message: "message", Result: 1},
		&state.Running{Message: "message", Result: 1},
		&state.Success{Message: "message", Result: 1},
		&state.Failed{Message: "message", Result: 1},
		&state.TimedOut{Message: "message", Result: 1},
		&state.CachedState{Message: "message", Result: 1},
	}
}

func TestRegistryBijection(t *testing.T) {
	if got, want := len(RegisteredTypes()), len(state.Types()); got != want {
		t.Fatalf("registry has %d schemas, want %d", got, want)
	}
	for _, typ := range state.Types() {
		if _, ok := schemaFor(typ); !ok {
			t.Errorf("no schema registered for %s", typ)
		}
		// Each schema must reconstruct exactly its own variant.
		loaded, err := Load(map[string]any{FieldType: string(typ)})
		if err != nil {
			t.Errorf("Load({type: %s}) error = %v", typ, err)
			continue
		}
		if loaded.Type() != typ {
			t.Errorf("schema for %s reconstructed %s", typ, loaded.Type())
		}
	}
}

func TestDumpStampsTypeAndVersion(t *testing.T) {
	for _, s := range allStates() {
		t.Run(string(s.Type()), func(t *testing.T) {
			obj, err := Dump(s)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			if obj[FieldType] != string(s.Type()) {
				t.Errorf("type = %v, want %s", obj[FieldType], s.Type())
			}
			if obj[FieldVersion] != version.Version {
				t.Errorf("__version__ = %v, want %s", obj[FieldVersion], version.Version)
			}
			if obj[FieldMessage] != "message" {
				t.Errorf("message = %v, want %q", obj[FieldMessage], "message")
			}
			if obj[FieldResult] != 1 {
				t.Errorf("result = %v, want 1", obj[FieldResult])
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range allStates() {
		t.Run(string(s.Type()), func(t *testing.T) {
			obj, err := Dump(s)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			loaded, err := Load(obj)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !state.Equal(s, loaded) {
				t.Errorf("round trip changed state: got %#v, want %#v", loaded, s)
			}
		})
	}
}

func TestLoadFromOnlyType(t *testing.T) {
	for _, typ := range state.Types() {
		t.Run(string(typ), func(t *testing.T) {
			loaded, err := Load(map[string]any{FieldType: string(typ)})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded.Type() != typ {
				t.Fatalf("loaded type = %s, want %s", loaded.Type(), typ)
			}
			// All optional fields stay at their defaults.
			obj, err := Dump(loaded)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			if _, ok := obj[FieldMessage]; ok {
				t.Error("default message should be omitted")
			}
			if _, ok := obj[FieldResult]; ok {
				t.Error("default result should be omitted")
			}
		})
	}
}

func TestLoadMissingDiscriminator(t *testing.T) {
	_, err := Load(map[string]any{})
	if !IsMissingDiscriminator(err) {
		t.Errorf("Load({}) error = %v, want missing discriminator", err)
	}
}

func TestLoadUnknownType(t *testing.T) {
	_, err := Load(map[string]any{FieldType: "FakeState"})
	if !IsUnknownType(err) {
		t.Errorf("Load error = %v, want unknown type", err)
	}
}

func TestMappedCompaction(t *testing.T) {
	m := &state.Mapped{
		Message: "message",
		Result:  "never on the wire",
		MapStates: []state.State{
			&state.Success{Message: "1", Result: 1},
			&state.Failed{Message: "2", Result: 2},
		},
	}

	obj, err := Dump(m)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if obj[FieldType] != string(state.TypeMapped) {
		t.Errorf("type = %v, want Mapped", obj[FieldType])
	}
	if obj[FieldMessage] != "message" {
		t.Errorf("message = %v, want %q", obj[FieldMessage], "message")
	}
	if _, ok := obj[FieldResult]; ok {
		t.Error("Mapped result must not be serialized")
	}
	if _, ok := obj["map_states"]; ok {
		t.Error("map_states must not be serialized")
	}
	if obj[FieldNMapStates] != 2 {
		t.Errorf("n_map_states = %v, want 2", obj[FieldNMapStates])
	}

	loaded, err := Load(obj)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	reloaded, ok := loaded.(*state.Mapped)
	if !ok {
		t.Fatalf("loaded %T, want *state.Mapped", loaded)
	}
	if len(reloaded.MapStates) != 2 {
		t.Fatalf("loaded %d children, want 2", len(reloaded.MapStates))
	}
	for i, child := range reloaded.MapStates {
		if _, ok := child.(*state.Pending); !ok {
			t.Errorf("child %d is %T, want Pending placeholder", i, child)
		}
	}
	if reloaded.Result != nil {
		t.Errorf("loaded result = %v, want nil", reloaded.Result)
	}
}

func TestResultHandlerRoundTrip(t *testing.T) {
	s := &state.Success{Result: 50}

	obj, err := Dump(s, WithResultHandler(addOneHandler{}))
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if obj[FieldResult] != "49" {
		t.Errorf("handled result = %v, want %q", obj[FieldResult], "49")
	}

	loaded, err := Load(obj, WithResultHandler(addOneHandler{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.(*state.Success).Result; got != 50 {
		t.Errorf("loaded result = %v, want 50", got)
	}
}

func TestResultPassthroughWithoutHandler(t *testing.T) {
	obj, err := Dump(&state.Success{Result: 50})
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if obj[FieldResult] != 50 {
		t.Errorf("result = %v, want 50 unchanged", obj[FieldResult])
	}

	// Strings stay strings: no implicit parsing on load.
	loaded, err := Load(map[string]any{FieldType: "Success", FieldResult: "49"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.(*state.Success).Result; got != "49" {
		t.Errorf("loaded result = %v, want %q unchanged", got, "49")
	}
}

func TestHandlerAppliesToCachedFields(t *testing.T) {
	s := &state.Pending{CachedInputs: 10}
	obj, err := Dump(s, WithResultHandler(addOneHandler{}))
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if obj[FieldCachedInputs] != "9" {
		t.Errorf("cached_inputs = %v, want %q", obj[FieldCachedInputs], "9")
	}
	loaded, err := Load(obj, WithResultHandler(addOneHandler{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.(*state.Pending).CachedInputs; got != 10 {
		t.Errorf("loaded cached_inputs = %v, want 10", got)
	}
}

func TestHandlerErrorsPropagateUnchanged(t *testing.T) {
	sentinel := errors.New("handler exploded")
	h := failingHandler{err: sentinel}

	_, err := Dump(&state.Success{Result: 1}, WithResultHandler(h))
	if !errors.Is(err, sentinel) {
		t.Errorf("Dump() error = %v, want the handler's own error", err)
	}

	_, err = Load(map[string]any{FieldType: "Success", FieldResult: "1"}, WithResultHandler(h))
	if !errors.Is(err, sentinel) {
		t.Errorf("Load() error = %v, want the handler's own error", err)
	}
}

func TestNotEncodableWithoutHandler(t *testing.T) {
	s := &state.Success{Result: map[string]any{"x": map[string]any{"y": func() int { return 1 }}}}
	_, err := Dump(s)
	if !IsNotEncodable(err) {
		t.Errorf("Dump() error = %v, want value not encodable", err)
	}
}

func TestNonEncodableValueWithHandler(t *testing.T) {
	// A handler takes full custody of the value, so JSON compatibility of
	// the raw value no longer matters.
	s := &state.Success{Result: func() int { return 1 }}
	obj, err := Dump(s, WithResultHandler(stringifyHandler{}))
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if _, ok := obj[FieldResult].(string); !ok {
		t.Errorf("handled result = %T, want string", obj[FieldResult])
	}
}

func TestDeeplyNestedResultPreserved(t *testing.T) {
	result := map[string]any{"x": map[string]any{"y": map[string]any{"z": 1}}}
	obj, err := Dump(&state.Success{Result: result})
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	loaded, err := Load(obj)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !state.Equal(&state.Success{Result: result}, loaded) {
		t.Errorf("nested structure not preserved: %#v", loaded)
	}
}

func TestTemporalFidelity(t *testing.T) {
	naive := state.NaiveTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	aware := state.AwareTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		ts   state.Timestamp
	}{
		{name: "naive", ts: naive},
		{name: "aware", ts: aware},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &state.Scheduled{StartTime: &tt.ts}
			obj, err := Dump(s)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			loaded, err := Load(obj)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got := loaded.(*state.Scheduled).StartTime
			if got == nil {
				t.Fatal("start_time lost")
			}
			if got.Aware != tt.ts.Aware {
				t.Errorf("awareness = %v, want %v", got.Aware, tt.ts.Aware)
			}
			if !got.Equal(tt.ts) {
				t.Errorf("start_time = %v, want %v", got, tt.ts)
			}
		})
	}
}

func TestLoadWithoutVersion(t *testing.T) {
	loaded, err := Load(map[string]any{FieldType: "Running", FieldMessage: "test", FieldResult: 1})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	running, ok := loaded.(*state.Running)
	if !ok {
		t.Fatalf("loaded %T, want *state.Running", loaded)
	}
	if !state.IsRunning(running) {
		t.Error("IsRunning() = false")
	}
	if running.Message != "test" || running.Result != 1 {
		t.Errorf("loaded fields = (%q, %v), want (test, 1)", running.Message, running.Result)
	}
}

func TestComplexStatesRoundTrip(t *testing.T) {
	naive := state.NaiveTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	utc := state.AwareTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	complexResult := map[string]any{"x": 1, "y": map[string]any{"z": 2}}

	cachedAware := &state.CachedState{
		CachedInputs:           complexResult,
		CachedResult:           complexResult,
		CachedParameters:       complexResult,
		CachedResultExpiration: &utc,
	}
	cachedNaive := &state.CachedState{
		CachedInputs:           complexResult,
		CachedResult:           complexResult,
		CachedParameters:       complexResult,
		CachedResultExpiration: &naive,
	}

	states := []state.State{
		&state.Pending{CachedInputs: complexResult},
		&state.Paused{CachedInputs: complexResult},
		&state.Retrying{StartTime: &utc, RunCount: 3},
		&state.Retrying{StartTime: &naive, RunCount: 3},
		&state.Scheduled{StartTime: &utc},
		&state.Scheduled{StartTime: &naive},
		&state.Resume{StartTime: &utc},
		&state.Resume{StartTime: &naive},
		&state.Submitted{State: &state.Retrying{StartTime: &utc, RunCount: 2}},
		&state.Submitted{State: &state.Resume{StartTime: &utc}},
		cachedAware,
		cachedNaive,
		&state.Success{Result: complexResult, Cached: cachedAware},
		&state.Success{Result: complexResult, Cached: cachedNaive},
		&state.TimedOut{CachedInputs: complexResult},
	}

	for i, s := range states {
		t.Run(fmt.Sprintf("%d_%s", i, s.Type()), func(t *testing.T) {
			obj, err := Dump(s)
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			loaded, err := Load(obj)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !state.Equal(s, loaded) {
				t.Errorf("round trip changed state:\n got %#v\nwant %#v", loaded, s)
			}
		})
	}
}

func TestWireObjectSurvivesJSON(t *testing.T) {
	utc := state.AwareTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	s := &state.Submitted{
		Message: "dispatched",
		State:   &state.Scheduled{Message: "due", StartTime: &utc},
	}

	obj, err := Dump(s)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	loaded, err := Load(decoded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !state.Equal(s, loaded) {
		t.Errorf("JSON cycle changed state:\n got %#v\nwant %#v", loaded, s)
	}
}

func TestDumpNilState(t *testing.T) {
	if _, err := Dump(nil); err == nil {
		t.Error("Dump(nil) expected error")
	}
}
