package handlers

import (
	"reflect"
	"testing"

	"github.com/flowstate/flowstate/pkg/state"
	"github.com/flowstate/flowstate/pkg/wire"
)

func TestJSONHandlerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want any
	}{
		{name: "number", v: float64(42), want: float64(42)},
		{name: "string", v: "hello", want: "hello"},
		{
			name: "nested map",
			v:    map[string]any{"x": float64(1), "y": map[string]any{"z": float64(2)}},
			want: map[string]any{"x": float64(1), "y": map[string]any{"z": float64(2)}},
		},
		{name: "nil", v: nil, want: nil},
	}

	h := NewJSONHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := h.Serialize(tt.v)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			got, err := h.Deserialize(s)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("round trip = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestJSONHandlerSerializeError(t *testing.T) {
	h := NewJSONHandler()
	if _, err := h.Serialize(func() {}); err == nil {
		t.Error("Serialize(func) expected error")
	}
	if _, err := h.Deserialize("{not json"); err == nil {
		t.Error("Deserialize(invalid) expected error")
	}
}

func TestGobHandlerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{name: "int preserved exactly", v: 42},
		{name: "string", v: "hello"},
		{name: "nested map", v: map[string]any{"x": 1, "y": map[string]any{"z": 2}}},
		{name: "slice", v: []any{1, "two", 3.0}},
	}

	h := NewGobHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := h.Serialize(tt.v)
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			got, err := h.Deserialize(s)
			if err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.v) {
				t.Errorf("round trip = %#v, want %#v", got, tt.v)
			}
		})
	}
}

func TestGobHandlerInvalidPayload(t *testing.T) {
	h := NewGobHandler()
	if _, err := h.Deserialize("!!! not base64"); err == nil {
		t.Error("Deserialize(invalid base64) expected error")
	}
	if _, err := h.Deserialize("aGVsbG8="); err == nil {
		t.Error("Deserialize(non-gob bytes) expected error")
	}
}

func TestLocalHandlerRoundTrip(t *testing.T) {
	h, err := NewLocalHandler(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalHandler() error = %v", err)
	}

	payload := map[string]any{"x": float64(1)}
	path, err := h.Serialize(payload)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	got, err := h.Deserialize(path)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Errorf("round trip = %#v, want %#v", got, payload)
	}
}

func TestLocalHandlerMissingFile(t *testing.T) {
	h, err := NewLocalHandler(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalHandler() error = %v", err)
	}
	if _, err := h.Deserialize("/nonexistent/result.json"); err == nil {
		t.Error("Deserialize(missing file) expected error")
	}
}

func TestLocalHandlerRequiresDirectory(t *testing.T) {
	if _, err := NewLocalHandler("", nil); err == nil {
		t.Error("NewLocalHandler(\"\") expected error")
	}
}

func TestForName(t *testing.T) {
	tests := []struct {
		name     string
		handler  string
		dir      string
		wantNil  bool
		wantErr  bool
		wantType any
	}{
		{name: "empty means none", handler: "", wantNil: true},
		{name: "none", handler: "none", wantNil: true},
		{name: "json", handler: "json", wantType: &JSONHandler{}},
		{name: "gob", handler: "gob", wantType: &GobHandler{}},
		{name: "local", handler: "local", dir: t.TempDir(), wantType: &LocalHandler{}},
		{name: "local without dir", handler: "local", wantErr: true},
		{name: "unknown", handler: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ForName(tt.handler, tt.dir, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.wantNil {
				if h != nil {
					t.Errorf("ForName() = %T, want nil", h)
				}
				return
			}
			if reflect.TypeOf(h) != reflect.TypeOf(tt.wantType) {
				t.Errorf("ForName() = %T, want %T", h, tt.wantType)
			}
		})
	}
}

// The handlers must satisfy the wire capability and survive a full
// dump/load cycle through the serializer.
func TestHandlersWithWire(t *testing.T) {
	local, err := NewLocalHandler(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalHandler() error = %v", err)
	}

	tests := []struct {
		name    string
		handler wire.ResultHandler
	}{
		{name: "json", handler: NewJSONHandler()},
		{name: "gob", handler: NewGobHandler()},
		{name: "local", handler: local},
	}

	result := map[string]any{"x": float64(1), "y": map[string]any{"z": float64(2)}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &state.Success{Message: "done", Result: result}
			obj, err := wire.Dump(s, wire.WithResultHandler(tt.handler))
			if err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			if _, ok := obj[wire.FieldResult].(string); !ok {
				t.Fatalf("handled result = %T, want string", obj[wire.FieldResult])
			}
			loaded, err := wire.Load(obj, wire.WithResultHandler(tt.handler))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !state.Equal(s, loaded) {
				t.Errorf("round trip changed state:\n got %#v\nwant %#v", loaded, s)
			}
		})
	}
}
