package payload_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"wavebench/internal/payload"
)

func TestCloneIsIndependent(t *testing.T) {
	original := payload.Map{
		"data": payload.Map{
			"time":     payload.Array{0, 1, 2},
			"channels": payload.Map{"A": payload.Array{1, 2, 3}},
		},
		"tags": payload.List{payload.String("raw")},
	}

	clone := original.Clone()
	clone["data"].(payload.Map)["time"].(payload.Array)[0] = 99
	clone["data"].(payload.Map)["channels"].(payload.Map)["A"] = payload.Array{0}
	clone["tags"] = append(clone["tags"].(payload.List), payload.String("extra"))

	if original["data"].(payload.Map)["time"].(payload.Array)[0] != 0 {
		t.Fatal("clone mutation leaked into original time axis")
	}
	if !payload.Equal(original["data"].(payload.Map)["channels"].(payload.Map)["A"], payload.Array{1, 2, 3}) {
		t.Fatal("clone mutation leaked into original channels")
	}
	if len(original["tags"].(payload.List)) != 1 {
		t.Fatal("clone mutation leaked into original tags")
	}
}

func TestShallowCloneSharesNested(t *testing.T) {
	original := payload.Map{"data": payload.Map{"time": payload.Array{0}}}
	clone := original.ShallowClone()

	clone["extra"] = payload.Bool(true)
	if _, leaked := original["extra"]; leaked {
		t.Fatal("top-level write leaked into original")
	}

	clone["data"].(payload.Map)["time"].(payload.Array)[0] = 5
	if original["data"].(payload.Map)["time"].(payload.Array)[0] != 5 {
		t.Fatal("expected nested containers to be shared")
	}
}

func TestNumeric(t *testing.T) {
	if arr, ok := payload.Numeric(payload.Array{1, 2}); !ok || len(arr) != 2 {
		t.Fatalf("Numeric(Array) = %v, %v", arr, ok)
	}
	arr, ok := payload.Numeric(payload.List{payload.Number(1), payload.Number(2)})
	if !ok || arr[1] != 2 {
		t.Fatalf("Numeric(all-number List) = %v, %v", arr, ok)
	}
	if _, ok := payload.Numeric(payload.List{payload.Number(1), payload.String("x")}); ok {
		t.Fatal("Numeric accepted a mixed list")
	}
	if _, ok := payload.Numeric(payload.String("1")); ok {
		t.Fatal("Numeric accepted a string")
	}
}

func TestEqual(t *testing.T) {
	if !payload.Equal(payload.Array{1, 2}, payload.List{payload.Number(1), payload.Number(2)}) {
		t.Fatal("numeric array and all-number list should compare equal")
	}
	if payload.Equal(payload.Array{1, 2}, payload.Array{1, 2.0000001}) {
		t.Fatal("numeric equality must be exact")
	}
	a := payload.Map{"x": payload.Map{"y": payload.String("v")}}
	b := payload.Map{"x": payload.Map{"y": payload.String("v")}}
	if !payload.Equal(a, b) {
		t.Fatal("equal maps compared unequal")
	}
	b["x"].(payload.Map)["y"] = payload.String("w")
	if payload.Equal(a, b) {
		t.Fatal("different maps compared equal")
	}
	if !payload.Equal(nil, nil) || payload.Equal(nil, payload.Number(0)) {
		t.Fatal("null comparison is wrong")
	}
}

func TestDecodeDiscriminatesArraysAndLists(t *testing.T) {
	decoded, err := payload.Decode([]byte(`{"time":[0,1,2],"tags":["a","b"],"empty":[],"n":3,"flag":true,"nothing":null}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	root := decoded.(payload.Map)

	if _, ok := root["time"].(payload.Array); !ok {
		t.Fatalf("all-numeric array decoded as %s, want array", payload.TypeName(root["time"]))
	}
	if _, ok := root["tags"].(payload.List); !ok {
		t.Fatalf("string array decoded as %s, want list", payload.TypeName(root["tags"]))
	}
	if _, ok := root["empty"].(payload.List); !ok {
		t.Fatalf("empty array decoded as %s, want list", payload.TypeName(root["empty"]))
	}
	if root["n"] != payload.Number(3) || root["flag"] != payload.Bool(true) {
		t.Fatal("scalars decoded incorrectly")
	}
	if root["nothing"] != nil {
		t.Fatalf("null decoded as %s", payload.TypeName(root["nothing"]))
	}
}

func TestEncodeNonFiniteNumbers(t *testing.T) {
	encoded, err := payload.Encode(payload.Map{
		"threshold": payload.Number(math.Inf(1)),
		"snr":       payload.Array{1, math.Inf(-1), math.NaN()},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	text := string(encoded)
	for _, want := range []string{`"Infinity"`, `"-Infinity"`, `"NaN"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("encoded payload missing %s: %s", want, text)
		}
	}
}

func TestNewWaveformShape(t *testing.T) {
	p := payload.NewWaveform(payload.Array{0, 1}, payload.Map{"A": payload.Array{1, 2}}, nil)
	if p["type"] != payload.String(payload.TypeWaveformBundle) {
		t.Fatalf("type = %v", p["type"])
	}
	if _, ok := p[payload.MetaKey].(payload.Map); !ok {
		t.Fatal("nil meta should become an empty mapping")
	}
}

func TestAppendHistory(t *testing.T) {
	p := payload.Map{}
	payload.AppendHistory(p, payload.Map{"op_name": payload.String("first")})
	payload.AppendHistory(p, payload.Map{"op_name": payload.String("second")})

	history := payload.History(p)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].(payload.Map)["op_name"] != payload.String("first") {
		t.Fatal("history order is wrong")
	}
}

func TestStore(t *testing.T) {
	store := payload.NewStore()
	store.Add("b", payload.Map{})
	store.Add("a", payload.Map{})

	if got := store.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("IDs = %v, want sorted [a b]", got)
	}
	if _, err := store.Get("a"); err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}

	_, err := store.Get("missing")
	if !errors.Is(err, payload.ErrUnknownPayload) {
		t.Fatalf("Get(missing) error = %v, want ErrUnknownPayload", err)
	}

	store.Remove("a")
	if store.Len() != 1 {
		t.Fatalf("Len after remove = %d, want 1", store.Len())
	}
	store.Clear()
	if store.Len() != 0 {
		t.Fatal("Clear left entries behind")
	}
}
