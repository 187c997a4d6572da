package importer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wavebench/internal/importer"
	"wavebench/internal/paths"
	"wavebench/internal/payload"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func TestLoadEmbeddedPayload(t *testing.T) {
	path := writeFile(t, "shot.json", `{
		"payload": {
			"type": "waveform_bundle",
			"data": {"time": [0, 1], "channels": {"A": [1, 2]}},
			"meta": {"shot": 7}
		}
	}`)

	id, p, err := importer.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if id != "shot" {
		t.Fatalf("id = %q, want shot", id)
	}
	shot, err := paths.Resolve(p, "meta.shot")
	if err != nil || shot != payload.Number(7) {
		t.Fatalf("meta.shot = %v (err %v), want 7", shot, err)
	}
}

func TestLoadFlatLayout(t *testing.T) {
	path := writeFile(t, "flat.json", `{"time": [0, 1, 2], "A": [1, 2, 3], "B": [4, 5, 6]}`)

	_, p, err := importer.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	timeArr, err := paths.Resolve(p, "data.time")
	if err != nil || !payload.Equal(timeArr, payload.Array{0, 1, 2}) {
		t.Fatalf("data.time = %v (err %v)", timeArr, err)
	}
	chans, err := paths.Resolve(p, "data.channels")
	if err != nil {
		t.Fatalf("resolve channels: %v", err)
	}
	chanMap := chans.(payload.Map)
	if len(chanMap) != 2 || !payload.Equal(chanMap["B"], payload.Array{4, 5, 6}) {
		t.Fatalf("channels = %v", chanMap)
	}
	if _, timeLeaked := chanMap["time"]; timeLeaked {
		t.Fatal("time axis leaked into channels")
	}
	source, err := paths.Resolve(p, "meta.source")
	if err != nil || source != payload.String(path) {
		t.Fatalf("meta.source = %v (err %v)", source, err)
	}
}

func TestLoadFlatLayoutShortTimeKey(t *testing.T) {
	path := writeFile(t, "short.json", `{"t": [0, 1], "A": [5, 6]}`)

	_, p, err := importer.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	timeArr, err := paths.Resolve(p, "data.time")
	if err != nil || !payload.Equal(timeArr, payload.Array{0, 1}) {
		t.Fatalf("data.time = %v (err %v)", timeArr, err)
	}
}

func TestLoadIntervalLayout(t *testing.T) {
	path := writeFile(t, "scope.json", `{
		"Tstart": [1.0],
		"Tinterval": [0.5],
		"Length": [4],
		"Version": [2],
		"A": [10, 11, 12, 13],
		"note": "not a channel",
		"short": [1, 2]
	}`)

	_, p, err := importer.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	timeArr, err := paths.Resolve(p, "data.time")
	if err != nil || !payload.Equal(timeArr, payload.Array{1.0, 1.5, 2.0, 2.5}) {
		t.Fatalf("synthesized time = %v (err %v)", timeArr, err)
	}

	chans, err := paths.Resolve(p, "data.channels")
	if err != nil {
		t.Fatalf("resolve channels: %v", err)
	}
	chanMap := chans.(payload.Map)
	if len(chanMap) != 1 {
		t.Fatalf("channels = %v, want only the length-matched numeric array", chanMap.SortedKeys())
	}
	if !payload.Equal(chanMap["A"], payload.Array{10, 11, 12, 13}) {
		t.Fatalf("channel A = %v", chanMap["A"])
	}

	version, err := paths.Resolve(p, "meta.Version")
	if err != nil {
		t.Fatalf("resolve meta.Version: %v", err)
	}
	if _, ok := payload.Numeric(version); !ok {
		t.Fatalf("meta.Version = %v", version)
	}
}

func TestLoadIntervalInfersLength(t *testing.T) {
	path := writeFile(t, "nolength.json", `{"Tstart": 0, "Tinterval": 1, "A": [5, 6, 7]}`)

	_, p, err := importer.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	timeArr, err := paths.Resolve(p, "data.time")
	if err != nil || !payload.Equal(timeArr, payload.Array{0, 1, 2}) {
		t.Fatalf("inferred time = %v (err %v)", timeArr, err)
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "trace.csv", "time,A\n0,1\n")

	_, _, err := importer.Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	var importErr *importer.Error
	if !errors.As(err, &importErr) {
		t.Fatalf("error type %T, want *importer.Error", err)
	}
	if importErr.Path != path {
		t.Fatalf("error path = %q, want %q", importErr.Path, path)
	}
}

func TestLoadRejectsUnrecognizedShape(t *testing.T) {
	path := writeFile(t, "shapeless.json", `{"A": [1, 2, 3]}`)

	if _, _, err := importer.Load(path); err == nil {
		t.Fatal("expected error for object without time data")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeFile(t, "broken.json", `{"time": [`)

	if _, _, err := importer.Load(path); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestLoadFiles(t *testing.T) {
	first := writeFile(t, "a.json", `{"time": [0], "A": [1]}`)
	second := writeFile(t, "b.json", `{"time": [0], "B": [2]}`)

	loaded, err := importer.LoadFiles([]string{first, second})
	if err != nil {
		t.Fatalf("LoadFiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d payloads, want 2", len(loaded))
	}
	if _, ok := loaded["a"]; !ok {
		t.Fatal("missing payload id a")
	}
	if _, ok := loaded["b"]; !ok {
		t.Fatal("missing payload id b")
	}
}

func TestIDFromPath(t *testing.T) {
	if got := importer.IDFromPath("/data/run 3.json"); got != "run 3" {
		t.Fatalf("IDFromPath = %q, want run 3", got)
	}
	if got := importer.IDFromPath("plain"); got != "plain" {
		t.Fatalf("IDFromPath = %q, want plain", got)
	}
}
