// Package testsupport provides shared builders for package tests: temp-dir
// configs and synthetic waveform payloads.
package testsupport

import (
	"math"
	"path/filepath"
	"testing"

	"wavebench/internal/catalog"
	"wavebench/internal/config"
	"wavebench/internal/logging"
	"wavebench/internal/payload"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Workspace.Dir = filepath.Join(base, "workspace")
	cfg.Workspace.LogDir = ""
	return &cfg
}

// MustOpenCatalog opens a catalog store against cfg and closes it when the
// test finishes.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Waveform builds a waveform bundle payload from plain slices. meta may be
// nil; string meta values are enough for the identifier paths the tests
// exercise.
func Waveform(timeAxis []float64, channels map[string][]float64, meta map[string]string) payload.Map {
	chMap := payload.Map{}
	for name, values := range channels {
		arr := make(payload.Array, len(values))
		copy(arr, values)
		chMap[name] = arr
	}
	metaMap := payload.Map{}
	for key, value := range meta {
		metaMap[key] = payload.String(value)
	}
	timeArr := make(payload.Array, len(timeAxis))
	copy(timeArr, timeAxis)
	return payload.NewWaveform(timeArr, chMap, metaMap)
}

// Linspace returns n evenly spaced samples over [start, stop], inclusive of
// both endpoints.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Gaussian evaluates a Gaussian pulse of the given amplitude, center, and
// width over t.
func Gaussian(amp, center, width float64, t []float64) []float64 {
	out := make([]float64, len(t))
	for i, tv := range t {
		arg := (tv - center) / width
		out[i] = amp * math.Exp(-0.5*arg*arg)
	}
	return out
}

// Sine evaluates amp*sin(scale*t) over t.
func Sine(amp, scale float64, t []float64) []float64 {
	out := make([]float64, len(t))
	for i, tv := range t {
		out[i] = amp * math.Sin(scale*tv)
	}
	return out
}

// Cosine evaluates amp*cos(scale*t) over t.
func Cosine(amp, scale float64, t []float64) []float64 {
	out := make([]float64, len(t))
	for i, tv := range t {
		out[i] = amp * math.Cos(scale*tv)
	}
	return out
}

// Sum adds any number of equal-length traces elementwise.
func Sum(traces ...[]float64) []float64 {
	if len(traces) == 0 {
		return nil
	}
	out := make([]float64, len(traces[0]))
	for _, trace := range traces {
		for i, v := range trace {
			out[i] += v
		}
	}
	return out
}
