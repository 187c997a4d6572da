// Package importer converts external waveform files into payloads. The core
// does not care how a file was parsed, only that the result carries
// data.time and data.channels; this package is the collaborator that
// produces that shape.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wavebench/internal/payload"
)

// Error reports an import failure with the offending file path attached.
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.Path, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failf(path string, err error, format string, args ...any) *Error {
	return &Error{Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Scalar acquisition fields recognized in interval-format files.
var intervalMetaKeys = []string{"Tstart", "Tinterval", "ExtraSamples", "RequestedLength", "Length", "Version"}

// Load reads the file at path and returns its payload id (the file stem)
// and payload. Supported extensions: .json.
func Load(path string) (string, payload.Map, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		p, err := loadJSON(path)
		if err != nil {
			return "", nil, err
		}
		return IDFromPath(path), p, nil
	default:
		return "", nil, failf(path, nil, "unsupported file type %q", ext)
	}
}

// LoadFiles imports several files in order into an id -> payload mapping.
func LoadFiles(pathList []string) (map[string]payload.Map, error) {
	out := make(map[string]payload.Map, len(pathList))
	for _, path := range pathList {
		id, p, err := Load(path)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

// IDFromPath derives the payload id for a file: its base name without the
// extension.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadJSON accepts three layouts: an embedded payload object under
// "payload"; a flat object with a "time" (or "t") axis plus channel arrays;
// or an interval format carrying Tstart/Tinterval scalars from which the
// time axis is synthesized.
func loadJSON(path string) (payload.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failf(path, err, "read file")
	}
	decoded, err := payload.Decode(data)
	if err != nil {
		return nil, failf(path, err, "malformed container")
	}
	root, ok := decoded.(payload.Map)
	if !ok {
		return nil, failf(path, nil, "top-level value is %s, expected object", payload.TypeName(decoded))
	}

	if embedded, present := root["payload"]; present {
		p, ok := embedded.(payload.Map)
		if !ok {
			return nil, failf(path, nil, "payload entry is %s, expected object", payload.TypeName(embedded))
		}
		return p, nil
	}

	if timeKey := findTimeKey(root); timeKey != "" {
		return loadFlat(path, root, timeKey)
	}

	if _, hasStart := root["Tstart"]; hasStart {
		if _, hasInterval := root["Tinterval"]; hasInterval {
			return loadInterval(path, root)
		}
	}

	return nil, failf(path, nil, "missing 'time'/'t' data and Tstart/Tinterval metadata to build waveform payload")
}

func findTimeKey(root payload.Map) string {
	for _, candidate := range []string{"time", "t"} {
		if _, present := root[candidate]; present {
			return candidate
		}
	}
	return ""
}

func loadFlat(path string, root payload.Map, timeKey string) (payload.Map, error) {
	timeArr, ok := payload.Numeric(root[timeKey])
	if !ok {
		return nil, failf(path, nil, "%q is %s, expected numeric array", timeKey, payload.TypeName(root[timeKey]))
	}
	channels := payload.Map{}
	for _, key := range root.SortedKeys() {
		if key == timeKey {
			continue
		}
		channels[key] = root[key]
	}
	meta := payload.Map{"source": payload.String(path)}
	return payload.NewWaveform(timeArr, channels, meta), nil
}

func loadInterval(path string, root payload.Map) (payload.Map, error) {
	tStart, ok := scalar(root["Tstart"])
	if !ok {
		return nil, failf(path, nil, "Tstart is %s, expected number", payload.TypeName(root["Tstart"]))
	}
	tInterval, ok := scalar(root["Tinterval"])
	if !ok {
		return nil, failf(path, nil, "Tinterval is %s, expected number", payload.TypeName(root["Tinterval"]))
	}

	n := 0
	if lengthValue, present := root["Length"]; present {
		if length, ok := scalar(lengthValue); ok && length > 0 {
			n = int(length)
		}
	}
	if n == 0 {
		for _, key := range root.SortedKeys() {
			if isIntervalMetaKey(key) {
				continue
			}
			if arr, ok := payload.Numeric(root[key]); ok {
				n = len(arr)
				break
			}
		}
	}
	if n == 0 {
		return nil, failf(path, nil, "contains Tstart/Tinterval but no Length and no channel arrays to infer length")
	}

	timeArr := make(payload.Array, n)
	for i := range timeArr {
		timeArr[i] = tStart + float64(i)*tInterval
	}

	channels := payload.Map{}
	for _, key := range root.SortedKeys() {
		if isIntervalMetaKey(key) {
			continue
		}
		arr, ok := payload.Numeric(root[key])
		if !ok || len(arr) != n {
			continue
		}
		channels[key] = arr
	}

	meta := payload.Map{"source": payload.String(path)}
	for _, key := range intervalMetaKeys {
		if v, present := root[key]; present {
			meta[key] = v
		}
	}
	return payload.NewWaveform(timeArr, channels, meta), nil
}

func isIntervalMetaKey(key string) bool {
	switch key {
	case "time", "t", "payload":
		return true
	}
	for _, meta := range intervalMetaKeys {
		if key == meta {
			return true
		}
	}
	return false
}

func scalar(v payload.Value) (float64, bool) {
	switch val := v.(type) {
	case payload.Number:
		return float64(val), true
	case payload.Array:
		if len(val) == 1 {
			return val[0], true
		}
	}
	return 0, false
}
