package payload

import "time"

// Well-known payload fields.
const (
	TypeWaveformBundle = "waveform_bundle"

	MetaKey    = "meta"
	DataKey    = "data"
	EventsKey  = "events"
	UIDKey     = "__uid__"
	HistoryKey = "__history__"
)

// NewWaveform assembles a waveform bundle payload from a time axis and
// named channel traces. meta may be nil.
func NewWaveform(timeAxis Array, channels Map, meta Map) Map {
	if meta == nil {
		meta = Map{}
	}
	return Map{
		"type": String(TypeWaveformBundle),
		DataKey: Map{
			"time":     timeAxis,
			"channels": channels,
		},
		MetaKey: meta,
	}
}

// EnsureMap returns the Map stored at key, creating an empty one when the
// key is absent or null. The caller must own p (a fresh clone); any
// existing non-mapping value is left untouched and the second return is
// false.
func EnsureMap(p Map, key string) (Map, bool) {
	switch existing := p[key].(type) {
	case Map:
		return existing, true
	case nil:
		created := Map{}
		p[key] = created
		return created, true
	default:
		return nil, false
	}
}

// Timestamp returns the current UTC time in the format history entries use.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// AppendHistory appends one operation record to meta.__history__, creating
// the meta mapping and the history list as needed. History is append-only;
// existing entries are never rewritten. The caller must own p.
func AppendHistory(p Map, entry Map) {
	meta, ok := EnsureMap(p, MetaKey)
	if !ok {
		return
	}
	history, _ := meta[HistoryKey].(List)
	meta[HistoryKey] = append(history, entry)
}

// History returns the payload's history entries, oldest first.
func History(p Map) List {
	meta, ok := p[MetaKey].(Map)
	if !ok {
		return nil
	}
	history, _ := meta[HistoryKey].(List)
	return history
}
