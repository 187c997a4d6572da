// Package payload defines the dynamic value tree that waveform payloads are
// built from, along with cloning, equality, a JSON codec, waveform
// constructors, history bookkeeping, and the in-memory payload registry.
//
// A payload is a Map conventionally shaped as:
//
//	{
//	  "type": "waveform_bundle",
//	  "data": {"time": Array, "channels": {name: Array, ...}},
//	  "meta": {"__uid__": ..., "__history__": [...], ...},
//	  "events": {...},
//	}
//
// Operators never mutate a payload they were handed; they deep-clone first
// or assemble new trees with copy-on-write path sets.
package payload
