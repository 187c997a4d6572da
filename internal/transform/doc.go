// Package transform implements the generic structural operations on
// payloads: Split partitions one payload into many along a mapping or list,
// Merge fuses several payloads' target mappings into one with configurable
// collision handling. Both return fresh payloads and never mutate their
// inputs.
package transform
