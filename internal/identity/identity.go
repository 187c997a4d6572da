// Package identity derives stable string identifiers for payloads from an
// ordered list of metadata paths.
package identity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wavebench/internal/paths"
	"wavebench/internal/payload"
)

// Spec describes how to compute a payload identifier: resolve each of
// IDPaths in order (skipping paths that do not resolve and null values),
// stringify, optionally sanitize, and join. When nothing resolves the
// identifier is Fallback alone.
type Spec struct {
	IDPaths  []string
	Fallback string
	Joiner   string
	Sanitize bool
}

// NewSpec returns a Spec over idPaths with the standard fallback ("payload"),
// joiner ("__"), and sanitization enabled.
func NewSpec(idPaths ...string) Spec {
	return Spec{
		IDPaths:  idPaths,
		Fallback: "payload",
		Joiner:   "__",
		Sanitize: true,
	}
}

// Default returns the id spec used when a transform is not given one:
// uid first, then the importer-supplied provenance fields.
func Default() Spec {
	return NewSpec("meta.__uid__", "meta.file", "meta.shot", "meta.scope")
}

// OperatorDefault returns the id spec operators use to ensure meta.__uid__
// on their outputs.
func OperatorDefault() Spec {
	return NewSpec("meta.file", "meta.shot", "meta.scope")
}

var sanitizePattern = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Sanitize reduces a string to the identifier-safe alphabet: runs outside
// [A-Za-z0-9_.-] become "_", leading/trailing underscores are trimmed, and
// an empty result substitutes "part".
func Sanitize(part string) string {
	return sanitizePart(part)
}

func sanitizePart(part string) string {
	clean := strings.Trim(sanitizePattern.ReplaceAllString(part, "_"), "_")
	if clean == "" {
		return "part"
	}
	return clean
}

// Compute derives the identifier for p under spec. Deterministic: the same
// payload and spec always produce the same string, and part order follows
// spec.IDPaths.
func Compute(p payload.Map, spec Spec) string {
	var parts []string
	for _, idPath := range spec.IDPaths {
		value, err := paths.Resolve(p, idPath)
		if err != nil {
			continue
		}
		if value == nil {
			continue
		}
		parts = append(parts, Stringify(value))
	}

	if len(parts) == 0 {
		parts = append(parts, spec.Fallback)
	}

	if spec.Sanitize {
		for i, part := range parts {
			parts[i] = sanitizePart(part)
		}
	}

	return strings.Join(parts, spec.Joiner)
}

// Stringify renders a payload value as an identifier part. Integral numbers
// render without a decimal point.
func Stringify(v payload.Value) string {
	switch val := v.(type) {
	case payload.String:
		return string(val)
	case payload.Number:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case payload.Bool:
		return strconv.FormatBool(bool(val))
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}
