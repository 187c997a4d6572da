package paths

import (
	"fmt"
	"strings"

	"wavebench/internal/payload"
)

// SyntaxError reports a malformed path string.
type SyntaxError struct {
	Path   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Path, e.Reason)
}

func syntaxErr(path, reason string) *SyntaxError {
	return &SyntaxError{Path: path, Reason: reason}
}

// ResolutionError reports a valid path that could not be applied to the
// data: a token absent from the current mapping, or a non-mapping value
// encountered while tokens remain. Token is the failing token and
// Traversed the tokens successfully walked before it.
type ResolutionError struct {
	Token     string
	Traversed []string
	msg       string
}

func (e *ResolutionError) Error() string {
	return e.msg
}

func missingKeyErr(token string, traversed []string) *ResolutionError {
	return &ResolutionError{
		Token:     token,
		Traversed: traversed,
		msg:       fmt.Sprintf("missing key %q after traversing: %s", token, strings.Join(traversed, "/")),
	}
}

func notMappingErr(token string, traversed []string, found payload.Value) *ResolutionError {
	return &ResolutionError{
		Token:     token,
		Traversed: traversed,
		msg: fmt.Sprintf("cannot traverse into %q: value at %s is %s, expected mapping",
			token, strings.Join(traversed, "/"), payload.TypeName(found)),
	}
}
