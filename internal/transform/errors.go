package transform

import "fmt"

// Error reports a structural precondition violation during a transform,
// e.g. the split source not matching the declared container type.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

func errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// SpecError reports an invalid configuration value: an unknown mode, policy,
// or a declared-but-unimplemented merge mode.
type SpecError struct {
	Msg string
}

func (e *SpecError) Error() string {
	return e.Msg
}

// Specf builds a SpecError. Exported because operator packages share this
// error class for their own enum validation.
func Specf(format string, args ...any) *SpecError {
	return &SpecError{Msg: fmt.Sprintf(format, args...)}
}

// CollisionError reports a merge key collision the configured policy could
// not resolve.
type CollisionError struct {
	Key string
	UID string
	Msg string
}

func (e *CollisionError) Error() string {
	return e.Msg
}

func collisionErr(key, uid, format string, args ...any) *CollisionError {
	return &CollisionError{Key: key, UID: uid, Msg: fmt.Sprintf(format, args...)}
}
