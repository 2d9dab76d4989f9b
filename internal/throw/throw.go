// Package throw carries the two kinds of failure the mesh code can hit.
//
// Threading errors through every recursive flip and retriangulation step would
// add a lot of noise to the geometry code. Instead, internal packages panic,
// and the public API recovers and converts precondition failures to errors.
// Invariant failures mean the mesh is already corrupt, so they keep panicking.
package throw

import "github.com/pkg/errors"

// PreconditionError reports a caller mistake: a missing vertex, a point out of
// bounds, a degenerate triangle, or a constraint that crosses another one.
type PreconditionError struct {
	error
}

// InvariantError reports internal corruption, e.g. no legal ear during vertex
// removal.
type InvariantError struct {
	error
}

func (e PreconditionError) Unwrap() error { return e.error }
func (e InvariantError) Unwrap() error    { return e.error }

// Preconditionf panics with a PreconditionError.
func Preconditionf(format string, args ...interface{}) {
	panic(PreconditionError{errors.Errorf(format, args...)})
}

// Invariantf panics with an InvariantError.
func Invariantf(format string, args ...interface{}) {
	panic(InvariantError{errors.Errorf(format, args...)})
}

// Recover converts a recovered PreconditionError into an error. Anything else,
// including InvariantError, is re-panicked. A nil value yields nil.
func Recover(r interface{}) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(PreconditionError); ok {
		return err
	}
	panic(r)
}
