package contact

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of a write operation.
//
// Codes are ordered by precedence: when a batch produces several codes the
// numerically greatest one is reported as the aggregate outcome.
type Code int

const (
	NoError Code = iota
	// BadArgument rejects a request that is well-formed but not allowed,
	// such as removing the self contact.
	BadArgument
	// DoesNotExist reports a referenced contact or relationship that is absent.
	DoesNotExist
	// InvalidDetail reports a detail kind the engine cannot store.
	InvalidDetail
	// InvalidRelationship reports a bad endpoint, a self-loop or a foreign
	// manager qualifier on a relationship.
	InvalidRelationship
	// Unspecified is a storage-layer failure (prepare, exec or commit).
	Unspecified
)

var codeNames = map[Code]string{
	NoError:             "NO_ERROR",
	BadArgument:         "BAD_ARGUMENT",
	DoesNotExist:        "DOES_NOT_EXIST",
	InvalidDetail:       "INVALID_DETAIL",
	InvalidRelationship: "INVALID_RELATIONSHIP",
	Unspecified:         "UNSPECIFIED",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode maps a name produced by String back to its code.
func ParseCode(name string) (Code, error) {
	for c, n := range codeNames {
		if n == name {
			return c, nil
		}
	}
	return NoError, fmt.Errorf("unknown error code %q", name)
}

// Worst returns the code with the higher precedence.
func Worst(a, b Code) Code {
	if b > a {
		return b
	}
	return a
}

// Error is the error type returned by writer operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed, e.g. "save contacts".
	Op string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code.
func NewError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf extracts the Code carried by err.
// A nil error is NoError; an error that is not an *Error is Unspecified.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unspecified
}

// ErrorMap records per-item outcomes of a batch, keyed by input index.
// Items that succeeded are absent.
type ErrorMap map[int]Code

// Set records code for index i. NoError is never stored.
func (m ErrorMap) Set(i int, code Code) {
	if code == NoError {
		return
	}
	m[i] = code
}

// Worst returns the highest precedence code recorded in the map.
func (m ErrorMap) Worst() Code {
	worst := NoError
	for _, c := range m {
		worst = Worst(worst, c)
	}
	return worst
}
