package domain

import "errors"

// Error is a classified domain failure. Code is reported as err_code in logs.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrNotFound reports that a referenced category or service does not exist.
	ErrNotFound = &Error{code: "NOT_FOUND", msg: "not found"}
	// ErrInvalidReference reports a write that would break referential integrity.
	ErrInvalidReference = &Error{code: "INVALID_REFERENCE", msg: "invalid reference"}
	// ErrInvalidQuantity reports a non-positive cart delta.
	ErrInvalidQuantity = &Error{code: "INVALID_QUANTITY", msg: "quantity delta must be positive"}
	// ErrStoreUnavailable reports a connection or transaction failure.
	ErrStoreUnavailable = &Error{code: "STORE_UNAVAILABLE", msg: "store unavailable"}
	// ErrUnrecognizedToken reports an inbound token the dispatcher cannot decode.
	ErrUnrecognizedToken = &Error{code: "UNRECOGNIZED_TOKEN", msg: "unrecognized token"}
)

// Recoverable reports whether err should be answered with the fallback page
// instead of failing the event.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnrecognizedToken) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidQuantity)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code()
	}
	return ""
}
