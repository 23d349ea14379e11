package extract

import (
	"errors"
	"fmt"
)

// Operations reported in Error.Op and in extraction metrics.
const (
	OpSearch  = "search"
	OpResolve = "resolve"
)

// Error reports a failure inside the extraction library: network errors,
// unavailable or private content, missing page data. Anything that is not an
// *Error is a bug or an unexpected condition.
type Error struct {
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: extraction failed", e.Op, e.Target)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Op: op, Target: target, Err: err}
}

// IsExtractionError reports whether err originated in the extraction library.
func IsExtractionError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
