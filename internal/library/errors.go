package library

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error kinds. Every error returned by Service wraps exactly one of them.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConnection   = errors.New("store unavailable")
	ErrInternal     = errors.New("internal error")
)

// Error is the caller-safe failure of an operation. It names the operation
// and the kind of failure, never the underlying store error.
type Error struct {
	Op   string
	Kind error
	// Fields maps input field names to validation messages.
	Fields map[string]string
}

func (e *Error) Error() string {
	msg := "failed to " + e.Op + ": " + e.Kind.Error()
	if len(e.Fields) == 0 {
		return msg
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// invalid converts an ozzo validation result into a validation Error.
func invalid(op string, err error) *Error {
	fields := map[string]string{}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for name, fieldErr := range errs {
			if fieldErr != nil {
				fields[name] = fieldErr.Error()
			}
		}
	} else {
		fields["input"] = err.Error()
	}
	return &Error{Op: op, Kind: ErrValidation, Fields: fields}
}

func invalidField(op, field, message string) *Error {
	return &Error{Op: op, Kind: ErrValidation, Fields: map[string]string{field: message}}
}
