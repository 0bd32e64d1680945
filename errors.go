package cadyn

import (
	"errors"
	"fmt"
)

// Error kinds. Configuration and resource errors are fatal before work
// starts; malformed input is reported and skipped; IO errors are fatal for
// the operation that hit them.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrResource       = errors.New("resource error")
	ErrMalformedInput = errors.New("malformed input")
	ErrIO             = errors.New("io error")
)

// Rule-id decode failures. All of them also match ErrMalformedInput.
var (
	ErrIDLength = &Error{Kind: ErrMalformedInput, Msg: "id is wrong length"}
	ErrIDNonHex = &Error{Kind: ErrMalformedInput, Msg: "id contains non-hex characters"}
)

// Error carries one of the error kinds above plus a message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func configErrorf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func resourceErrorf(format string, args ...any) error {
	return &Error{Kind: ErrResource, Msg: fmt.Sprintf(format, args...)}
}

// ioError keeps both ErrIO and the underlying cause visible to errors.Is.
func ioError(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, args...), err)
}
