package pdu

import (
	"errors"
	"fmt"

	"github.com/ftl/tetra-air/bitbuf"
)

// The closed set of parse errors. All errors returned by the codecs match one of these with errors.Is.
var (
	ErrBufferExhausted   = bitbuf.ErrExhausted
	ErrPDUTypeMismatch   = errors.New("pdu type mismatch")
	ErrInvalidTerminator = errors.New("unexpected trailing element")
	ErrFieldNotPresent   = errors.New("field not present")
	ErrOutOfBounds       = errors.New("element out of bounds")
	ErrInvalidValue      = errors.New("invalid field value")
	ErrUnknownElement    = errors.New("unknown element identifier")
)

// TypeMismatchError is returned when the discriminator of a PDU does not match the expected PDU type.
type TypeMismatchError struct {
	PDU      string
	Expected uint64
	Found    uint64
}

func (e *TypeMismatchError) Error() string {
	if e.PDU == "" {
		return fmt.Sprintf("pdu type mismatch: expected %d, found %d", e.Expected, e.Found)
	}
	return fmt.Sprintf("%s: pdu type mismatch: expected %d, found %d", e.PDU, e.Expected, e.Found)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrPDUTypeMismatch
}

// ValueError is returned when a field holds a value that is not allowed at this place.
type ValueError struct {
	Field string
	Value uint64
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %d", e.Field, e.Value)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}

// LengthError is returned when the sub-elements of a type 4 element do not fill exactly its declared length.
type LengthError struct {
	Field    string
	Declared int
	Consumed int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: declared %d bits, but sub-elements consumed %d bits", e.Field, e.Declared, e.Consumed)
}

func (e *LengthError) Unwrap() error {
	return ErrOutOfBounds
}

// UnexpectedElementError is returned when a type 3 or type 4 element is found that the PDU does not define,
// or that was already decoded.
type UnexpectedElementError struct {
	ID       uint64
	Repeated bool
}

func (e *UnexpectedElementError) Error() string {
	if e.Repeated {
		return fmt.Sprintf("repeated element %d: %v", e.ID, ErrInvalidTerminator)
	}
	return fmt.Sprintf("%v %d", ErrUnknownElement, e.ID)
}

// Is matches ErrInvalidTerminator for any unexpected element and ErrUnknownElement only for elements not defined by the PDU.
func (e *UnexpectedElementError) Is(target error) bool {
	switch target {
	case ErrInvalidTerminator:
		return true
	case ErrUnknownElement:
		return !e.Repeated
	default:
		return false
	}
}

// FieldError attaches the name of the element to an error that occurred while processing it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ExpectDiscriminant checks a decoded PDU type against the expected one.
func ExpectDiscriminant(found, expected uint64) error {
	if found != expected {
		return &TypeMismatchError{Expected: expected, Found: found}
	}
	return nil
}

// ExpectValue checks that a field holds exactly the expected value.
func ExpectValue(field string, found, expected uint64) error {
	if found != expected {
		return &ValueError{Field: field, Value: found}
	}
	return nil
}

// ErrorKind returns a short stable name for the class of the given error, or "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBufferExhausted):
		return "buffer_exhausted"
	case errors.Is(err, ErrPDUTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrUnknownElement):
		return "unknown_element"
	case errors.Is(err, ErrInvalidTerminator):
		return "terminator"
	case errors.Is(err, ErrFieldNotPresent):
		return "not_present"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	default:
		return "other"
	}
}
