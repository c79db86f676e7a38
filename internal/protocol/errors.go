package protocol

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrDecode            = errors.New("protocol: malformed payload")
	ErrSizeLimitExceeded = errors.New("protocol: message size limit exceeded")
	ErrEmptyQueue        = errors.New("protocol: no more elements in message")
	ErrTypeMismatch      = errors.New("protocol: element type mismatch")
	ErrConnectionLost    = errors.New("protocol: connection lost")
	ErrContractViolation = errors.New("protocol: contract violation")
	ErrStringEncoding    = errors.New("protocol: string not representable in wire charset")

	// ErrShortHeader matches ErrDecode as well.
	ErrShortHeader = fmt.Errorf("%w: short header", ErrDecode)
)

// DecodeError locates a payload decode failure.
type DecodeError struct {
	Offset int
	Tag    byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode offset=%d tag=%d: %s", e.Offset, e.Tag, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// MismatchError reports an element read through the wrong accessor.
type MismatchError struct {
	Got  Kind
	Want Kind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("protocol: element is %s, not %s", e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrTypeMismatch
}
