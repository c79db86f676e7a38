package protocol

import "bytes"

// Kind identifies an element variant. Values equal the wire tags.
type Kind uint8

const (
	KindUint32 Kind = 1
	KindUint64 Kind = 2
	KindString Kind = 3
	KindBinary Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindUint32:
		return "UInt32"
	case KindUint64:
		return "UInt64"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	default:
		return "Invalid"
	}
}

// Valid reports whether k is a known wire tag.
func (k Kind) Valid() bool {
	return k >= KindUint32 && k <= KindBinary
}

// Element is one typed value of a message payload. The set of
// implementations is closed: Uint32, Uint64, String and Binary.
type Element interface {
	Kind() Kind
	element()
}

type (
	Uint32 uint32
	Uint64 uint64
	String string
	Binary []byte
)

func (Uint32) Kind() Kind { return KindUint32 }
func (Uint64) Kind() Kind { return KindUint64 }
func (String) Kind() Kind { return KindString }
func (Binary) Kind() Kind { return KindBinary }

func (Uint32) element() {}
func (Uint64) element() {}
func (String) element() {}
func (Binary) element() {}

// NewBinary copies b. A nil slice becomes a zero-length value.
func NewBinary(b []byte) Binary {
	out := make(Binary, len(b))
	copy(out, b)
	return out
}

// AsUint32 returns the element value as uint32.
func AsUint32(e Element) (uint32, error) {
	v, ok := e.(Uint32)
	if !ok {
		return 0, mismatch(e, KindUint32)
	}
	return uint32(v), nil
}

// AsUint64 returns the element value as uint64.
func AsUint64(e Element) (uint64, error) {
	v, ok := e.(Uint64)
	if !ok {
		return 0, mismatch(e, KindUint64)
	}
	return uint64(v), nil
}

// AsString returns the element value as string.
func AsString(e Element) (string, error) {
	v, ok := e.(String)
	if !ok {
		return "", mismatch(e, KindString)
	}
	return string(v), nil
}

// AsBinary returns a copy of the element value, like PopBinary.
func AsBinary(e Element) ([]byte, error) {
	v, ok := e.(Binary)
	if !ok {
		return nil, mismatch(e, KindBinary)
	}
	return NewBinary(v), nil
}

// ElementsEqual compares variant and value.
func ElementsEqual(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if ab, ok := a.(Binary); ok {
		return bytes.Equal(ab, b.(Binary))
	}
	return a == b
}

func mismatch(e Element, want Kind) error {
	var got Kind
	if e != nil {
		got = e.Kind()
	}
	return &MismatchError{Got: got, Want: want}
}
