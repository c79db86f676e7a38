package protocol

import "github.com/go-faster/errors"

const (
	// HeaderSize is the fixed wire header length in bytes.
	HeaderSize = 24
	// MaxSize bounds a whole message, header included.
	MaxSize = 100 * 1024 * 1024
)

// Header is the fixed wire header.
type Header struct {
	Major       uint32
	Minor       uint32
	Type        uint32
	ID          uint64
	PayloadSize uint32
}

// Message is one ANP message. Elements are in wire order and are consumed
// head-first.
type Message struct {
	Major    uint32
	Minor    uint32
	Type     uint32
	ID       uint64
	Elements []Element
}

func NewMessage(major, minor, typ uint32, id uint64) *Message {
	return &Message{Major: major, Minor: minor, Type: typ, ID: id}
}

// Header returns the header fields of m. PayloadSize is left zero; use
// PayloadSize to compute it.
func (m *Message) Header() Header {
	return Header{Major: m.Major, Minor: m.Minor, Type: m.Type, ID: m.ID}
}

// Add appends e. A nil element is a contract violation and leaves m
// unchanged.
func (m *Message) Add(e Element) error {
	if e == nil {
		return errors.Wrap(ErrContractViolation, "add nil element")
	}
	if b, ok := e.(Binary); ok && b == nil {
		e = Binary{}
	}
	m.Elements = append(m.Elements, e)
	return nil
}

func (m *Message) AddUint32(v uint32) { m.Elements = append(m.Elements, Uint32(v)) }
func (m *Message) AddUint64(v uint64) { m.Elements = append(m.Elements, Uint64(v)) }
func (m *Message) AddString(v string) { m.Elements = append(m.Elements, String(v)) }

// AddBinary appends a copy of v; nil is stored as a zero-length value.
func (m *Message) AddBinary(v []byte) { m.Elements = append(m.Elements, NewBinary(v)) }

// Len returns the number of elements not yet consumed.
func (m *Message) Len() int {
	return len(m.Elements)
}

// PopHead removes and returns the first element.
func (m *Message) PopHead() (Element, error) {
	if len(m.Elements) == 0 {
		return nil, ErrEmptyQueue
	}
	e := m.Elements[0]
	m.Elements[0] = nil
	m.Elements = m.Elements[1:]
	return e, nil
}

func (m *Message) peek(want Kind) (Element, error) {
	if len(m.Elements) == 0 {
		return nil, ErrEmptyQueue
	}
	e := m.Elements[0]
	if e.Kind() != want {
		return nil, mismatch(e, want)
	}
	return e, nil
}

// PopUint32 consumes the head element as uint32. On mismatch the element
// stays in place.
func (m *Message) PopUint32() (uint32, error) {
	e, err := m.peek(KindUint32)
	if err != nil {
		return 0, err
	}
	_, _ = m.PopHead()
	return uint32(e.(Uint32)), nil
}

func (m *Message) PopUint64() (uint64, error) {
	e, err := m.peek(KindUint64)
	if err != nil {
		return 0, err
	}
	_, _ = m.PopHead()
	return uint64(e.(Uint64)), nil
}

func (m *Message) PopString() (string, error) {
	e, err := m.peek(KindString)
	if err != nil {
		return "", err
	}
	_, _ = m.PopHead()
	return string(e.(String)), nil
}

// PopBinary removes the head element and returns a copy of its bytes, like
// AsBinary. Callers never share storage with a Message.
func (m *Message) PopBinary() ([]byte, error) {
	e, err := m.peek(KindBinary)
	if err != nil {
		return nil, err
	}
	_, _ = m.PopHead()
	return NewBinary(e.(Binary)), nil
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	out := &Message{Major: m.Major, Minor: m.Minor, Type: m.Type, ID: m.ID}
	if m.Elements != nil {
		out.Elements = make([]Element, len(m.Elements))
		for i, e := range m.Elements {
			if b, ok := e.(Binary); ok {
				e = NewBinary(b)
			}
			out.Elements[i] = e
		}
	}
	return out
}

// Equal compares header fields and the element sequence.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Major != other.Major || m.Minor != other.Minor || m.Type != other.Type || m.ID != other.ID {
		return false
	}
	if len(m.Elements) != len(other.Elements) {
		return false
	}
	for i := range m.Elements {
		if !ElementsEqual(m.Elements[i], other.Elements[i]) {
			return false
		}
	}
	return true
}
