package protocol

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/errors"
)

// Per-element fixed overhead: tag byte, plus the u32 length prefix for
// String and Binary.
const (
	tagSize       = 1
	lengthSize    = 4
	uint32Wire    = tagSize + 4
	uint64Wire    = tagSize + 8
	varHeaderWire = tagSize + lengthSize
)

func elementWireSize(e Element) (uint64, error) {
	switch v := e.(type) {
	case Uint32:
		return uint32Wire, nil
	case Uint64:
		return uint64Wire, nil
	case String:
		n, err := encodedStringLen(string(v))
		if err != nil {
			return 0, err
		}
		return varHeaderWire + uint64(n), nil
	case Binary:
		return varHeaderWire + uint64(len(v)), nil
	default:
		return 0, errors.Wrapf(ErrContractViolation, "element of unknown variant %T", e)
	}
}

// PayloadSize returns the encoded size of the elements of m.
func (m *Message) PayloadSize() (uint32, error) {
	var total uint64
	for _, e := range m.Elements {
		n, err := elementWireSize(e)
		if err != nil {
			return 0, err
		}
		total += n
		if total+HeaderSize > MaxSize {
			return 0, errors.Wrapf(ErrSizeLimitExceeded, "payload exceeds %d bytes", MaxSize-HeaderSize)
		}
	}
	return uint32(total), nil
}

// Serialize encodes m, with the fixed header first when includeHeader is set.
func Serialize(m *Message, includeHeader bool) ([]byte, error) {
	if m == nil {
		return nil, errors.Wrap(ErrContractViolation, "serialize nil message")
	}
	size, err := m.PayloadSize()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize, HeaderSize+int(size))
	h := m.Header()
	h.PayloadSize = size
	putHeader(buf, h)

	for _, e := range m.Elements {
		buf, err = appendElement(buf, e)
		if err != nil {
			return nil, err
		}
	}
	if uint32(len(buf)-HeaderSize) != size {
		return nil, errors.Wrapf(ErrContractViolation, "payload size %d, wrote %d", size, len(buf)-HeaderSize)
	}
	if !includeHeader {
		return buf[HeaderSize:], nil
	}
	return buf, nil
}

// EncodeHeader returns the 24-byte wire form of h.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	putHeader(buf, h)
	return buf
}

func putHeader(buf []byte, h Header) {
	binary.BigEndian.PutUint32(buf[0:4], h.Major)
	binary.BigEndian.PutUint32(buf[4:8], h.Minor)
	binary.BigEndian.PutUint32(buf[8:12], h.Type)
	binary.BigEndian.PutUint64(buf[12:20], h.ID)
	binary.BigEndian.PutUint32(buf[20:24], h.PayloadSize)
}

func appendElement(buf []byte, e Element) ([]byte, error) {
	switch v := e.(type) {
	case Uint32:
		buf = append(buf, byte(KindUint32))
		return binary.BigEndian.AppendUint32(buf, uint32(v)), nil
	case Uint64:
		buf = append(buf, byte(KindUint64))
		return binary.BigEndian.AppendUint64(buf, uint64(v)), nil
	case String:
		raw, err := encodeString(string(v))
		if err != nil {
			return nil, err
		}
		buf = append(buf, byte(KindString))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(raw)))
		return append(buf, raw...), nil
	case Binary:
		buf = append(buf, byte(KindBinary))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
		return append(buf, v...), nil
	default:
		return nil, errors.Wrapf(ErrContractViolation, "element of unknown variant %T", e)
	}
}

// WriteMessage writes m, header included, to w in a single Write.
func WriteMessage(w io.Writer, m *Message) error {
	buf, err := Serialize(m, true)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "write message")
	}
	return nil
}
