package protocol

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/errors"
)

// DecodeOptions controls payload parsing strictness.
type DecodeOptions struct {
	// Lenient skips unknown tag bytes one at a time instead of failing.
	Lenient bool
}

// DecodeStats reports what a lenient decode had to skip.
type DecodeStats struct {
	SkippedTags int
	// FirstSkipOffset is the payload offset of the first skipped tag, or -1.
	FirstSkipOffset int
}

// ParseHeader extracts the header fields. b must be exactly HeaderSize bytes.
func ParseHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, errors.Wrapf(ErrShortHeader, "got %d bytes, want %d", len(b), HeaderSize)
	}
	return Header{
		Major:       binary.BigEndian.Uint32(b[0:4]),
		Minor:       binary.BigEndian.Uint32(b[4:8]),
		Type:        binary.BigEndian.Uint32(b[8:12]),
		ID:          binary.BigEndian.Uint64(b[12:20]),
		PayloadSize: binary.BigEndian.Uint32(b[20:24]),
	}, nil
}

// ParsePayload decodes elements until b is exhausted.
func ParsePayload(b []byte, opts DecodeOptions) ([]Element, error) {
	elems, _, err := ParsePayloadStats(b, opts)
	return elems, err
}

// ParsePayloadStats is ParsePayload that also reports skipped tags.
func ParsePayloadStats(b []byte, opts DecodeOptions) ([]Element, DecodeStats, error) {
	stats := DecodeStats{FirstSkipOffset: -1}
	elems := make([]Element, 0)
	i := 0
	for i < len(b) {
		start := i
		tag := b[i]
		i++
		switch Kind(tag) {
		case KindUint32:
			if len(b)-i < 4 {
				return nil, stats, &DecodeError{Offset: start, Tag: tag, Reason: "truncated uint32"}
			}
			elems = append(elems, Uint32(binary.BigEndian.Uint32(b[i:i+4])))
			i += 4
		case KindUint64:
			if len(b)-i < 8 {
				return nil, stats, &DecodeError{Offset: start, Tag: tag, Reason: "truncated uint64"}
			}
			elems = append(elems, Uint64(binary.BigEndian.Uint64(b[i:i+8])))
			i += 8
		case KindString, KindBinary:
			if len(b)-i < lengthSize {
				return nil, stats, &DecodeError{Offset: start, Tag: tag, Reason: "truncated length prefix"}
			}
			n := binary.BigEndian.Uint32(b[i : i+lengthSize])
			i += lengthSize
			if uint64(len(b)-i) < uint64(n) {
				return nil, stats, &DecodeError{Offset: start, Tag: tag, Reason: "length prefix exceeds payload"}
			}
			raw := b[i : i+int(n)]
			i += int(n)
			if Kind(tag) == KindString {
				elems = append(elems, String(decodeString(raw)))
			} else {
				elems = append(elems, NewBinary(raw))
			}
		default:
			if !opts.Lenient {
				return nil, stats, &DecodeError{Offset: start, Tag: tag, Reason: "unknown element tag"}
			}
			if stats.SkippedTags == 0 {
				stats.FirstSkipOffset = start
			}
			stats.SkippedTags++
		}
	}
	return elems, stats, nil
}

// Deserialize decodes a whole message, header included, from one buffer.
// Bytes beyond the declared payload are ignored.
func Deserialize(b []byte, opts DecodeOptions) (*Message, error) {
	if len(b) < HeaderSize {
		return nil, errors.Wrapf(ErrShortHeader, "got %d bytes, want %d", len(b), HeaderSize)
	}
	h, err := ParseHeader(b[:HeaderSize])
	if err != nil {
		return nil, err
	}
	if h.PayloadSize > MaxSize {
		return nil, errors.Wrapf(ErrSizeLimitExceeded, "declared payload %d bytes", h.PayloadSize)
	}
	rest := b[HeaderSize:]
	if uint64(len(rest)) < uint64(h.PayloadSize) {
		return nil, &DecodeError{Offset: HeaderSize, Reason: "buffer shorter than declared payload"}
	}
	elems, err := ParsePayload(rest[:h.PayloadSize], opts)
	if err != nil {
		return nil, err
	}
	return messageFromHeader(h, elems), nil
}

// ReadMessage reads exactly one message from r, blocking as r does.
// Payloads larger than maxSize are rejected before allocation; zero means
// MaxSize.
func ReadMessage(r io.Reader, maxSize uint32, opts DecodeOptions) (*Message, error) {
	if maxSize == 0 || maxSize > MaxSize {
		maxSize = MaxSize
	}
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrap(ErrConnectionLost, "read header")
		}
		return nil, errors.Wrap(err, "read header")
	}
	h, err := ParseHeader(hb[:])
	if err != nil {
		return nil, err
	}
	if h.PayloadSize > maxSize {
		return nil, errors.Wrapf(ErrSizeLimitExceeded, "declared payload %d bytes, limit %d", h.PayloadSize, maxSize)
	}
	payload := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrap(ErrConnectionLost, "read payload")
		}
		return nil, errors.Wrap(err, "read payload")
	}
	elems, err := ParsePayload(payload, opts)
	if err != nil {
		return nil, err
	}
	return messageFromHeader(h, elems), nil
}

func messageFromHeader(h Header, elems []Element) *Message {
	return &Message{Major: h.Major, Minor: h.Minor, Type: h.Type, ID: h.ID, Elements: elems}
}
