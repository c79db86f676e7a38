package protocol

import (
	"unicode/utf8"

	"github.com/go-faster/errors"
	"golang.org/x/text/encoding/charmap"
)

// Strings travel as ISO-8859-1: one byte per character.
var wireCharset = charmap.ISO8859_1

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func encodeString(s string) ([]byte, error) {
	if isASCII(s) {
		return []byte(s), nil
	}
	out, err := wireCharset.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(ErrStringEncoding, "encode %q: %v", s, err)
	}
	return out, nil
}

func encodedStringLen(s string) (int, error) {
	if isASCII(s) {
		return len(s), nil
	}
	out, err := encodeString(s)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

func decodeString(b []byte) string {
	if isASCII(string(b)) {
		return string(b)
	}
	out, err := wireCharset.NewDecoder().Bytes(b)
	if err != nil {
		// every byte has a mapping in ISO-8859-1
		return string(b)
	}
	return string(out)
}
