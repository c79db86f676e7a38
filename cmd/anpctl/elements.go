package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danmuck/anp/internal/protocol"
	"github.com/go-faster/errors"
)

var errElementArg = errors.New("invalid element argument")

// parseElement reads one "kind:value" argument. Kinds are u32, u64, str and
// bin; bin takes hex.
func parseElement(arg string) (protocol.Element, error) {
	kind, value, ok := strings.Cut(arg, ":")
	if !ok {
		return nil, errors.Wrapf(errElementArg, "%q: want kind:value", arg)
	}
	switch strings.ToLower(kind) {
	case "u32":
		v, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return nil, errors.Wrapf(errElementArg, "%q: %v", arg, err)
		}
		return protocol.Uint32(v), nil
	case "u64":
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return nil, errors.Wrapf(errElementArg, "%q: %v", arg, err)
		}
		return protocol.Uint64(v), nil
	case "str":
		return protocol.String(value), nil
	case "bin":
		b, err := hex.DecodeString(value)
		if err != nil {
			return nil, errors.Wrapf(errElementArg, "%q: %v", arg, err)
		}
		return protocol.NewBinary(b), nil
	default:
		return nil, errors.Wrapf(errElementArg, "%q: unknown kind %q", arg, kind)
	}
}

func parseElements(args []string) ([]protocol.Element, error) {
	out := make([]protocol.Element, 0, len(args))
	for _, arg := range args {
		e, err := parseElement(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// formatElement renders e for table output. Long binaries are cut.
func formatElement(e protocol.Element) string {
	switch v := e.(type) {
	case protocol.Uint32:
		return strconv.FormatUint(uint64(v), 10)
	case protocol.Uint64:
		return strconv.FormatUint(uint64(v), 10)
	case protocol.String:
		if !utf8.ValidString(string(v)) {
			return fmt.Sprintf("%q", string(v))
		}
		return string(v)
	case protocol.Binary:
		const maxShown = 32
		if len(v) > maxShown {
			return hex.EncodeToString(v[:maxShown]) + fmt.Sprintf("... (%d bytes)", len(v))
		}
		return hex.EncodeToString(v)
	default:
		return "?"
	}
}
