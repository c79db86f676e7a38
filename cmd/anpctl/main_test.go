package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/anp/internal/config"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/danmuck/anp/internal/reactor"
	"github.com/danmuck/anp/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElement(t *testing.T) {
	cases := []struct {
		arg  string
		want protocol.Element
	}{
		{"u32:7", protocol.Uint32(7)},
		{"u32:0x10", protocol.Uint32(16)},
		{"u64:18446744073709551615", protocol.Uint64(^uint64(0))},
		{"str:hello:world", protocol.String("hello:world")},
		{"str:", protocol.String("")},
		{"bin:dead", protocol.Binary{0xde, 0xad}},
		{"BIN:", protocol.Binary{}},
	}
	for _, tc := range cases {
		got, err := parseElement(tc.arg)
		require.NoError(t, err, tc.arg)
		assert.True(t, protocol.ElementsEqual(tc.want, got), "%s: got %#v", tc.arg, got)
	}
}

func TestParseElementErrors(t *testing.T) {
	for _, arg := range []string{"7", "u32:4294967296", "u64:-1", "bin:xyz", "f64:1.5"} {
		_, err := parseElement(arg)
		assert.ErrorIs(t, err, errElementArg, arg)
	}
}

func TestFormatElementTruncatesBinary(t *testing.T) {
	out := formatElement(protocol.NewBinary(make([]byte, 40)))
	assert.True(t, strings.HasSuffix(out, "... (40 bytes)"), out)
	assert.Equal(t, "12", formatElement(protocol.Uint32(12)))
}

func TestEncodeDecodeCommands(t *testing.T) {
	testlog.Start(t)
	var encoded bytes.Buffer
	rootCmd.SetOut(&encoded)
	rootCmd.SetArgs([]string{"encode", "--type", "KANP_CMD_CHAT_MSG", "--id", "9", "--hex", "u64:7", "str:hi"})
	require.NoError(t, rootCmd.Execute())

	raw, err := hex.DecodeString(strings.TrimSpace(encoded.String()))
	require.NoError(t, err)
	m, err := protocol.Deserialize(raw, protocol.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, catalog.KANPCmdChatMsg, m.Type)
	assert.Equal(t, uint64(9), m.ID)
	require.Len(t, m.Elements, 2)

	var decoded bytes.Buffer
	rootCmd.SetOut(&decoded)
	rootCmd.SetIn(strings.NewReader(encoded.String()))
	rootCmd.SetArgs([]string{"decode", "--hex"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, decoded.String(), "KANP_CMD_CHAT_MSG")
	assert.Contains(t, decoded.String(), "hi")
}

func TestConfigInitAndCheck(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "anp.yaml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init", "--format", "yaml", path})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"config", "check", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "ok: listen=127.0.0.1:4400")
}

func TestServeEchoRoundTrip(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Reactor.PollInterval = config.Duration(20 * time.Millisecond)
	r, err := reactor.New(reactor.ConfigFrom(cfg), echoHandler())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = r.Run(ctx)
	}()
	go func() { _ = acceptLoop(ctx, ln, r) }()
	t.Cleanup(func() {
		cancel()
		ln.Close()
		<-runDone
	})

	m := protocol.NewMessage(catalog.KANPMajor, catalog.KANPMinor, catalog.KANPCmdChatMsg, 42)
	m.AddString("ping")

	rtCtx, rtCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rtCancel()
	reply, err := roundTrip(rtCtx, ln.Addr().String(), m)
	require.NoError(t, err)
	assert.Equal(t, catalog.WithRole(catalog.KANPCmdChatMsg, catalog.RoleResponse), reply.Type)
	assert.Equal(t, uint64(42), reply.ID)
	s, err := reply.PopString()
	require.NoError(t, err)
	assert.Equal(t, "ping", s)
}
