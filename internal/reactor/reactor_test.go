//go:build linux || darwin

package reactor

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/danmuck/anp/internal/netio"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/danmuck/anp/internal/testutil/testlog"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	r  *Reactor
	ln net.Listener
}

func newHarness(t *testing.T, cfg Config, h Handler) *harness {
	t.Helper()
	testlog.Start(t)
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 20 * time.Millisecond
	}
	r, err := New(cfg, h)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			remote := c.RemoteAddr().String()
			sock, err := netio.FromTCPConn(c.(*net.TCPConn))
			if err != nil {
				continue
			}
			if _, err := r.Attach(sock, remote); err != nil {
				_ = sock.Close()
			}
		}
	}()

	t.Cleanup(func() {
		cancel()
		_ = ln.Close()
		select {
		case err := <-done:
			assert.True(t, errors.Is(err, context.Canceled), "run: %v", err)
		case <-time.After(5 * time.Second):
			t.Errorf("reactor did not stop")
		}
	})
	return &harness{r: r, ln: ln}
}

func (h *harness) dial(t *testing.T) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", h.ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, c.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitPeers(t *testing.T, r *Reactor, n int) []PeerInfo {
	t.Helper()
	var peers []PeerInfo
	require.Eventually(t, func() bool {
		peers = r.Peers()
		return len(peers) == n
	}, 5*time.Second, 10*time.Millisecond)
	return peers
}

func echo() HandlerFuncs {
	return HandlerFuncs{
		OnMessage: func(p *Peer, m *protocol.Message) {
			reply := m.Clone()
			reply.Type = catalog.WithRole(m.Type, catalog.RoleResponse)
			_ = p.Send(reply)
		},
	}
}

func request(id uint64) *protocol.Message {
	m := protocol.NewMessage(catalog.KANPMajor, catalog.KANPMinor, catalog.KANPCmdKWSConnectKWS, id)
	m.AddUint64(id * 10)
	m.AddString("kws")
	return m
}

func TestEchoRoundTrips(t *testing.T) {
	h := newHarness(t, Config{}, echo())
	c := h.dial(t)

	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, protocol.WriteMessage(c, request(id)))
	}
	for id := uint64(1); id <= 3; id++ {
		got, err := protocol.ReadMessage(c, 0, protocol.DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, catalog.KANPResKWSConnectKWS, got.Type)
		v, err := got.PopUint64()
		require.NoError(t, err)
		assert.Equal(t, id*10, v)
	}

	peers := waitPeers(t, h.r, 1)
	assert.Equal(t, uint64(3), peers[0].MessagesIn)
	assert.NotEmpty(t, peers[0].ID)
}

func TestHandlerQueuesSeveralReplies(t *testing.T) {
	h := newHarness(t, Config{}, HandlerFuncs{
		OnMessage: func(p *Peer, m *protocol.Message) {
			for i := uint64(0); i < 3; i++ {
				reply := protocol.NewMessage(m.Major, m.Minor, catalog.KANPResOK, m.ID+i)
				reply.AddBinary(make([]byte, 64<<10))
				_ = p.Send(reply)
			}
		},
	})
	c := h.dial(t)
	require.NoError(t, protocol.WriteMessage(c, request(100)))

	for i := uint64(0); i < 3; i++ {
		got, err := protocol.ReadMessage(c, 0, protocol.DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, 100+i, got.ID)
	}
}

func TestPeerCloseNotifiesHandler(t *testing.T) {
	closed := make(chan error, 4)
	h := newHarness(t, Config{}, HandlerFuncs{OnClose: func(_ *Peer, err error) { closed <- err }})
	c := h.dial(t)
	waitPeers(t, h.r, 1)
	require.NoError(t, c.Close())

	select {
	case err := <-closed:
		assert.True(t, errors.Is(err, protocol.ErrConnectionLost), "err=%v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no close callback")
	}
	waitPeers(t, h.r, 0)
}

func TestIdleTimeout(t *testing.T) {
	closed := make(chan error, 4)
	h := newHarness(t, Config{IdleTimeout: 60 * time.Millisecond}, HandlerFuncs{OnClose: func(_ *Peer, err error) { closed <- err }})
	h.dial(t)

	select {
	case err := <-closed:
		assert.True(t, errors.Is(err, ErrIdleTimeout), "err=%v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("idle peer not closed")
	}
}

func TestDetach(t *testing.T) {
	closed := make(chan error, 4)
	h := newHarness(t, Config{}, HandlerFuncs{OnClose: func(_ *Peer, err error) { closed <- err }})
	c := h.dial(t)
	peers := waitPeers(t, h.r, 1)

	p, ok := h.r.Peer(mustUUID(t, peers[0].ID))
	require.True(t, ok)
	assert.True(t, h.r.Detach(p.ID))

	select {
	case err := <-closed:
		assert.True(t, errors.Is(err, ErrDetached), "err=%v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("detach not processed")
	}
	assert.True(t, errors.Is(p.Send(request(1)), ErrPeerClosed))

	_, err := protocol.ReadMessage(c, 0, protocol.DecodeOptions{})
	assert.True(t, errors.Is(err, protocol.ErrConnectionLost), "err=%v", err)
}

func TestOversizeMessageClosesPeer(t *testing.T) {
	closed := make(chan error, 4)
	h := newHarness(t, Config{MaxMessageBytes: 32}, HandlerFuncs{OnClose: func(_ *Peer, err error) { closed <- err }})
	c := h.dial(t)

	big := protocol.NewMessage(0, 6, catalog.KANPCmdChatMsg, 1)
	big.AddString(string(make([]byte, 64)))
	require.NoError(t, protocol.WriteMessage(c, big))

	select {
	case err := <-closed:
		assert.True(t, errors.Is(err, protocol.ErrSizeLimitExceeded), "err=%v", err)
		assert.Equal(t, "size_limit", closeReason(err))
	case <-time.After(5 * time.Second):
		t.Fatal("oversize peer not closed")
	}
}

func TestMaxPeers(t *testing.T) {
	testlog.Start(t)
	r, err := New(Config{MaxPeers: 1, PollInterval: time.Millisecond}, nil)
	require.NoError(t, err)
	defer r.Close()

	a, b, err := netio.Pair()
	require.NoError(t, err)
	defer b.Close()
	_, err = r.Attach(a, "pair-a")
	require.NoError(t, err)

	c, d, err := netio.Pair()
	require.NoError(t, err)
	defer c.Close()
	defer d.Close()
	_, err = r.Attach(c, "pair-c")
	assert.True(t, errors.Is(err, ErrTooManyPeers), "err=%v", err)
}

func TestStepWithoutRun(t *testing.T) {
	testlog.Start(t)
	got := make(chan *protocol.Message, 1)
	r, err := New(Config{PollInterval: time.Millisecond}, HandlerFuncs{
		OnMessage: func(_ *Peer, m *protocol.Message) { got <- m },
	})
	require.NoError(t, err)

	a, b, err := netio.Pair()
	require.NoError(t, err)
	defer b.Close()
	_, err = r.Attach(a, "pair")
	require.NoError(t, err)

	buf, err := protocol.Serialize(request(7), true)
	require.NoError(t, err)
	_, err = b.Write(buf)
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for len(got) == 0 && time.Now().Before(deadline) {
		require.NoError(t, r.Step(10*time.Millisecond))
	}
	require.Len(t, got, 1)
	assert.True(t, request(7).Equal(<-got))

	r.Close()
	assert.True(t, errors.Is(r.Step(0), ErrStopped))
	assert.Empty(t, r.Peers())
}

func TestCloseReason(t *testing.T) {
	assert.Equal(t, "connection_lost", closeReason(errors.Wrap(protocol.ErrConnectionLost, "read")))
	assert.Equal(t, "decode", closeReason(&protocol.DecodeError{Reason: "x"}))
	assert.Equal(t, "socket_error", closeReason(errors.New("boom")))
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
