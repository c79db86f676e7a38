//go:build linux || darwin

// Package reactor waits on socket readiness and drives one
// transport.Transport per attached peer. It owns everything the transport
// refuses to do: polling, outbound queuing, idle timeouts and teardown.
package reactor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/anp/internal/config"
	"github.com/danmuck/anp/internal/logging"
	"github.com/danmuck/anp/internal/netio"
	"github.com/danmuck/anp/internal/observability"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/danmuck/anp/internal/protocol/transport"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrPeerClosed   = errors.New("reactor: peer closed")
	ErrDetached     = errors.New("reactor: peer detached")
	ErrIdleTimeout  = errors.New("reactor: peer idle timeout")
	ErrTooManyPeers = errors.New("reactor: peer limit reached")
	ErrStopped      = errors.New("reactor: stopped")
)

// maxRounds bounds how many messages one peer may complete per readiness
// event before other peers get a turn.
const maxRounds = 16

type Config struct {
	PollInterval    time.Duration
	IdleTimeout     time.Duration
	MaxPeers        int
	MaxMessageBytes uint32
	LenientDecode   bool
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		PollInterval:    cfg.Reactor.PollInterval.Std(),
		IdleTimeout:     cfg.Reactor.IdleTimeout.Std(),
		MaxPeers:        cfg.Reactor.MaxPeers,
		MaxMessageBytes: cfg.Transport.MaxMessageBytes,
		LenientDecode:   cfg.Transport.LenientDecode,
	}
}

func DefaultConfig() Config {
	return ConfigFrom(config.Default())
}

// Handler receives reactor callbacks on the loop goroutine.
type Handler interface {
	HandleMessage(p *Peer, m *protocol.Message)
	PeerClosed(p *Peer, err error)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	OnMessage func(p *Peer, m *protocol.Message)
	OnClose   func(p *Peer, err error)
}

func (h HandlerFuncs) HandleMessage(p *Peer, m *protocol.Message) {
	if h.OnMessage != nil {
		h.OnMessage(p, m)
	}
}

func (h HandlerFuncs) PeerClosed(p *Peer, err error) {
	if h.OnClose != nil {
		h.OnClose(p, err)
	}
}

type Reactor struct {
	cfg     Config
	handler Handler
	logger  zerolog.Logger
	now     func() time.Time

	poller *Poller
	wakeR  *netio.Socket
	wakeW  *netio.Socket

	mu      sync.Mutex
	peers   map[uuid.UUID]*Peer
	byFd    map[int]*Peer
	pending []*Peer
	stopped bool
}

func New(cfg Config, handler Handler) (*Reactor, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if handler == nil {
		handler = HandlerFuncs{}
	}
	wakeR, wakeW, err := netio.Pair()
	if err != nil {
		return nil, errors.Wrap(err, "wake pair")
	}
	observability.RegisterMetrics()
	return &Reactor{
		cfg:     cfg,
		handler: handler,
		logger:  logging.Component("reactor"),
		now:     time.Now,
		poller:  NewPoller(),
		wakeR:   wakeR,
		wakeW:   wakeW,
		peers:   make(map[uuid.UUID]*Peer),
		byFd:    make(map[int]*Peer),
	}, nil
}

// Attach hands sock to the reactor and arms it to receive. The reactor
// closes sock when the peer goes away.
func (r *Reactor) Attach(sock *netio.Socket, remote string) (*Peer, error) {
	id := uuid.New()
	now := r.now()
	p := &Peer{
		ID:         id,
		Remote:     remote,
		sock:       sock,
		reactor:    r,
		attached:   now,
		lastActive: now,
	}
	p.tr = transport.New(sock,
		transport.WithMaxSize(r.cfg.MaxMessageBytes),
		transport.WithLenientDecode(r.cfg.LenientDecode),
		transport.WithLogger(r.logger.With().Str("peer", id.String()).Logger()),
	)
	if err := p.tr.BeginReceive(); err != nil {
		return nil, err
	}
	p.inState = p.tr.InState()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil, ErrStopped
	}
	if r.cfg.MaxPeers > 0 && len(r.peers) >= r.cfg.MaxPeers {
		r.mu.Unlock()
		return nil, errors.Wrapf(ErrTooManyPeers, "max %d", r.cfg.MaxPeers)
	}
	r.peers[id] = p
	r.byFd[sock.Fd()] = p
	r.pending = append(r.pending, p)
	r.mu.Unlock()

	observability.RecordPeerAttached()
	r.logger.Info().Str("peer", id.String()).Str("remote", remote).Msg("peer attached")
	r.Wake()
	return p, nil
}

// Detach asks the loop to close the peer. It reports whether the peer was
// known.
func (r *Reactor) Detach(id uuid.UUID) bool {
	p, ok := r.Peer(id)
	if ok {
		p.Close()
	}
	return ok
}

func (r *Reactor) Peer(id uuid.UUID) (*Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	return p, ok
}

// Peers returns a snapshot ordered by attach time.
func (r *Reactor) Peers() []PeerInfo {
	r.mu.Lock()
	list := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		list = append(list, p)
	}
	r.mu.Unlock()

	out := make([]PeerInfo, 0, len(list))
	for _, p := range list {
		out = append(out, p.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attached.Equal(out[j].Attached) {
			return out[i].ID < out[j].ID
		}
		return out[i].Attached.Before(out[j].Attached)
	})
	return out
}

// Wake interrupts a blocked Step.
func (r *Reactor) Wake() {
	_, _ = r.wakeW.Write([]byte{1})
}

// Run steps until ctx is done, then closes every peer.
func (r *Reactor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, r.Wake)
	defer stop()
	defer r.Close()

	r.logger.Info().Dur("poll_interval", r.cfg.PollInterval).Int("max_peers", r.cfg.MaxPeers).Msg("reactor running")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(r.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// Step runs one poll round: housekeeping, one Wait of at most timeout, and
// servicing of every ready peer. It must only be called from one goroutine.
func (r *Reactor) Step(timeout time.Duration) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	for _, p := range r.pending {
		r.poller.Add(p.sock.Fd())
	}
	r.pending = r.pending[:0]
	peers := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	r.mu.Unlock()
	r.poller.Add(r.wakeR.Fd())

	now := r.now()
	for _, p := range peers {
		if p.closing.Load() {
			r.closePeer(p, ErrDetached)
			continue
		}
		if r.cfg.IdleTimeout > 0 && now.Sub(p.idleSince()) > r.cfg.IdleTimeout {
			r.closePeer(p, ErrIdleTimeout)
			continue
		}
		if r.fillSend(p) {
			// bytes may move without waiting
			r.service(p)
		}
	}

	start := time.Now()
	events, err := r.poller.Wait(timeout, r.interest)
	observability.RecordPollWait(time.Since(start))
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.Fd == r.wakeR.Fd() {
			r.drainWake()
			continue
		}
		r.mu.Lock()
		p := r.byFd[ev.Fd]
		r.mu.Unlock()
		if p == nil || p.closed {
			continue
		}
		r.service(p)
	}
	return nil
}

// Close detaches every peer and releases the wake sockets. Call it from
// the loop goroutine or after Run has returned.
func (r *Reactor) Close() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	peers := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	r.mu.Unlock()

	for _, p := range peers {
		r.closePeer(p, ErrStopped)
	}
	_ = r.wakeR.Close()
	_ = r.wakeW.Close()
	r.logger.Info().Msg("reactor stopped")
}

func (r *Reactor) interest(fd int) (bool, bool) {
	if fd == r.wakeR.Fd() {
		return true, false
	}
	r.mu.Lock()
	p := r.byFd[fd]
	r.mu.Unlock()
	if p == nil {
		return false, false
	}
	return p.tr.IsReceiving() && !p.tr.DoneReceiving(), p.tr.IsSending()
}

func (r *Reactor) service(p *Peer) {
	for round := 0; round < maxRounds; round++ {
		err := p.tr.Pump()
		r.record(p)
		if err != nil {
			r.closePeer(p, err)
			return
		}

		progressed := false
		if p.tr.DoneReceiving() {
			m, err := p.tr.TakeReceived()
			if err != nil {
				r.closePeer(p, err)
				return
			}
			observability.RecordMessage(observability.DirectionIn, catalog.FamilyOf(m.Type).String(), payloadSize(m))
			r.logger.Debug().
				Str("peer", p.ID.String()).
				Uint64("id", m.ID).
				Str("type", catalog.Describe(m.Type)).
				Int("elements", m.Len()).
				Msg("message received")
			r.handler.HandleMessage(p, m)
			if p.closing.Load() {
				r.closePeer(p, ErrDetached)
				return
			}
			if err := p.tr.BeginReceive(); err != nil {
				r.closePeer(p, err)
				return
			}
			progressed = true
		}
		if r.fillSend(p) {
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

// fillSend moves the next queued message into the transport. Messages that
// fail to encode are dropped.
func (r *Reactor) fillSend(p *Peer) bool {
	if p.tr.IsSending() || p.tr.Err() != nil {
		return false
	}
	for {
		m := p.dequeue()
		if m == nil {
			return false
		}
		if err := p.tr.Send(m); err != nil {
			r.logger.Warn().Err(err).Str("peer", p.ID.String()).Uint64("id", m.ID).Msg("dropping unsendable message")
			continue
		}
		observability.RecordMessage(observability.DirectionOut, catalog.FamilyOf(m.Type).String(), payloadSize(m))
		return true
	}
}

func (r *Reactor) record(p *Peer) {
	delta := p.sync(r.now())
	observability.RecordBytes(observability.DirectionIn, delta.BytesIn)
	observability.RecordBytes(observability.DirectionOut, delta.BytesOut)
	observability.RecordSkippedTags(delta.SkippedTags)
}

func (r *Reactor) closePeer(p *Peer, cause error) {
	if p.closed {
		return
	}
	p.closed = true
	p.closing.Store(true)

	r.mu.Lock()
	delete(r.peers, p.ID)
	delete(r.byFd, p.sock.Fd())
	r.mu.Unlock()
	r.poller.Remove(p.sock.Fd())
	_ = p.sock.Close()

	reason := closeReason(cause)
	observability.RecordPeerClosed(reason)
	event := r.logger.Info()
	if reason != "detached" && reason != "stopped" && reason != "connection_lost" {
		event = r.logger.Warn()
	}
	event.Str("peer", p.ID.String()).Str("remote", p.Remote).Str("reason", reason).Err(cause).Msg("peer closed")
	r.handler.PeerClosed(p, cause)
}

func (r *Reactor) drainWake() {
	var buf [64]byte
	for {
		n, err := r.wakeR.Read(buf[:])
		if n == 0 || err != nil {
			return
		}
	}
}

func closeReason(err error) string {
	switch {
	case errors.Is(err, ErrDetached):
		return "detached"
	case errors.Is(err, ErrStopped):
		return "stopped"
	case errors.Is(err, ErrIdleTimeout):
		return "idle_timeout"
	case errors.Is(err, protocol.ErrConnectionLost):
		return "connection_lost"
	case errors.Is(err, protocol.ErrSizeLimitExceeded):
		return "size_limit"
	case errors.Is(err, protocol.ErrDecode):
		return "decode"
	default:
		return "socket_error"
	}
}

func payloadSize(m *protocol.Message) uint32 {
	n, err := m.PayloadSize()
	if err != nil {
		return 0
	}
	return n
}
