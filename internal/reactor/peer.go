//go:build linux || darwin

package reactor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/anp/internal/netio"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/transport"
	"github.com/google/uuid"
)

// Peer is one attached connection. The outbound queue lives here; the
// Transport holds at most one message in flight.
type Peer struct {
	ID     uuid.UUID
	Remote string

	sock    *netio.Socket
	tr      *transport.Transport
	reactor *Reactor

	closing atomic.Bool
	closed  bool // loop goroutine only

	mu         sync.Mutex
	queue      []*protocol.Message
	attached   time.Time
	lastActive time.Time
	inState    transport.InState
	outState   transport.OutState
	stats      transport.Stats
	reported   transport.Stats
}

// PeerInfo is a point-in-time view of a Peer.
type PeerInfo struct {
	ID          string    `json:"id"`
	Remote      string    `json:"remote"`
	Attached    time.Time `json:"attached"`
	LastActive  time.Time `json:"last_active"`
	Queued      int       `json:"queued"`
	InState     string    `json:"in_state"`
	OutState    string    `json:"out_state"`
	BytesIn     uint64    `json:"bytes_in"`
	BytesOut    uint64    `json:"bytes_out"`
	MessagesIn  uint64    `json:"messages_in"`
	MessagesOut uint64    `json:"messages_out"`
}

// Send queues m for this peer. It may be called from any goroutine; the
// Peer takes ownership of m.
func (p *Peer) Send(m *protocol.Message) error {
	if m == nil {
		return nil
	}
	if p.closing.Load() {
		return ErrPeerClosed
	}
	p.mu.Lock()
	p.queue = append(p.queue, m)
	p.mu.Unlock()
	p.reactor.Wake()
	return nil
}

// Close asks the reactor to detach this peer on its next step.
func (p *Peer) Close() {
	if p.closing.CompareAndSwap(false, true) {
		p.reactor.Wake()
	}
}

func (p *Peer) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Peer) Info() PeerInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PeerInfo{
		ID:          p.ID.String(),
		Remote:      p.Remote,
		Attached:    p.attached,
		LastActive:  p.lastActive,
		Queued:      len(p.queue),
		InState:     p.inState.String(),
		OutState:    p.outState.String(),
		BytesIn:     p.stats.BytesIn,
		BytesOut:    p.stats.BytesOut,
		MessagesIn:  p.stats.MessagesIn,
		MessagesOut: p.stats.MessagesOut,
	}
}

func (p *Peer) dequeue() *protocol.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	m := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return m
}

func (p *Peer) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// sync copies transport state for Info and returns the counter growth
// since the previous call.
func (p *Peer) sync(now time.Time) transport.Stats {
	st := p.tr.Stats()
	p.mu.Lock()
	defer p.mu.Unlock()
	delta := transport.Stats{
		BytesIn:     st.BytesIn - p.reported.BytesIn,
		BytesOut:    st.BytesOut - p.reported.BytesOut,
		MessagesIn:  st.MessagesIn - p.reported.MessagesIn,
		MessagesOut: st.MessagesOut - p.reported.MessagesOut,
		SkippedTags: st.SkippedTags - p.reported.SkippedTags,
	}
	if delta.BytesIn > 0 || delta.BytesOut > 0 {
		p.lastActive = now
	}
	p.reported = st
	p.stats = st
	p.inState = p.tr.InState()
	p.outState = p.tr.OutState()
	return delta
}
