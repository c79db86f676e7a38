// Package transport moves whole ANP messages over a non-blocking byte
// stream. A Transport never waits: Pump advances the inbound and outbound
// state machines as far as the connection allows and returns when every
// active direction would block. Readiness waiting, queuing and timeouts
// belong to the caller.
package transport

import (
	"io"

	"github.com/danmuck/anp/internal/logging"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// ErrWouldBlock is returned by a Conn when no bytes can move right now.
// Pump never surfaces it.
var ErrWouldBlock = errors.New("transport: operation would block")

// Conn is a non-blocking byte stream.
//
// Read and Write return n > 0 on progress, (0, ErrWouldBlock) when nothing
// can move, (0, nil) or io.EOF once the peer has closed, and any other
// error for a hard failure.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

type InState uint8

const (
	InIdle InState = iota
	InReceivingHeader
	InReceivingPayload
	InReady
	InBroken
)

func (s InState) String() string {
	switch s {
	case InIdle:
		return "idle"
	case InReceivingHeader:
		return "receiving_header"
	case InReceivingPayload:
		return "receiving_payload"
	case InReady:
		return "ready"
	case InBroken:
		return "broken"
	default:
		return "unknown"
	}
}

type OutState uint8

const (
	OutIdle OutState = iota
	OutSending
	OutBroken
)

func (s OutState) String() string {
	switch s {
	case OutIdle:
		return "idle"
	case OutSending:
		return "sending"
	case OutBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Stats are running counters for one Transport.
type Stats struct {
	BytesIn     uint64
	BytesOut    uint64
	MessagesIn  uint64
	MessagesOut uint64
	SkippedTags uint64
}

// Transport drives one Conn. It is not safe for concurrent use.
type Transport struct {
	conn       Conn
	maxPayload uint32
	decode     protocol.DecodeOptions
	logger     zerolog.Logger

	in       InState
	inHeader [protocol.HeaderSize]byte
	inHead   protocol.Header
	inBuf    []byte
	inPos    int
	inMsg    *protocol.Message

	out    OutState
	outBuf []byte
	outPos int

	err   error
	stats Stats
}

type Option func(*Transport)

// WithMaxSize caps the declared payload size accepted from the peer and
// sent to it. Zero or values above protocol.MaxSize mean protocol.MaxSize.
func WithMaxSize(n uint32) Option {
	return func(t *Transport) {
		if n == 0 || n > protocol.MaxSize {
			n = protocol.MaxSize
		}
		t.maxPayload = n
	}
}

// WithLenientDecode skips unknown element tags instead of failing.
func WithLenientDecode(lenient bool) Option {
	return func(t *Transport) {
		t.decode.Lenient = lenient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func New(conn Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:       conn,
		maxPayload: protocol.MaxSize,
		logger:     logging.Component("transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Conn() Conn { return t.conn }

// BeginReceive arms the inbound side for one message.
func (t *Transport) BeginReceive() error {
	if t.err != nil {
		return t.err
	}
	if t.in != InIdle {
		return errors.Wrapf(protocol.ErrContractViolation, "begin receive in state %s", t.in)
	}
	t.in = InReceivingHeader
	t.inPos = 0
	t.inBuf = nil
	t.inMsg = nil
	return nil
}

// Send serializes m and makes it the single in-flight outbound message.
// Encoding failures are returned here and leave the Transport usable.
func (t *Transport) Send(m *protocol.Message) error {
	if t.err != nil {
		return t.err
	}
	if t.out != OutIdle {
		return errors.Wrap(protocol.ErrContractViolation, "send while a message is in flight")
	}
	buf, err := protocol.Serialize(m, true)
	if err != nil {
		return err
	}
	if payload := len(buf) - protocol.HeaderSize; uint64(payload) > uint64(t.maxPayload) {
		return errors.Wrapf(protocol.ErrSizeLimitExceeded, "payload %d bytes, limit %d", payload, t.maxPayload)
	}
	t.out = OutSending
	t.outBuf = buf
	t.outPos = 0
	return nil
}

// TakeReceived hands over the completed inbound message and returns the
// inbound side to idle.
func (t *Transport) TakeReceived() (*protocol.Message, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.in != InReady {
		return nil, errors.Wrapf(protocol.ErrContractViolation, "take received in state %s", t.in)
	}
	m := t.inMsg
	t.flushReceive()
	return m, nil
}

// Pump moves bytes until every active direction would block. After a
// failure the Transport is broken and Pump keeps returning the same error.
func (t *Transport) Pump() error {
	if t.err != nil {
		return t.err
	}
	if err := t.pump(); err != nil {
		t.err = err
		t.in = InBroken
		t.out = OutBroken
		t.inBuf = nil
		t.outBuf = nil
		t.logger.Debug().Err(err).Msg("transport broken")
		return err
	}
	return nil
}

func (t *Transport) pump() error {
	for {
		progressed := false

		if t.in == InReceivingHeader {
			n, err := t.read(t.inHeader[t.inPos:])
			if err != nil {
				return err
			}
			if n > 0 {
				progressed = true
				t.inPos += n
				if t.inPos == protocol.HeaderSize {
					if err := t.headerComplete(); err != nil {
						return err
					}
				}
			}
		}

		if t.in == InReceivingPayload {
			n, err := t.read(t.inBuf[t.inPos:])
			if err != nil {
				return err
			}
			if n > 0 {
				progressed = true
				t.inPos += n
				if t.inPos == len(t.inBuf) {
					if err := t.payloadComplete(); err != nil {
						return err
					}
				}
			}
		}

		if t.out == OutSending {
			n, err := t.write(t.outBuf[t.outPos:])
			if err != nil {
				return err
			}
			if n > 0 {
				progressed = true
				t.outPos += n
				if t.outPos == len(t.outBuf) {
					t.flushSend()
					t.stats.MessagesOut++
				}
			}
		}

		if !progressed {
			return nil
		}
	}
}

func (t *Transport) headerComplete() error {
	h, err := protocol.ParseHeader(t.inHeader[:])
	if err != nil {
		return err
	}
	if h.PayloadSize > t.maxPayload {
		return errors.Wrapf(protocol.ErrSizeLimitExceeded, "peer declared %d payload bytes, limit %d", h.PayloadSize, t.maxPayload)
	}
	t.inHead = h
	t.logger.Trace().
		Uint32("type", h.Type).
		Uint64("id", h.ID).
		Uint32("payload", h.PayloadSize).
		Msg("header received")

	if h.PayloadSize == 0 {
		t.finishMessage(nil)
		return nil
	}
	t.inBuf = make([]byte, h.PayloadSize)
	t.inPos = 0
	t.in = InReceivingPayload
	return nil
}

func (t *Transport) payloadComplete() error {
	elems, stats, err := protocol.ParsePayloadStats(t.inBuf, t.decode)
	if err != nil {
		return errors.Wrapf(err, "message type=0x%08x id=%d", t.inHead.Type, t.inHead.ID)
	}
	if stats.SkippedTags > 0 {
		t.stats.SkippedTags += uint64(stats.SkippedTags)
		t.logger.Debug().
			Uint64("id", t.inHead.ID).
			Int("skipped", stats.SkippedTags).
			Int("first_offset", stats.FirstSkipOffset).
			Msg("skipped unknown element tags")
	}
	t.finishMessage(elems)
	return nil
}

func (t *Transport) finishMessage(elems []protocol.Element) {
	h := t.inHead
	if elems == nil {
		elems = []protocol.Element{}
	}
	t.inMsg = &protocol.Message{Major: h.Major, Minor: h.Minor, Type: h.Type, ID: h.ID, Elements: elems}
	t.inBuf = nil
	t.inPos = 0
	t.in = InReady
	t.stats.MessagesIn++
}

// read returns (0, nil) when the read would block.
func (t *Transport) read(p []byte) (int, error) {
	n, err := t.conn.Read(p)
	if n > 0 {
		t.stats.BytesIn += uint64(n)
		if err != nil && !isSoft(err) {
			return n, classify(err, "read")
		}
		return n, nil
	}
	if errors.Is(err, ErrWouldBlock) {
		return 0, nil
	}
	if err == nil {
		return 0, errors.Wrap(protocol.ErrConnectionLost, "read returned no data")
	}
	return 0, classify(err, "read")
}

func (t *Transport) write(p []byte) (int, error) {
	n, err := t.conn.Write(p)
	if n > 0 {
		t.stats.BytesOut += uint64(n)
		if err != nil && !isSoft(err) {
			return n, classify(err, "write")
		}
		return n, nil
	}
	if errors.Is(err, ErrWouldBlock) {
		return 0, nil
	}
	if err == nil {
		return 0, errors.Wrap(protocol.ErrConnectionLost, "write accepted no data")
	}
	return 0, classify(err, "write")
}

// isSoft reports errors that may accompany a partial transfer and are
// picked up on the next call.
func isSoft(err error) bool {
	return errors.Is(err, ErrWouldBlock) || errors.Is(err, io.EOF)
}

func classify(err error, op string) error {
	if errors.Is(err, protocol.ErrConnectionLost) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(protocol.ErrConnectionLost, op)
	}
	return errors.Wrap(err, op)
}

func (t *Transport) IsReceiving() bool   { return t.in != InIdle && t.in != InBroken }
func (t *Transport) DoneReceiving() bool { return t.in == InReady }
func (t *Transport) IsSending() bool     { return t.out == OutSending }
func (t *Transport) InState() InState    { return t.in }
func (t *Transport) OutState() OutState  { return t.out }
func (t *Transport) Stats() Stats        { return t.stats }

// Err returns the error that broke the Transport, if any.
func (t *Transport) Err() error { return t.err }

// WantsRead returns how many more bytes the current inbound step needs.
func (t *Transport) WantsRead() int {
	switch t.in {
	case InReceivingHeader:
		return protocol.HeaderSize - t.inPos
	case InReceivingPayload:
		return len(t.inBuf) - t.inPos
	default:
		return 0
	}
}

// WantsWrite returns how many bytes of the in-flight message are unsent.
func (t *Transport) WantsWrite() int {
	if t.out != OutSending {
		return 0
	}
	return len(t.outBuf) - t.outPos
}

// FlushReceive drops any partial inbound message.
func (t *Transport) FlushReceive() {
	if t.err != nil {
		return
	}
	t.flushReceive()
}

// FlushSend drops any unsent outbound bytes.
func (t *Transport) FlushSend() {
	if t.err != nil {
		return
	}
	t.flushSend()
}

// Reset returns both directions to idle and clears a sticky error, for a
// connection being recycled.
func (t *Transport) Reset() {
	t.err = nil
	t.flushReceive()
	t.flushSend()
}

func (t *Transport) flushReceive() {
	t.in = InIdle
	t.inPos = 0
	t.inBuf = nil
	t.inMsg = nil
	t.inHead = protocol.Header{}
}

func (t *Transport) flushSend() {
	t.out = OutIdle
	t.outBuf = nil
	t.outPos = 0
}
