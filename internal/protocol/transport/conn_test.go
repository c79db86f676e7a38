package transport

import (
	"bytes"
	"io"
)

// step is one scripted Read result.
type step struct {
	data   []byte
	block  bool
	closed bool
	err    error
}

// scriptConn replays scripted reads and records writes. Reads past the end
// of the script would block.
type scriptConn struct {
	reads []step

	written     bytes.Buffer
	writeCap    int
	blockWrites bool // alternate would-block with progress
	writeErr    error

	readCalls  int
	writeCalls int
}

func (c *scriptConn) Read(p []byte) (int, error) {
	c.readCalls++
	if len(c.reads) == 0 {
		return 0, ErrWouldBlock
	}
	s := c.reads[0]
	switch {
	case s.block:
		c.reads = c.reads[1:]
		return 0, ErrWouldBlock
	case s.closed:
		return 0, nil
	case s.err != nil:
		return 0, s.err
	}
	n := copy(p, s.data)
	if n < len(s.data) {
		c.reads[0].data = s.data[n:]
	} else {
		c.reads = c.reads[1:]
	}
	return n, nil
}

func (c *scriptConn) Write(p []byte) (int, error) {
	c.writeCalls++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if c.blockWrites && c.writeCalls%2 == 1 {
		return 0, ErrWouldBlock
	}
	n := len(p)
	if c.writeCap > 0 && n > c.writeCap {
		n = c.writeCap
	}
	c.written.Write(p[:n])
	return n, nil
}

// chunked splits b into size-byte reads, each followed by a would-block
// when block is set.
func chunked(b []byte, size int, block bool) []step {
	var steps []step
	for len(b) > 0 {
		n := size
		if n > len(b) {
			n = len(b)
		}
		steps = append(steps, step{data: append([]byte(nil), b[:n]...)})
		if block {
			steps = append(steps, step{block: true})
		}
		b = b[n:]
	}
	return steps
}

// eofConn reports io.EOF after its data.
type eofConn struct {
	r io.Reader
}

func (c *eofConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *eofConn) Write(p []byte) (int, error) { return len(p), nil }
