//go:build linux || darwin

// Package netio adapts non-blocking OS sockets to transport.Conn.
package netio

import (
	"net"
	"sync"
	"syscall"

	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/transport"
	"github.com/go-faster/errors"
	"golang.org/x/sys/unix"
)

var ErrClosed = errors.New("netio: socket closed")

// Socket owns one non-blocking stream socket fd.
type Socket struct {
	fd        int
	closeOnce sync.Once
	closed    bool
	mu        sync.RWMutex
}

var _ transport.Conn = (*Socket)(nil)

// NewSocket takes ownership of fd and switches it to non-blocking mode.
func NewSocket(fd int) (*Socket, error) {
	if fd < 0 {
		return nil, errors.Errorf("netio: invalid fd %d", fd)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, errors.Wrap(err, "set nonblock")
	}
	unix.CloseOnExec(fd)
	return &Socket{fd: fd}, nil
}

// FromConn duplicates the fd behind c. The caller still owns c and should
// close it once the Socket is in use.
func FromConn(c syscall.Conn) (*Socket, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "syscall conn")
	}
	dup := -1
	var dupErr error
	if err := rc.Control(func(fd uintptr) {
		dup, dupErr = unix.Dup(int(fd))
	}); err != nil {
		return nil, errors.Wrap(err, "control")
	}
	if dupErr != nil {
		return nil, errors.Wrap(dupErr, "dup")
	}
	s, err := NewSocket(dup)
	if err != nil {
		_ = unix.Close(dup)
		return nil, err
	}
	return s, nil
}

// FromTCPConn hands a TCP connection over to a Socket and closes c.
func FromTCPConn(c *net.TCPConn) (*Socket, error) {
	s, err := FromConn(c)
	closeErr := c.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		_ = s.Close()
		return nil, errors.Wrap(closeErr, "close original conn")
	}
	return s, nil
}

// Pair returns two connected non-blocking sockets.
func Pair() (*Socket, *Socket, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "socketpair")
	}
	a, err := NewSocket(fds[0])
	if err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return nil, nil, err
	}
	b, err := NewSocket(fds[1])
	if err != nil {
		_ = a.Close()
		_ = unix.Close(fds[1])
		return nil, nil, err
	}
	return a, b, nil
}

func (s *Socket) Fd() int { return s.fd }

func (s *Socket) Read(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	for {
		n, err := unix.Read(s.fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, mapErrno(err, "read")
	}
}

func (s *Socket) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	for {
		n, err := unix.Write(s.fd, p)
		if err == nil {
			return n, nil
		}
		if err == unix.EINTR {
			continue
		}
		return 0, mapErrno(err, "write")
	}
}

// CloseWrite shuts down the sending half.
func (s *Socket) CloseWrite() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := unix.Shutdown(s.fd, unix.SHUT_WR); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// SetSendBuffer sets SO_SNDBUF. The kernel may round the value.
func (s *Socket) SetSendBuffer(n int) error {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, n); err != nil {
		return errors.Wrap(err, "set SO_SNDBUF")
	}
	return nil
}

func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = unix.Close(s.fd)
	})
	return err
}

func mapErrno(err error, op string) error {
	switch err {
	case unix.EAGAIN:
		return transport.ErrWouldBlock
	case unix.EPIPE, unix.ECONNRESET, unix.ENOTCONN:
		return errors.Wrapf(protocol.ErrConnectionLost, "%s: %v", op, err)
	default:
		return errors.Wrap(err, op)
	}
}
