//go:build linux || darwin

package reactor

import (
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sys/unix"
)

// Event is the readiness of one fd after a Wait.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	Hangup   bool
	Failed   bool
}

// Poller is a poll(2) set. Interest is recomputed on every Wait, so it
// follows transport state without explicit modify calls.
type Poller struct {
	fds   []int
	index map[int]int
	pfds  []unix.PollFd
}

func NewPoller() *Poller {
	return &Poller{index: make(map[int]int)}
}

func (p *Poller) Add(fd int) {
	if _, ok := p.index[fd]; ok {
		return
	}
	p.index[fd] = len(p.fds)
	p.fds = append(p.fds, fd)
}

func (p *Poller) Remove(fd int) {
	i, ok := p.index[fd]
	if !ok {
		return
	}
	last := len(p.fds) - 1
	p.fds[i] = p.fds[last]
	p.index[p.fds[i]] = i
	p.fds = p.fds[:last]
	delete(p.index, fd)
}

func (p *Poller) Len() int { return len(p.fds) }

// Wait blocks up to timeout (negative waits forever) for any fd to become
// ready for the interest reported by interest. Hangups and errors are
// always reported. An interrupted wait returns no events.
func (p *Poller) Wait(timeout time.Duration, interest func(fd int) (read, write bool)) ([]Event, error) {
	p.pfds = p.pfds[:0]
	for _, fd := range p.fds {
		var ev int16
		r, w := interest(fd)
		if r {
			ev |= unix.POLLIN
		}
		if w {
			ev |= unix.POLLOUT
		}
		p.pfds = append(p.pfds, unix.PollFd{Fd: int32(fd), Events: ev})
	}

	ms := -1
	if timeout >= 0 {
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	n, err := unix.Poll(p.pfds, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "poll")
	}
	if n == 0 {
		return nil, nil
	}

	events := make([]Event, 0, n)
	for _, pfd := range p.pfds {
		if pfd.Revents == 0 {
			continue
		}
		events = append(events, Event{
			Fd:       int(pfd.Fd),
			Readable: pfd.Revents&unix.POLLIN != 0,
			Writable: pfd.Revents&unix.POLLOUT != 0,
			Hangup:   pfd.Revents&unix.POLLHUP != 0,
			Failed:   pfd.Revents&(unix.POLLERR|unix.POLLNVAL) != 0,
		})
	}
	return events, nil
}
