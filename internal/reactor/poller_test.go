//go:build linux || darwin

package reactor

import (
	"testing"
	"time"

	"github.com/danmuck/anp/internal/netio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerReadiness(t *testing.T) {
	a, b, err := netio.Pair()
	require.NoError(t, err)
	defer a.Close()
	defer b.Close()

	p := NewPoller()
	p.Add(a.Fd())
	p.Add(a.Fd())
	assert.Equal(t, 1, p.Len())

	readOnly := func(int) (bool, bool) { return true, false }
	events, err := p.Wait(0, readOnly)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = b.Write([]byte("x"))
	require.NoError(t, err)
	events, err = p.Wait(time.Second, readOnly)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, a.Fd(), events[0].Fd)
	assert.True(t, events[0].Readable)
	assert.False(t, events[0].Writable)

	events, err = p.Wait(time.Second, func(int) (bool, bool) { return false, true })
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Writable)
}

func TestPollerRemoveAndHangup(t *testing.T) {
	a, b, err := netio.Pair()
	require.NoError(t, err)
	defer a.Close()
	c, d, err := netio.Pair()
	require.NoError(t, err)
	defer c.Close()
	defer d.Close()

	p := NewPoller()
	p.Add(a.Fd())
	p.Add(c.Fd())
	p.Remove(a.Fd())
	p.Remove(a.Fd())
	assert.Equal(t, 1, p.Len())

	p.Add(a.Fd())
	require.NoError(t, b.Close())
	none := func(int) (bool, bool) { return false, false }
	events, err := p.Wait(time.Second, none)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, a.Fd(), events[0].Fd)
	assert.True(t, events[0].Hangup)
}
