//go:build linux

package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func pipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPoller_Wait(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()
	r, w := pipe(t)

	start := time.Now()
	readable, err := p.Wait(r, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, readable)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	_, err = unix.Write(w, []byte{1})
	require.NoError(t, err)
	readable, err = p.Wait(r, -1)
	require.NoError(t, err)
	assert.True(t, readable)
}

func TestPoller_Wake(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()
	r, _ := pipe(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		assert.NoError(t, p.Wake())
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readable, err := p.Wait(r, -1)
		assert.NoError(t, err)
		assert.False(t, readable)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wake did not interrupt the wait")
	}

	// The wake was consumed.
	readable, err := p.Wait(r, 0)
	require.NoError(t, err)
	assert.False(t, readable)
}

func TestPoller_Close(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Wait(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Wake(), ErrClosed)
}
