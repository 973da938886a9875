// Package poller blocks on a single file descriptor with a timeout, and
// can be woken early from another goroutine. It backs the session's wait
// on the compositor socket.
package poller

import (
	"errors"
	"time"
)

var ErrClosed = errors.New("poller: closed")

// timeoutMillis converts a wait duration to the millisecond argument of
// epoll_wait. Negative durations block forever; a positive duration
// rounds up so the caller never wakes before its deadline.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	return int(min(ms, 1<<31-1))
}
