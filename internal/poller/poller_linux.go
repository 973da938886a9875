//go:build linux

package poller

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Poller waits on one descriptor using epoll, plus an eventfd that Wake
// signals.
type Poller struct {
	events [2]unix.EpollEvent
	buf    [8]byte
	epfd   int
	wakefd int
	fd     int
	closed atomic.Bool
}

// New creates the epoll instance and its wake eventfd.
func New() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("poller: epoll_create1: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("poller: eventfd: %w", err)
	}
	p := &Poller{epfd: epfd, wakefd: wakefd, fd: -1}
	if err := p.add(wakefd); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Poller) add(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("poller: epoll_ctl add %d: %w", fd, err)
	}
	return nil
}

// Wait blocks until fd is readable, Wake is called, or timeout elapses.
// A negative timeout blocks indefinitely. An interrupted wait returns
// false with no error, so the caller simply retries.
//
// Error and hang-up conditions on fd are reported as readable; the
// subsequent read surfaces the actual failure.
func (p *Poller) Wait(fd int, timeout time.Duration) (bool, error) {
	if p.closed.Load() {
		return false, ErrClosed
	}
	if fd != p.fd {
		if p.fd >= 0 {
			_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, p.fd, nil)
		}
		if err := p.add(fd); err != nil {
			return false, err
		}
		p.fd = fd
	}

	n, err := unix.EpollWait(p.epfd, p.events[:], timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("poller: epoll_wait: %w", err)
	}

	var readable bool
	for _, ev := range p.events[:n] {
		switch int(ev.Fd) {
		case p.wakefd:
			p.drain()
		case fd:
			readable = ev.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0
		}
	}
	return readable, nil
}

func (p *Poller) drain() {
	for {
		if _, err := unix.Read(p.wakefd, p.buf[:]); err != nil {
			return
		}
	}
}

// Wake interrupts a current or the next Wait. It is safe to call from
// any goroutine.
func (p *Poller) Wake() error {
	if p.closed.Load() {
		return ErrClosed
	}
	one := uint64(1)
	_, err := unix.Write(p.wakefd, (*[8]byte)(unsafe.Pointer(&one))[:])
	if errors.Is(err, unix.EAGAIN) {
		// Counter saturated; a wake is already pending.
		return nil
	}
	return err
}

// Close releases the epoll instance and the eventfd. The watched
// descriptor is not closed.
func (p *Poller) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return errors.Join(unix.Close(p.wakefd), unix.Close(p.epfd))
}
