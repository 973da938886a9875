//go:build !linux

package session

import (
	"errors"
)

func newPoller() (Poller, error) {
	return nil, errors.New("session: no poller on this platform, use WithPoller")
}
