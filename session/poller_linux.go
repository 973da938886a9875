//go:build linux

package session

import (
	"github.com/cjlester41/shaderbg/internal/poller"
)

func newPoller() (Poller, error) {
	return poller.New()
}
