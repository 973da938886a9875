package wayland

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingGlobalsError(t *testing.T) {
	err := fmt.Errorf("connect: %w", &MissingGlobalsError{Interfaces: []string{"wl_compositor", "zwlr_layer_shell_v1"}})
	assert.EqualError(t, err, "connect: wayland: compositor lacks wl_compositor, zwlr_layer_shell_v1")

	var target *MissingGlobalsError
	if assert.True(t, errors.As(err, &target)) {
		assert.Len(t, target.Interfaces, 2)
	}
}

func TestProtocolError(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		err  *ProtocolError
		want string
	}{
		{
			name: "known interface",
			err:  &ProtocolError{Interface: "zwlr_layer_surface_v1", ID: 12, Code: 2},
			want: "wayland: protocol error 2 on zwlr_layer_surface_v1@12",
		},
		{
			name: "unknown interface",
			err:  &ProtocolError{ID: 3},
			want: "wayland: protocol error 0 on unknown interface@3",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.want)
		})
	}
}
