package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/internal/fakes"
	"github.com/cjlester41/shaderbg/output"
)

func globals(r *output.Registry) []compositor.GlobalID {
	var out []compositor.GlobalID
	r.Each(func(o *output.Output) bool {
		out = append(out, o.Global())
		return true
	})
	return out
}

func TestRegistry_Upsert(t *testing.T) {
	r := output.NewRegistry()
	a, created := r.Upsert(1)
	require.True(t, created)
	b, created := r.Upsert(1)
	assert.False(t, created)
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
	assert.Nil(t, r.Lookup(2))
}

func TestRegistry_removeDuringIteration(t *testing.T) {
	env := newEnv(fakes.NewWorld())
	r := output.NewRegistry()
	for g := compositor.GlobalID(1); g <= 5; g++ {
		r.Upsert(g)
	}

	var visited []compositor.GlobalID
	r.Each(func(o *output.Output) bool {
		visited = append(visited, o.Global())
		switch o.Global() {
		case 2:
			// Removing a later entry must skip it, removing the current
			// one must not disturb the iteration.
			assert.True(t, r.Remove(env, 4))
			assert.True(t, r.Remove(env, 2))
		case 3:
			r.Upsert(6)
		}
		return true
	})

	assert.Equal(t, []compositor.GlobalID{1, 2, 3, 5}, visited)
	assert.Equal(t, []compositor.GlobalID{1, 3, 5, 6}, globals(r))
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_Each_stop(t *testing.T) {
	r := output.NewRegistry()
	r.Upsert(1)
	r.Upsert(2)
	var n int
	r.Each(func(*output.Output) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestRegistry_compaction(t *testing.T) {
	env := newEnv(fakes.NewWorld())
	r := output.NewRegistry()
	for g := compositor.GlobalID(1); g <= 40; g++ {
		r.Upsert(g)
	}
	for g := compositor.GlobalID(1); g <= 40; g++ {
		if g%8 != 0 {
			require.True(t, r.Remove(env, g))
		}
	}

	assert.Equal(t, 5, r.Len())
	assert.Equal(t, []compositor.GlobalID{8, 16, 24, 32, 40}, globals(r))
	for _, g := range []compositor.GlobalID{8, 16, 24, 32, 40} {
		o := r.Lookup(g)
		require.NotNil(t, o)
		assert.Equal(t, g, o.Global())
	}

	// Appending after compaction keeps every survivor addressable.
	r.Upsert(41)
	assert.Equal(t, []compositor.GlobalID{8, 16, 24, 32, 40, 41}, globals(r))
}

func TestRegistry_Close(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()
	for g := compositor.GlobalID(1); g <= 20; g++ {
		r.Upsert(g)
	}
	r.Close(env)
	assert.Zero(t, r.Len())
	assert.Len(t, w.Calls("release_output"), 20)
	assert.Empty(t, globals(r))
}
