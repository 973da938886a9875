package output

import (
	"github.com/cjlester41/shaderbg/compositor"
)

// compactMin is the slot count below which tombstones are left in place.
const compactMin = 16

// Registry holds the known outputs in an arena addressed by slot index.
// Removal leaves a nil tombstone, so an iteration in progress never sees
// its indices shift; tombstones are compacted once no iteration is
// running and they outnumber the live entries.
//
// Registry is not safe for concurrent use.
type Registry struct {
	byGlobal  map[compositor.GlobalID]int
	bySurface map[compositor.SurfaceID]compositor.GlobalID
	slots     []*Output
	live      int
	iterating int
}

func NewRegistry() *Registry {
	return &Registry{
		byGlobal:  make(map[compositor.GlobalID]int),
		bySurface: make(map[compositor.SurfaceID]compositor.GlobalID),
	}
}

// Len returns the number of live outputs.
func (r *Registry) Len() int { return r.live }

// Upsert returns the output for global, creating it if absent.
func (r *Registry) Upsert(global compositor.GlobalID) (o *Output, created bool) {
	if o = r.Lookup(global); o != nil {
		return o, false
	}
	o = newOutput(global)
	r.byGlobal[global] = len(r.slots)
	r.slots = append(r.slots, o)
	r.live++
	return o, true
}

func (r *Registry) Lookup(global compositor.GlobalID) *Output {
	if i, ok := r.byGlobal[global]; ok {
		return r.slots[i]
	}
	return nil
}

// BySurface returns the output that owns surface, if any.
func (r *Registry) BySurface(surface compositor.SurfaceID) *Output {
	if global, ok := r.bySurface[surface]; ok {
		return r.Lookup(global)
	}
	return nil
}

// MatchAndBind evaluates the selector against o, once per output. On a
// match the output's surface is created and committed. Later calls
// report the first outcome without side effects.
func (r *Registry) MatchAndBind(env *Env, o *Output, selector string) (bool, error) {
	decided := o.decided
	bound, err := o.bind(env, selector)
	if err != nil || !bound || decided {
		return bound, err
	}
	surface, _ := o.Surface()
	r.bySurface[surface] = o.global
	env.Logger.Info().
		Str("output", o.name).
		Uint64("global", uint64(o.global)).
		Str("layer", env.Layer.String()).
		Log("output matched")
	return true, nil
}

// Remove tears down every resource of the output for global and drops
// it. It reports false when global is unknown, which is normal for
// non-output globals.
func (r *Registry) Remove(env *Env, global compositor.GlobalID) bool {
	i, ok := r.byGlobal[global]
	if !ok {
		return false
	}
	o := r.slots[i]
	if surface, ok := o.Surface(); ok {
		delete(r.bySurface, surface)
	}
	o.teardown(env)

	delete(r.byGlobal, global)
	r.slots[i] = nil
	r.live--
	r.maybeCompact()
	return true
}

// Each calls fn for every live output in insertion order, stopping when
// fn returns false. fn may add or remove outputs: removed outputs are
// skipped, outputs added during the call are not visited.
func (r *Registry) Each(fn func(*Output) bool) {
	r.iterating++
	defer func() {
		r.iterating--
		r.maybeCompact()
	}()
	n := len(r.slots)
	for i := 0; i < n; i++ {
		if o := r.slots[i]; o != nil && !fn(o) {
			return
		}
	}
}

// Close tears down every output.
func (r *Registry) Close(env *Env) {
	r.Each(func(o *Output) bool {
		r.Remove(env, o.global)
		return true
	})
}

func (r *Registry) maybeCompact() {
	if r.iterating > 0 || len(r.slots) < compactMin || len(r.slots)-r.live <= r.live {
		return
	}
	slots := make([]*Output, 0, max(r.live*2, compactMin))
	for _, o := range r.slots {
		if o != nil {
			r.byGlobal[o.global] = len(slots)
			slots = append(slots, o)
		}
	}
	r.slots = slots
}
