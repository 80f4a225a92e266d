// Package actortest provides test helpers for the actor framework.
package actortest

import (
	"context"
	"sync"

	"github.com/opsx/collab/cli/internal/actor"
)

// FakeRuntime records effects instead of executing them. EmitFn, when set, is
// called for each effect so tests can synthesize follow-up inputs.
type FakeRuntime struct {
	mu sync.Mutex

	effects []actor.Effect
	stopped bool

	EmitFn func(ctx context.Context, eff actor.Effect, emit func(actor.Input))
}

var _ actor.Runtime = (*FakeRuntime)(nil)

// HandleEffects implements actor.Runtime.
func (r *FakeRuntime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	r.mu.Lock()
	r.effects = append(r.effects, effects...)
	emitFn := r.EmitFn
	r.mu.Unlock()

	if emitFn != nil {
		for _, eff := range effects {
			emitFn(ctx, eff, emit)
		}
	}
}

// Stop implements actor.Runtime.
func (r *FakeRuntime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

// Stopped reports whether Stop was called.
func (r *FakeRuntime) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Effects returns a snapshot of recorded effects.
func (r *FakeRuntime) Effects() []actor.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]actor.Effect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Reset clears recorded effects.
func (r *FakeRuntime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = nil
}

// OfType returns the effects in effects whose dynamic type is T, in order.
func OfType[T actor.Effect](effects []actor.Effect) []T {
	var out []T
	for _, eff := range effects {
		if v, ok := eff.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
