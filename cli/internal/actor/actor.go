// Package actor runs a single-goroutine event loop around a pure reducer.
//
// One goroutine owns the state. Callers and background work deliver Inputs to
// a mailbox; the reducer turns (state, input) into a new state plus a list of
// declarative Effects, and a Runtime performs those effects and reports the
// outcome as further Inputs.
package actor

import (
	"context"
	"errors"
	"sync"
)

// Input is an item delivered to an actor mailbox: a command from a caller or
// an event observed by the runtime.
type Input interface {
	isActorInput()
}

// Effect is a side-effect requested by a reducer. Effects are data; the
// Runtime executes them.
type Effect interface {
	isActorEffect()
}

// ReducerFunc is a pure state transition function. It must not perform I/O,
// spawn goroutines, or read the clock.
type ReducerFunc[S any] func(state S, input Input) (next S, effects []Effect)

// Runtime interprets effects and emits follow-up inputs back to the actor.
type Runtime interface {
	// HandleEffects runs on the actor goroutine, in reducer order. Blocking
	// work must be started asynchronously and report back through emit.
	HandleEffects(ctx context.Context, effects []Effect, emit func(Input))

	// Stop releases background work. It may be called more than once.
	Stop()
}

// Hooks provide optional observability into an actor's execution.
type Hooks[S any] struct {
	// OnInput is called after an input is dequeued, before reducing.
	OnInput func(input Input)
	// OnTransition is called after the next state has been stored.
	OnTransition func(prev S, next S, input Input)
	// OnEffects is called before effects are handed to the Runtime.
	OnEffects func(effects []Effect)
	// OnPanic is called when the loop panics. If nil, panics propagate.
	OnPanic func(recovered any)
}

// ErrStopped is returned when the actor no longer accepts input.
var ErrStopped = errors.New("actor stopped")

// Actor runs a single-threaded event loop that owns state of type S.
type Actor[S any] struct {
	reduce  ReducerFunc[S]
	runtime Runtime
	hooks   Hooks[S]

	mu     sync.Mutex
	state  S
	inbox  chan Input
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New creates an actor with initial state, reducer, and runtime.
func New[S any](initial S, reducer ReducerFunc[S], runtime Runtime, opts ...Option[S]) *Actor[S] {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor[S]{
		reduce:  reducer,
		runtime: runtime,
		state:   initial,
		inbox:   make(chan Input, 256),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Option configures an Actor.
type Option[S any] func(*Actor[S])

// WithHooks attaches hooks for observability.
func WithHooks[S any](hooks Hooks[S]) Option[S] {
	return func(a *Actor[S]) { a.hooks = hooks }
}

// WithMailboxSize sets the mailbox buffer size.
func WithMailboxSize[S any](n int) Option[S] {
	return func(a *Actor[S]) {
		if n <= 0 {
			return
		}
		a.inbox = make(chan Input, n)
	}
}

// Start launches the loop. Calling Start more than once has no effect.
func (a *Actor[S]) Start() {
	a.once.Do(func() { go a.loop() })
}

// Stop cancels the actor context and stops the runtime.
func (a *Actor[S]) Stop() {
	a.cancel()
	if a.runtime != nil {
		a.runtime.Stop()
	}
}

// Done returns a channel that closes when the loop exits.
func (a *Actor[S]) Done() <-chan struct{} { return a.done }

// Context is canceled when the actor stops.
func (a *Actor[S]) Context() context.Context { return a.ctx }

// Enqueue delivers input without blocking. It returns false when the actor is
// stopped or the mailbox is full.
func (a *Actor[S]) Enqueue(input Input) bool {
	if input == nil {
		return false
	}
	select {
	case <-a.ctx.Done():
		return false
	default:
	}
	select {
	case a.inbox <- input:
		return true
	default:
		return false
	}
}

// Send delivers input, waiting for mailbox space. Inputs sent from one
// goroutine are reduced in the order they were sent.
//
// Send must not be called from the actor goroutine itself.
func (a *Actor[S]) Send(ctx context.Context, input Input) error {
	if input == nil {
		return nil
	}
	select {
	case <-a.ctx.Done():
		return ErrStopped
	default:
	}
	select {
	case a.inbox <- input:
		return nil
	case <-a.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the current state.
func (a *Actor[S]) State() S {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Actor[S]) loop() {
	defer close(a.done)
	defer func() {
		if r := recover(); r != nil {
			if a.hooks.OnPanic != nil {
				a.hooks.OnPanic(r)
				return
			}
			panic(r)
		}
	}()

	// Runtime follow-ups must not be lost when the mailbox is full, and the
	// loop cannot block on its own mailbox.
	emit := func(in Input) {
		if a.Enqueue(in) {
			return
		}
		go func() { _ = a.Send(a.ctx, in) }()
	}

	for {
		select {
		case <-a.ctx.Done():
			return
		case in := <-a.inbox:
			if in == nil {
				continue
			}
			if a.hooks.OnInput != nil {
				a.hooks.OnInput(in)
			}

			a.mu.Lock()
			prev := a.state
			a.mu.Unlock()

			next, effects := a.reduce(prev, in)

			a.mu.Lock()
			a.state = next
			a.mu.Unlock()

			if a.hooks.OnTransition != nil {
				a.hooks.OnTransition(prev, next, in)
			}
			if len(effects) > 0 && a.hooks.OnEffects != nil {
				a.hooks.OnEffects(effects)
			}
			if a.runtime != nil && len(effects) > 0 {
				a.runtime.HandleEffects(a.ctx, effects, emit)
			}
		}
	}
}
