package channel

import (
	"container/list"
	"encoding/json"
	"sync"

	"github.com/opsx/collab/shared/wire"
)

// Frame is one inbound event delivered to subscribers.
type Frame struct {
	Event   string
	Payload json.RawMessage

	// Chat is set for chat:message frames.
	Chat *ChatUpdate
	// Agent is set for agent:status frames.
	Agent *wire.Agent
}

// ChatUpdate is a decoded chat:message frame after it was merged into the
// room log.
type ChatUpdate struct {
	Room string
	// Messages is the frame content as received.
	Messages []wire.ChatMessage
	// Added holds the messages that were new to the room log, in log order.
	Added []wire.ChatMessage
}

// Handler receives frames on the channel loop goroutine. Handlers must not
// block.
type Handler func(Frame)

// Router fans frames out to subscribers by event tag. Handlers for one tag
// run in registration order.
type Router struct {
	mu   sync.Mutex
	subs map[string]*list.List
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{subs: make(map[string]*list.List)}
}

// On registers h for event and returns a func that removes exactly this
// registration. The returned func may be called any number of times.
func (r *Router) On(event string, h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.subs[event]
	if l == nil {
		l = list.New()
		r.subs[event] = l
	}
	// Store a pointer so every registration is a distinct element even when
	// the same func is registered twice.
	elem := l.PushBack(&h)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			l.Remove(elem)
			if l.Len() == 0 && r.subs[event] == l {
				delete(r.subs, event)
			}
		})
	}
}

// Has reports whether event has at least one subscriber.
func (r *Router) Has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.subs[event]
	return l != nil && l.Len() > 0
}

// Events returns the tags that currently have subscribers.
func (r *Router) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.subs))
	for event := range r.subs {
		out = append(out, event)
	}
	return out
}

// Dispatch invokes every handler registered for f.Event and returns how many
// ran. Handlers are snapshotted first, so subscribing or unsubscribing from
// inside a handler affects later frames only.
func (r *Router) Dispatch(f Frame) int {
	r.mu.Lock()
	l := r.subs[f.Event]
	if l == nil {
		r.mu.Unlock()
		return 0
	}
	handlers := make([]Handler, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		handlers = append(handlers, *e.Value.(*Handler))
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(f)
	}
	return len(handlers)
}
