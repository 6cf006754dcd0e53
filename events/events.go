package events

import (
	"sync"
)

// Name identifies an event. The constants below cover the structural events
// emitted by collections and models; any other value is a custom event.
type Name string

const (
	Add     Name = "add"
	Remove  Name = "remove"
	Reset   Name = "reset"
	Sort    Name = "sort"
	Change  Name = "change"
	Destroy Name = "destroy"
)

// Event is the unit dispatched through an Emitter.
//
// Source tags the collection that originated a structural event (add/remove/
// reset/sort) and is compared by identity to filter events that bubbled from
// a different owner. It is nil for events without an originating collection.
//
// Index is the position the affected model had at the time of the mutation,
// or -1 when it does not apply.
type Event struct {
	Name   Name
	Source any
	Index  int
	Args   []any
}

type Handler func(e Event)

// Subscription is the handle returned by On/OnAll, used to detach a handler.
type Subscription struct {
	emitter *Emitter
	id      int
}

func (s *Subscription) Off() {
	if s == nil || s.emitter == nil {
		return
	}
	s.emitter.off(s.id)
	s.emitter = nil
}

type entry struct {
	id      int
	name    Name
	all     bool
	handler Handler
}

// Emitter dispatches events to an ordered list of observers. Handlers run
// outside the internal lock, so they can call back into the emitter (or into
// whatever owns it).
type Emitter struct {
	mu      sync.Mutex
	nextId  int
	entries []*entry
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// On subscribes handler to events with the given name.
func (e *Emitter) On(name Name, handler Handler) *Subscription {
	return e.subscribe(&entry{name: name, handler: handler})
}

// OnAll subscribes handler to every event, regardless of name.
func (e *Emitter) OnAll(handler Handler) *Subscription {
	return e.subscribe(&entry{all: true, handler: handler})
}

func (e *Emitter) subscribe(en *entry) *Subscription {
	e.mu.Lock()
	e.nextId++
	en.id = e.nextId
	e.entries = append(e.entries, en)
	e.mu.Unlock()

	return &Subscription{emitter: e, id: en.id}
}

func (e *Emitter) off(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, en := range e.entries {
		if en.id == id {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			return
		}
	}
}

// Trigger dispatches ev to the matching named handlers first, then to the
// catch-all handlers, in subscription order.
func (e *Emitter) Trigger(ev Event) {
	e.mu.Lock()
	named := []Handler{}
	all := []Handler{}
	for _, en := range e.entries {
		if en.all {
			all = append(all, en.handler)
			continue
		}
		if en.name == ev.Name {
			named = append(named, en.handler)
		}
	}
	e.mu.Unlock()

	for _, h := range named {
		h(ev)
	}
	for _, h := range all {
		h(ev)
	}
}
