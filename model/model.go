package model

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nvdnkpr/hr/events"
)

// Model is an identity-bearing, attribute-holding, event-emitting unit. It
// can be owned (non-exclusively) by zero or more collections; the owner
// back-reference points at the first collection that adopted it.
type Model struct {
	cid        string
	mu         sync.Mutex
	attributes map[string]any
	owner      any
	emitter    *events.Emitter
}

type SetOptions struct {
	Silent bool
}

type DestroyOptions struct {
	Silent bool
}

func New(attributes map[string]any) *Model {
	m := &Model{
		cid:        uuid.NewString(),
		attributes: map[string]any{},
		emitter:    events.NewEmitter(),
	}
	for k, v := range attributes {
		m.attributes[k] = v
	}

	return m
}

// Cid returns the stable client identity of this model instance.
func (m *Model) Cid() string {
	return m.cid
}

func (m *Model) Get(key string) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.attributes[key]
}

// Set writes the given attributes and triggers a Change event (one per call,
// carrying the model and the changed attribute map) unless silent.
func (m *Model) Set(attributes map[string]any, options *SetOptions) {
	if options == nil {
		options = &SetOptions{}
	}

	m.mu.Lock()
	for k, v := range attributes {
		m.attributes[k] = v
	}
	m.mu.Unlock()

	if options.Silent {
		return
	}

	m.emitter.Trigger(events.Event{
		Name:  events.Change,
		Index: -1,
		Args:  []any{m, attributes},
	})
}

func (m *Model) Unset(key string, options *SetOptions) {
	if options == nil {
		options = &SetOptions{}
	}

	m.mu.Lock()
	delete(m.attributes, key)
	m.mu.Unlock()

	if options.Silent {
		return
	}

	m.emitter.Trigger(events.Event{
		Name:  events.Change,
		Index: -1,
		Args:  []any{m, map[string]any{key: nil}},
	})
}

// ToJSON returns a plain copy of the model's attributes.
func (m *Model) ToJSON() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := map[string]any{}
	for k, v := range m.attributes {
		out[k] = v
	}

	return out
}

// Destroy triggers the model's Destroy event. Every collection holding the
// model reacts by removing it.
func (m *Model) Destroy(options *DestroyOptions) {
	if options == nil {
		options = &DestroyOptions{}
	}

	m.emitter.Trigger(events.Event{
		Name:  events.Destroy,
		Index: -1,
		Args:  []any{m, options.Silent},
	})
}

func (m *Model) Owner() any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.owner
}

func (m *Model) SetOwner(owner any) {
	m.mu.Lock()
	m.owner = owner
	m.mu.Unlock()
}

func (m *Model) On(name events.Name, handler events.Handler) *events.Subscription {
	return m.emitter.On(name, handler)
}

func (m *Model) OnAll(handler events.Handler) *events.Subscription {
	return m.emitter.OnAll(handler)
}

func (m *Model) Trigger(ev events.Event) {
	m.emitter.Trigger(ev)
}
