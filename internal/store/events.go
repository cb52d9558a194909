package store

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType is the closed set of event categories the store fans out.
type EventType string

const (
	EventConfigChange         EventType = "CONFIG_CHANGE"
	EventFocusObject          EventType = "FOCUS_OBJECT"
	EventSelectObject         EventType = "SELECT_OBJECT"
	EventColorScheme          EventType = "COLOR_SCHEME"
	EventViewModeChange       EventType = "VIEW_MODE_CHANGE"
	EventLayoutModeChange     EventType = "LAYOUT_MODE_CHANGE"
	EventShowLabels           EventType = "SHOW_LABELS"
	EventNodeExpansionRequest EventType = "NODE_EXPANSION_REQUEST"
	EventGraphDataUpdate      EventType = "GRAPH_DATA_UPDATE"
)

var validEventTypes = map[EventType]struct{}{
	EventConfigChange:         {},
	EventFocusObject:          {},
	EventSelectObject:         {},
	EventColorScheme:          {},
	EventViewModeChange:       {},
	EventLayoutModeChange:     {},
	EventShowLabels:           {},
	EventNodeExpansionRequest: {},
	EventGraphDataUpdate:      {},
}

// Event is delivered synchronously to every listener of its category, in
// registration order. Previous carries the prior value where the category
// has one.
type Event struct {
	Type     EventType
	Value    any
	Previous any
}

// Listener receives events for one category.
type Listener func(Event)

type subscription struct {
	id uuid.UUID
	fn Listener
}

// Subscribe registers a listener for an event category and returns a
// handle for Unsubscribe. Registering for an unrecognized category is a
// programmer error, not a data error, and panics immediately so
// integration typos surface at startup rather than as silently dropped
// events.
func (s *Store) Subscribe(t EventType, fn Listener) uuid.UUID {
	if _, ok := validEventTypes[t]; !ok {
		panic(fmt.Sprintf("store: subscribe to unknown event type %q", t))
	}
	sub := subscription{id: uuid.New(), fn: fn}
	s.listeners[t] = append(s.listeners[t], sub)
	return sub.id
}

// Unsubscribe removes a previously registered listener. It reports whether
// the handle was found.
func (s *Store) Unsubscribe(t EventType, id uuid.UUID) bool {
	subs := s.listeners[t]
	for i, sub := range subs {
		if sub.id == id {
			s.listeners[t] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// emit fans an event out to its category's listeners, synchronously and in
// registration order.
func (s *Store) emit(ev Event) {
	for _, sub := range s.listeners[ev.Type] {
		sub.fn(ev)
	}
}
