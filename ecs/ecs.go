// Package ecs is the host runtime that generated event code compiles
// against. It provides entity handles with a parent relation, observer
// registration and delivery for events, and double-buffered queues for
// messages.
//
// The package is deliberately dependency-free so that projects embedding
// generated code only pull in the runtime, never the generator's stack.
package ecs

// Entity is an opaque handle to a spawned entity. The zero value is never
// a live entity.
type Entity uint64

// NoEntity is the zero handle. Entity-addressed events delivered to it are
// dropped.
const NoEntity Entity = 0

// Event is implemented by generated records that are delivered to globally
// registered observers the moment they are triggered.
type Event interface {
	ObservableEvent()
}

// Message is implemented by generated records that are written to a
// double-buffered queue and drained by readers on their own schedule.
type Message interface {
	BufferedMessage()
}

// EntityEvent is implemented by generated records addressed to a specific
// entity. Delivery starts at the target and may climb the parent relation.
type EntityEvent interface {
	Event

	// EventTarget returns the entity the event is addressed to.
	EventTarget() Entity

	// Propagation reports how the event travels along the parent relation
	// after the target's observers run.
	Propagation() Propagation
}

// Propagation describes the redelivery behavior of an entity event.
//
// Available reports whether the event may climb the parent relation at
// all. Auto reports whether it does so without the observer asking: when
// Auto is false and Available is true, an observer must call Propagate on
// its context to forward the event one hop.
type Propagation struct {
	Auto      bool
	Available bool
}
