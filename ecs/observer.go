package ecs

// EventContext carries one delivery of an event to one observer. For
// entity events, Entity is the entity the observers currently run for,
// which differs from the event's target while the event propagates.
type EventContext[E Event] struct {
	Event  E
	Entity Entity

	world     *World
	stopped   bool
	propagate bool
}

// World returns the world the event was triggered on.
func (c *EventContext[E]) World() *World {
	return c.world
}

// StopPropagation halts delivery after the current entity's observers
// finish. Remaining observers for the same entity still run.
func (c *EventContext[E]) StopPropagation() {
	c.stopped = true
}

// Propagate forwards the event to the parent entity after the current
// entity's observers finish. It has no effect on events whose propagation
// is unavailable, and is redundant for auto-propagating events.
func (c *EventContext[E]) Propagate() {
	c.propagate = true
}

// Observe registers fn for every triggered event of type E, regardless of
// which entity it targets.
func Observe[E Event](w *World, fn func(*EventContext[E])) {
	t := eventType[E]()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.global[t] = append(w.global[t], fn)
}

// ObserveEntity registers fn for events of type E delivered to target,
// whether addressed to it directly or reached through propagation.
func ObserveEntity[E EntityEvent](w *World, target Entity, fn func(*EventContext[E])) {
	t := eventType[E]()
	w.mu.Lock()
	defer w.mu.Unlock()
	byEntity := w.scoped[t]
	if byEntity == nil {
		byEntity = map[Entity][]any{}
		w.scoped[t] = byEntity
	}
	byEntity[target] = append(byEntity[target], fn)
}

// Trigger delivers ev to all registered observers. Global observers always
// run first. If ev is an entity event, entity-scoped observers then run
// for the target, and delivery climbs the parent relation one entity at a
// time: automatically when the event auto-propagates, or when an observer
// calls Propagate. StopPropagation ends the climb.
func Trigger[E Event](w *World, ev E) {
	t := eventType[E]()

	w.mu.Lock()
	global := append([]any(nil), w.global[t]...)
	w.mu.Unlock()

	ee, targeted := any(ev).(EntityEvent)

	ctx := &EventContext[E]{Event: ev, world: w}
	if targeted {
		ctx.Entity = ee.EventTarget()
	}
	for _, h := range global {
		h.(func(*EventContext[E]))(ctx)
	}
	if !targeted || ctx.stopped {
		return
	}

	prop := ee.Propagation()
	current := ee.EventTarget()
	for current != NoEntity {
		w.mu.Lock()
		var scoped []any
		if byEntity := w.scoped[t]; byEntity != nil {
			scoped = append([]any(nil), byEntity[current]...)
		}
		w.mu.Unlock()

		hop := &EventContext[E]{Event: ev, Entity: current, world: w}
		for _, h := range scoped {
			h.(func(*EventContext[E]))(hop)
		}

		if hop.stopped || !prop.Available {
			return
		}
		if !prop.Auto && !hop.propagate {
			return
		}
		parent, ok := w.Parent(current)
		if !ok {
			return
		}
		current = parent
	}
}
