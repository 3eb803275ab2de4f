package ecs

import (
	"reflect"
	"sync"
)

// World owns entities, their parent relation, registered observers, and
// message queues. All methods are safe for concurrent use.
type World struct {
	mu sync.Mutex

	next   Entity
	alive  map[Entity]struct{}
	parent map[Entity]Entity

	global map[reflect.Type][]any
	scoped map[reflect.Type]map[Entity][]any

	queues  map[reflect.Type]any
	updates []func()
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		alive:  map[Entity]struct{}{},
		parent: map[Entity]Entity{},
		global: map[reflect.Type][]any{},
		scoped: map[reflect.Type]map[Entity][]any{},
		queues: map[reflect.Type]any{},
	}
}

// Spawn allocates a fresh entity with no parent.
func (w *World) Spawn() Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	e := w.next
	w.alive[e] = struct{}{}
	return e
}

// Despawn removes an entity. Children of a despawned entity become roots;
// observers scoped to it are discarded.
func (w *World) Despawn(e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.alive, e)
	delete(w.parent, e)
	for c, p := range w.parent {
		if p == e {
			delete(w.parent, c)
		}
	}
	for _, byEntity := range w.scoped {
		delete(byEntity, e)
	}
}

// SetParent links child under parent. Passing NoEntity as the parent
// detaches the child. Links that would close a cycle are ignored.
func (w *World) SetParent(child, parent Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if parent == NoEntity {
		delete(w.parent, child)
		return
	}
	if _, ok := w.alive[child]; !ok {
		return
	}
	if _, ok := w.alive[parent]; !ok {
		return
	}
	for p := parent; p != NoEntity; p = w.parent[p] {
		if p == child {
			return
		}
	}
	w.parent[child] = parent
}

// Parent returns the parent of e, if it has one.
func (w *World) Parent(e Entity) (Entity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.parent[e]
	return p, ok
}

// Alive reports whether e has been spawned and not despawned.
func (w *World) Alive(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.alive[e]
	return ok
}

// Update rotates every message queue in the world. Messages written before
// the previous Update are dropped; messages written since remain readable
// for one more cycle.
func (w *World) Update() {
	w.mu.Lock()
	updates := make([]func(), len(w.updates))
	copy(updates, w.updates)
	w.mu.Unlock()
	for _, fn := range updates {
		fn()
	}
}

func eventType[E any]() reflect.Type {
	return reflect.TypeOf((*E)(nil)).Elem()
}
