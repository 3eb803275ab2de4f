package ecs

import "sync"

// Messages is a double-buffered queue for one message type. Written
// messages survive exactly two Update calls, so a reader that drains the
// queue once per cycle never misses a message and never sees one twice.
type Messages[T Message] struct {
	mu sync.Mutex

	older, newer []T
	// olderStart is the absolute sequence number of older[0]; every
	// message ever written has a stable sequence number that reader
	// cursors are compared against.
	olderStart uint64
	written    uint64
}

// NewMessages creates an empty queue. Queues obtained this way must be
// rotated by calling Update directly; queues obtained from a world rotate
// with the world.
func NewMessages[T Message]() *Messages[T] {
	return &Messages[T]{}
}

// MessagesIn returns the world's queue for T, creating it on first use.
// The queue rotates whenever the world's Update runs.
func MessagesIn[T Message](w *World) *Messages[T] {
	t := eventType[T]()
	w.mu.Lock()
	defer w.mu.Unlock()
	if q, ok := w.queues[t]; ok {
		return q.(*Messages[T])
	}
	q := NewMessages[T]()
	w.queues[t] = q
	w.updates = append(w.updates, q.Update)
	return q
}

// Write appends a message to the current buffer.
func (m *Messages[T]) Write(msg T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newer = append(m.newer, msg)
	m.written++
}

// Update rotates the buffers: messages from before the previous rotation
// are dropped, messages written since become the older buffer.
func (m *Messages[T]) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.olderStart += uint64(len(m.older))
	m.older = m.newer
	m.newer = nil
}

// Clear drops all buffered messages. Reader cursors stay valid.
func (m *Messages[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.olderStart += uint64(len(m.older)) + uint64(len(m.newer))
	m.older = nil
	m.newer = nil
}

// Writer returns a handle for producing messages.
func (m *Messages[T]) Writer() *MessageWriter[T] {
	return &MessageWriter[T]{queue: m}
}

// Reader returns a handle with its own cursor. A fresh reader only sees
// messages still buffered at the time it first reads.
func (m *Messages[T]) Reader() *MessageReader[T] {
	return &MessageReader[T]{queue: m}
}

// MessageWriter produces messages into one queue.
type MessageWriter[T Message] struct {
	queue *Messages[T]
}

// Write appends a message to the queue.
func (w *MessageWriter[T]) Write(msg T) {
	w.queue.Write(msg)
}

// MessageReader drains one queue. Each reader tracks its own cursor, so
// independent readers each see every message once.
type MessageReader[T Message] struct {
	queue  *Messages[T]
	cursor uint64
}

// Read returns every buffered message the reader has not seen yet and
// advances the cursor past them.
func (r *MessageReader[T]) Read() []T {
	q := r.queue
	q.mu.Lock()
	defer q.mu.Unlock()

	cursor := r.cursor
	if cursor < q.olderStart {
		cursor = q.olderStart
	}
	olderEnd := q.olderStart + uint64(len(q.older))

	var out []T
	if cursor < olderEnd {
		out = append(out, q.older[cursor-q.olderStart:]...)
		cursor = olderEnd
	}
	if begin := cursor - olderEnd; begin < uint64(len(q.newer)) {
		out = append(out, q.newer[begin:]...)
	}
	r.cursor = olderEnd + uint64(len(q.newer))
	return out
}

// Len reports how many buffered messages the reader has not seen yet.
func (r *MessageReader[T]) Len() int {
	q := r.queue
	q.mu.Lock()
	defer q.mu.Unlock()
	total := q.olderStart + uint64(len(q.older)) + uint64(len(q.newer))
	if r.cursor >= total {
		return 0
	}
	cursor := r.cursor
	if cursor < q.olderStart {
		cursor = q.olderStart
	}
	return int(total - cursor)
}
