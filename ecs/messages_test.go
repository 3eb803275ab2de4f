package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type chatMessage struct{ Text string }

func (chatMessage) BufferedMessage() {}

var _ Message = chatMessage{}

func drainTexts(r *MessageReader[chatMessage]) []string {
	var out []string
	for _, m := range r.Read() {
		out = append(out, m.Text)
	}
	return out
}

func TestMessages_WriteAndRead(t *testing.T) {
	// Test: A reader drains everything written since its last read
	q := NewMessages[chatMessage]()
	w := q.Writer()
	r := q.Reader()

	w.Write(chatMessage{Text: "hello"})
	w.Write(chatMessage{Text: "world"})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"hello", "world"}, drainTexts(r))

	// Drained messages are not redelivered
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Read())
}

func TestMessages_IndependentReaders(t *testing.T) {
	// Test: Each reader has its own cursor and sees every message once
	q := NewMessages[chatMessage]()
	w := q.Writer()
	r1 := q.Reader()

	w.Write(chatMessage{Text: "first"})
	assert.Equal(t, []string{"first"}, drainTexts(r1))

	r2 := q.Reader()
	w.Write(chatMessage{Text: "second"})

	assert.Equal(t, []string{"second"}, drainTexts(r1))
	assert.Equal(t, []string{"first", "second"}, drainTexts(r2))
}

func TestMessages_SurviveOneUpdate(t *testing.T) {
	// Test: Messages stay readable across one rotation and die at the second
	q := NewMessages[chatMessage]()
	w := q.Writer()
	r := q.Reader()

	w.Write(chatMessage{Text: "lives"})
	q.Update()
	assert.Equal(t, []string{"lives"}, drainTexts(r))

	slow := q.Reader()
	q.Update()

	// Two rotations after the write, the message is gone even for a
	// reader that never saw it.
	assert.Empty(t, drainTexts(slow))
}

func TestMessages_ReadSpansBothBuffers(t *testing.T) {
	// Test: A single read returns older-buffer then newer-buffer messages
	q := NewMessages[chatMessage]()
	w := q.Writer()
	r := q.Reader()

	w.Write(chatMessage{Text: "old"})
	q.Update()
	w.Write(chatMessage{Text: "new"})

	assert.Equal(t, []string{"old", "new"}, drainTexts(r))
}

func TestMessages_Clear(t *testing.T) {
	// Test: Clear drops both buffers without breaking the cursor
	q := NewMessages[chatMessage]()
	w := q.Writer()
	r := q.Reader()

	w.Write(chatMessage{Text: "dropped"})
	q.Clear()
	assert.Equal(t, 0, r.Len())

	w.Write(chatMessage{Text: "kept"})
	assert.Equal(t, []string{"kept"}, drainTexts(r))
}

func TestMessagesIn_RotatesWithWorld(t *testing.T) {
	// Test: World-owned queues are shared per type and rotate on Update
	w := NewWorld()
	q := MessagesIn[chatMessage](w)
	assert.Same(t, q, MessagesIn[chatMessage](w))

	q.Writer().Write(chatMessage{Text: "tick"})
	w.Update()
	w.Update()

	assert.Empty(t, q.Reader().Read())
}
