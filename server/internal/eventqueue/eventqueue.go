// Package eventqueue implements the hand-off point between the I/O
// engine's many per-connection goroutines and the single game-logic
// goroutine that owns the room/player model: a FIFO of Connected,
// Disconnected, and Received events, drained non-blockingly by the game
// loop's tick.
package eventqueue

import (
	"container/list"
	"sync"

	"github.com/phuhao00/minigames-server/server/internal/session"
)

// Kind discriminates the payload carried by an Event.
type Kind int

const (
	Connected Kind = iota
	Disconnected
	Received
)

// Event is a single occurrence handed from the I/O engine to the game
// loop. Data is only meaningful for Received events.
type Event struct {
	Kind      Kind
	SessionID session.ID
	Data      []byte
}

// Queue is a mutex-guarded FIFO. Producers (I/O worker goroutines) call
// Push; the single consumer (the game loop) calls TryPop in its tick.
type Queue struct {
	mu sync.Mutex
	l  *list.List
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{l: list.New()}
}

// Push appends an event to the back of the queue.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.l.PushBack(e)
	q.mu.Unlock()
}

// TryPop removes and returns the event at the front of the queue. The
// second return value is false if the queue was empty.
func (q *Queue) TryPop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.l.Front()
	if front == nil {
		return Event{}, false
	}
	q.l.Remove(front)
	return front.Value.(Event), true
}

// Len reports the number of events currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}
