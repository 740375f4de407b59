package ring

import "sync"

// SendView is an atomic snapshot of a MPRing's unread region, captured
// under a single lock acquisition so a caller never combines a data size
// from one instant with read pointers from another.
type SendView struct {
	// First and Second are read-only slices into the ring's backing
	// array. They stay valid until the corresponding bytes are
	// Consume()d — producers never overwrite data behind the read
	// position.
	First, Second []byte
	DataSize      int
}

// MPRing is a ring buffer safe for concurrent producers (any number of
// goroutines calling Enqueue) paired with a single consumer that drains
// it through SendView/Consume. This is the shape used for a session's
// send path: any goroutine with an outgoing message enqueues into it, but
// only the session's send-owning goroutine ever reads from it.
type MPRing struct {
	mu sync.Mutex
	r  Ring
}

// NewMP allocates a MPRing able to hold up to capacity bytes of data.
func NewMP(capacity int) *MPRing {
	return &MPRing{r: *New(capacity)}
}

// Reset empties the ring. Like Ring.Reset, this must only run while no
// other goroutine can be enqueuing or draining — i.e. before a session
// slot is handed to a new connection.
func (m *MPRing) Reset() {
	m.mu.Lock()
	m.r.Reset()
	m.mu.Unlock()
}

// Enqueue appends p to the ring. All-or-nothing, like Ring.Enqueue.
func (m *MPRing) Enqueue(p []byte) int {
	m.mu.Lock()
	n := m.r.Enqueue(p)
	m.mu.Unlock()
	return n
}

// DataSize reports how many bytes are queued to send.
func (m *MPRing) DataSize() int {
	m.mu.Lock()
	n := m.r.DataSize()
	m.mu.Unlock()
	return n
}

// FreeSize reports how many bytes of headroom remain.
func (m *MPRing) FreeSize() int {
	m.mu.Lock()
	n := m.r.FreeSize()
	m.mu.Unlock()
	return n
}

// SendView captures the ring's current unread region in one critical
// section. The caller (the session's send-owning goroutine) uses the
// returned spans directly as the source for a vectored socket write,
// then reports how much was actually sent via Consume.
func (m *MPRing) SendView() SendView {
	m.mu.Lock()
	defer m.mu.Unlock()
	first, second := m.r.ReadPtrs()
	return SendView{First: first, Second: second, DataSize: m.r.DataSize()}
}

// Consume advances the read position by n bytes once the caller knows how
// much of a SendView was actually written out.
func (m *MPRing) Consume(n int) int {
	m.mu.Lock()
	c := m.r.Consume(n)
	m.mu.Unlock()
	return c
}
