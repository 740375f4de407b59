// Package ring implements the bounded circular byte buffers that back a
// session's receive and send paths. One byte of capacity is permanently
// reserved so that the full and empty states can be told apart by comparing
// the read and write positions, instead of carrying a separate counter.
package ring

// Ring is a single-threaded ring buffer. It carries no locking of its own:
// callers must guarantee that at most one goroutine ever touches a given
// Ring at a time. This is the shape used for a session's receive path,
// where only the goroutine currently draining that session's socket ever
// reads or writes the ring.
type Ring struct {
	buf  []byte
	r, w int
}

// New allocates a Ring able to hold up to capacity bytes of data.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{buf: make([]byte, capacity+1)}
}

// Reset empties the ring without reallocating the backing array. Per the
// spec's invariant, this must only run before a session is registered with
// the engine — never concurrently with a reader or writer.
func (r *Ring) Reset() {
	r.r, r.w = 0, 0
}

func (r *Ring) dataSize() int {
	if r.w >= r.r {
		return r.w - r.r
	}
	return len(r.buf) - r.r + r.w
}

func (r *Ring) freeSize() int {
	return len(r.buf) - r.dataSize() - 1
}

// DataSize reports how many bytes are currently available to read.
func (r *Ring) DataSize() int { return r.dataSize() }

// FreeSize reports how many bytes can currently be written.
func (r *Ring) FreeSize() int { return r.freeSize() }

// Capacity reports the usable capacity of the ring (excluding the reserved
// disambiguation byte).
func (r *Ring) Capacity() int { return len(r.buf) - 1 }

// Enqueue copies p into the ring. It is all-or-nothing: if there is not
// room for the whole of p, nothing is written and 0 is returned.
func (r *Ring) Enqueue(p []byte) int {
	n := len(p)
	if n == 0 || r.freeSize() < n {
		return 0
	}
	first := n
	if first > len(r.buf)-r.w {
		first = len(r.buf) - r.w
	}
	copy(r.buf[r.w:], p[:first])
	if n > first {
		copy(r.buf, p[first:n])
	}
	r.w = (r.w + n) % len(r.buf)
	return n
}

// Dequeue copies exactly len(p) bytes out of the ring into p and advances
// the read position. All-or-nothing: if fewer than len(p) bytes are
// available, nothing is consumed and 0 is returned.
func (r *Ring) Dequeue(p []byte) int {
	n := len(p)
	if n == 0 || r.dataSize() < n {
		return 0
	}
	r.copyOut(p, n)
	r.r = (r.r + n) % len(r.buf)
	return n
}

// Peek copies len(p) bytes out of the ring without advancing the read
// position. All-or-nothing, like Dequeue.
func (r *Ring) Peek(p []byte) int {
	n := len(p)
	if n == 0 || r.dataSize() < n {
		return 0
	}
	r.copyOut(p, n)
	return n
}

func (r *Ring) copyOut(p []byte, n int) {
	first := n
	if first > len(r.buf)-r.r {
		first = len(r.buf) - r.r
	}
	copy(p[:first], r.buf[r.r:r.r+first])
	if n > first {
		copy(p[first:n], r.buf[:n-first])
	}
}

// Consume advances the read position by n bytes without copying anything
// out, for callers that already peeked the data they needed.
func (r *Ring) Consume(n int) int {
	if n == 0 || r.dataSize() < n {
		return 0
	}
	r.r = (r.r + n) % len(r.buf)
	return n
}

// WritePtrs returns up to two contiguous spans covering the current free
// region, for an external writer (e.g. a socket Read call) to fill
// directly. The caller must follow up with MoveWrite once it knows how
// many bytes were actually written.
func (r *Ring) WritePtrs() (first, second []byte) {
	free := r.freeSize()
	if free == 0 {
		return nil, nil
	}
	firstLen := free
	if firstLen > len(r.buf)-r.w {
		firstLen = len(r.buf) - r.w
	}
	first = r.buf[r.w : r.w+firstLen]
	if free > firstLen {
		second = r.buf[:free-firstLen]
	}
	return first, second
}

// ReadPtrs returns up to two contiguous spans covering the current used
// region, for an external reader (e.g. a vectored socket write) to read
// directly without copying through a scratch buffer.
func (r *Ring) ReadPtrs() (first, second []byte) {
	data := r.dataSize()
	if data == 0 {
		return nil, nil
	}
	firstLen := data
	if firstLen > len(r.buf)-r.r {
		firstLen = len(r.buf) - r.r
	}
	first = r.buf[r.r : r.r+firstLen]
	if data > firstLen {
		second = r.buf[:data-firstLen]
	}
	return first, second
}

// MoveWrite advances the write position by n bytes after an external
// writer filled the spans returned by WritePtrs. Fails (returns 0) if n
// exceeds the free space that was available.
func (r *Ring) MoveWrite(n int) int {
	if n == 0 || r.freeSize() < n {
		return 0
	}
	r.w = (r.w + n) % len(r.buf)
	return n
}
