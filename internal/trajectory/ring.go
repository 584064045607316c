// Package trajectory keeps short motion histories and derives the
// heuristics controllers use from them: where the goalkeeper should stand
// to meet the ball, and whether a robot is pinned.
package trajectory

// Ring is a fixed-capacity FIFO. Pushing onto a full ring evicts the
// oldest element.
type Ring[T any] struct {
	buf  []T
	next int
	size int
}

// NewRing returns an empty ring holding at most capacity elements. A
// capacity below 1 is raised to 1.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{buf: make([]T, max(capacity, 1))}
}

func (r *Ring[T]) Push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *Ring[T]) Len() int { return r.size }

func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th oldest element. It panics when i is out of range.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("trajectory: ring index out of range")
	}
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	return r.buf[(start+i)%len(r.buf)]
}

// Last returns the newest element.
func (r *Ring[T]) Last() (T, bool) {
	if r.size == 0 {
		var zero T
		return zero, false
	}
	return r.At(r.size - 1), true
}

// Values copies the contents, oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.next, r.size = 0, 0
}
