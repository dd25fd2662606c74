package serialrw

import (
	"errors"
	"fmt"
	"iter"
)

// DefaultCapacity is the capacity used by NewDefaultRingBuffer.
const DefaultCapacity = 256

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBufferFull      = errors.New("ring buffer is full")
	ErrBufferEmpty     = errors.New("ring buffer is empty")
)

// RingBuffer is a fixed-capacity circular FIFO. Elements are put at the tail and
// popped from the head (PopFront) or the tail (PopBack).
//
// A RingBuffer is not safe for concurrent use. It must have a single writer or
// be guarded by the owner; iterating or copying while another goroutine mutates
// the buffer may observe a torn head/tail/count.
type RingBuffer[T comparable] struct {
	data  []T
	head  int
	tail  int
	count int
}

// NewRingBuffer returns an empty buffer holding at most capacity elements.
func NewRingBuffer[T comparable](capacity int) (*RingBuffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", ErrInvalidArgument, capacity)
	}
	return &RingBuffer[T]{data: make([]T, capacity)}, nil
}

// NewDefaultRingBuffer returns an empty buffer with DefaultCapacity.
func NewDefaultRingBuffer[T comparable]() *RingBuffer[T] {
	return &RingBuffer[T]{data: make([]T, DefaultCapacity)}
}

// Put appends v at the tail. It returns ErrBufferFull and leaves the buffer
// untouched when there is no free slot.
func (r *RingBuffer[T]) Put(v T) error {
	if r.count == len(r.data) {
		return ErrBufferFull
	}
	r.data[r.tail] = v
	r.tail = r.next(r.tail)
	r.count++
	return nil
}

// PopFront removes and returns the oldest element.
func (r *RingBuffer[T]) PopFront() (v T, err error) {
	if r.count == 0 {
		return v, ErrBufferEmpty
	}
	var zero T
	v = r.data[r.head]
	r.data[r.head] = zero
	r.head = r.next(r.head)
	r.count--
	return v, nil
}

// PopBack removes and returns the most recently added element.
func (r *RingBuffer[T]) PopBack() (v T, err error) {
	if r.count == 0 {
		return v, ErrBufferEmpty
	}
	var zero T
	r.tail = (r.tail - 1 + len(r.data)) % len(r.data)
	v = r.data[r.tail]
	r.data[r.tail] = zero
	r.count--
	return v, nil
}

// Write puts every element of p, or none of them if p does not fit.
func (r *RingBuffer[T]) Write(p []T) (int, error) {
	if len(p) > r.Free() {
		return 0, ErrBufferFull
	}

	for i := 0; i < len(p); i++ {
		r.data[r.tail] = p[i]
		r.tail = r.next(r.tail)
	}
	r.count += len(p)
	return len(p), nil
}

// Read pops up to len(p) elements into p, oldest first.
func (r *RingBuffer[T]) Read(p []T) int {
	n := min(len(p), r.count)
	for i := 0; i < n; i++ {
		p[i], _ = r.PopFront()
	}
	return n
}

// Contains reports whether v equals one of the live elements.
func (r *RingBuffer[T]) Contains(v T) bool {
	for i, idx := 0, r.head; i < r.count; i, idx = i+1, r.next(idx) {
		if r.data[idx] == v {
			return true
		}
	}
	return false
}

// CopyTo copies the live elements, oldest first, into dst starting at offset.
func (r *RingBuffer[T]) CopyTo(dst []T, offset int) error {
	if offset < 0 || len(dst)-offset < r.count {
		return fmt.Errorf("%w: cannot copy %d elements into length %d at offset %d", ErrInvalidArgument, r.count, len(dst), offset)
	}

	if r.count == 0 {
		return nil
	}
	if end := r.head + r.count; end <= len(r.data) {
		copy(dst[offset:], r.data[r.head:end])
	} else {
		n := copy(dst[offset:], r.data[r.head:])
		copy(dst[offset+n:], r.data[:r.count-n])
	}
	return nil
}

// All returns an iterator over the live elements from oldest to newest. Each
// call to the returned sequence starts again from the current head.
func (r *RingBuffer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i, idx := 0, r.head; i < r.count; i, idx = i+1, r.next(idx) {
			if !yield(r.data[idx]) {
				return
			}
		}
	}
}

// Clear drops every element and rewinds head and tail.
func (r *RingBuffer[T]) Clear() {
	clear(r.data)
	r.head = 0
	r.tail = 0
	r.count = 0
}

func (r *RingBuffer[T]) Len() int {
	return r.count
}

func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}

func (r *RingBuffer[T]) Free() int {
	return len(r.data) - r.count
}

func (r *RingBuffer[T]) IsFull() bool {
	return r.count == len(r.data)
}

func (r *RingBuffer[T]) IsEmpty() bool {
	return r.count == 0
}

func (r *RingBuffer[T]) next(idx int) int {
	idx++
	if idx == len(r.data) {
		return 0
	}
	return idx
}
