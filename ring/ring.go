// Package ring implements a fixed-capacity generic ring buffer that overwrites
// its oldest element when full, together with a random access iterator that
// works in logical (oldest to newest) order across the wrap seam.
//
// A Buffer is not safe for concurrent use. Contract violations such as reading
// from an empty buffer, indexing out of range or using a stale iterator panic
// with a *ContractViolation; storage failures are returned as errors.
package ring

import (
	"errors"
	"fmt"
)

const DefaultCapacity = 1

type Option[T any] func(*Buffer[T])

// WithProvider makes the buffer take its storage from p instead of the heap.
func WithProvider[T any](p Provider[T]) Option[T] {
	return func(b *Buffer[T]) {
		if p != nil {
			b.provider = p
		}
	}
}

// WithEvictHandler registers a function called once for every element that
// PushBack overwrites because the buffer is full.
func WithEvictHandler[T any](h func(evicted T)) Option[T] {
	return func(b *Buffer[T]) {
		b.onEvict = h
	}
}

// WithCloner sets the function Clone and CopyFrom use to copy elements.
// Without it elements are copied by assignment.
func WithCloner[T any](c func(T) T) Option[T] {
	return func(b *Buffer[T]) {
		b.cloner = c
	}
}

type Buffer[T any] struct {
	slots    []T
	head     int
	count    int
	gen      uint64
	closed   bool
	provider Provider[T]
	onEvict  func(T)
	cloner   func(T) T
}

// New acquires capacity slots from the configured provider. A zero capacity
// selects DefaultCapacity.
func New[T any](capacity int, opts ...Option[T]) (*Buffer[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	b := &Buffer[T]{provider: HeapProvider[T]{}}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	slots, err := b.provider.Acquire(capacity)
	if err != nil {
		if !errors.Is(err, ErrAllocation) {
			err = &AllocationError{Slots: capacity, Err: err}
		}
		return nil, err
	}
	if len(slots) != capacity {
		b.provider.Release(slots)
		return nil, &AllocationError{
			Slots: capacity,
			Err:   fmt.Errorf("provider returned %d slots", len(slots)),
		}
	}

	b.slots = slots
	return b, nil
}

func MustNew[T any](capacity int, opts ...Option[T]) *Buffer[T] {
	b, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Buffer[T]) Len() int {
	return b.count
}

func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

func (b *Buffer[T]) Empty() bool {
	return b.count == 0
}

func (b *Buffer[T]) Full() bool {
	return !b.closed && b.count == len(b.slots)
}

// Generation changes on every structural mutation. Iterators created under an
// older generation are invalid.
func (b *Buffer[T]) Generation() uint64 {
	return b.gen
}

// PushBack appends v. When the buffer is full the oldest element is
// overwritten in place and returned with ok set to true.
func (b *Buffer[T]) PushBack(v T) (evicted T, ok bool) {
	b.checkOpen("PushBack")
	b.gen++

	tail := b.tail()
	if b.count < len(b.slots) {
		b.slots[tail] = v
		b.count++
		return evicted, false
	}

	// full: tail and head share a slot
	evicted = b.slots[tail]
	b.slots[tail] = v
	b.head = b.wrap(b.head + 1)
	if b.onEvict != nil {
		b.onEvict(evicted)
	}
	return evicted, true
}

// PopFront removes and returns the oldest element.
func (b *Buffer[T]) PopFront() T {
	b.checkOpen("PopFront")
	if b.count == 0 {
		violate("PopFront", ErrEmpty)
	}

	var zero T
	v := b.slots[b.head]
	b.slots[b.head] = zero
	b.count--
	b.gen++
	if b.count == 0 {
		b.head = 0
	} else {
		b.head = b.wrap(b.head + 1)
	}
	return v
}

func (b *Buffer[T]) TryPopFront() (T, bool) {
	if b.closed || b.count == 0 {
		var zero T
		return zero, false
	}
	return b.PopFront(), true
}

func (b *Buffer[T]) Front() T {
	return *b.ptr("Front", 0)
}

func (b *Buffer[T]) FrontPtr() *T {
	return b.ptr("FrontPtr", 0)
}

func (b *Buffer[T]) Back() T {
	return *b.ptr("Back", b.count-1)
}

func (b *Buffer[T]) BackPtr() *T {
	return b.ptr("BackPtr", b.count-1)
}

func (b *Buffer[T]) TryFront() (T, bool) {
	return b.TryAt(0)
}

func (b *Buffer[T]) TryBack() (T, bool) {
	return b.TryAt(b.count - 1)
}

// At returns the i-th element counting from the oldest.
func (b *Buffer[T]) At(i int) T {
	return *b.ptr("At", i)
}

func (b *Buffer[T]) Ptr(i int) *T {
	return b.ptr("Ptr", i)
}

func (b *Buffer[T]) Set(i int, v T) {
	*b.ptr("Set", i) = v
}

func (b *Buffer[T]) TryAt(i int) (T, bool) {
	if b.closed || i < 0 || i >= b.count {
		var zero T
		return zero, false
	}
	return b.slots[b.phys(i)], true
}

// Clear drops all elements and resets the head to the start of storage.
func (b *Buffer[T]) Clear() {
	b.checkOpen("Clear")
	b.zeroLive()
	b.head = 0
	b.count = 0
	b.gen++
}

// Slice returns a copy of the live elements, oldest first.
func (b *Buffer[T]) Slice() []T {
	b.checkOpen("Slice")
	out := make([]T, b.count)
	if b.count == 0 {
		return out
	}
	if end := b.head + b.count; end <= len(b.slots) {
		copy(out, b.slots[b.head:end])
	} else {
		n := copy(out, b.slots[b.head:])
		copy(out[n:], b.slots[:b.count-n])
	}
	return out
}

// Values yields the elements oldest first. The buffer must not be mutated
// structurally while the sequence is being consumed.
func (b *Buffer[T]) Values(yield func(T) bool) {
	for _, v := range b.All {
		if !yield(v) {
			return
		}
	}
}

// All yields logical indexes with their elements, oldest first.
func (b *Buffer[T]) All(yield func(int, T) bool) {
	b.checkOpen("All")
	gen := b.gen
	for i := 0; i < b.count; i++ {
		if !yield(i, b.slots[b.phys(i)]) {
			return
		}
		if gen != b.gen {
			violate("All", ErrInvalidated)
		}
	}
}

// Backward yields logical indexes with their elements, newest first.
func (b *Buffer[T]) Backward(yield func(int, T) bool) {
	b.checkOpen("Backward")
	gen := b.gen
	for i := b.count - 1; i >= 0; i-- {
		if !yield(i, b.slots[b.phys(i)]) {
			return
		}
		if gen != b.gen {
			violate("Backward", ErrInvalidated)
		}
	}
}

// Clone returns an independent buffer with the same capacity, provider and
// options holding copies of the live elements in the same order.
func (b *Buffer[T]) Clone() (*Buffer[T], error) {
	b.checkOpen("Clone")
	c, err := New(
		len(b.slots),
		WithProvider(b.provider),
		WithEvictHandler(b.onEvict),
		WithCloner(b.cloner))
	if err != nil {
		return nil, err
	}

	done := false
	defer func() {
		if !done {
			c.Close()
		}
	}()

	for i := 0; i < b.count; i++ {
		v := b.slots[b.phys(i)]
		if b.cloner != nil {
			v = b.cloner(v)
		}
		c.slots[i] = v
	}
	c.count = b.count
	done = true
	return c, nil
}

// CopyFrom replaces the contents of b with a copy of src. If the copy cannot
// be built b is left untouched.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	b.checkOpen("CopyFrom")
	if src == b {
		return nil
	}

	tmp, err := src.Clone()
	if err != nil {
		return err
	}
	b.Swap(tmp)
	tmp.Close()
	return nil
}

// Swap exchanges the storage and state of two buffers without copying elements.
func (b *Buffer[T]) Swap(other *Buffer[T]) {
	b.checkOpen("Swap")
	other.checkOpen("Swap")
	if b == other {
		return
	}

	b.slots, other.slots = other.slots, b.slots
	b.head, other.head = other.head, b.head
	b.count, other.count = other.count, b.count
	b.provider, other.provider = other.provider, b.provider
	b.onEvict, other.onEvict = other.onEvict, b.onEvict
	b.cloner, other.cloner = other.cloner, b.cloner
	b.gen++
	other.gen++
}

// Close drops the live elements and returns the storage to its provider.
// Any later use of the buffer other than Close is a contract violation.
func (b *Buffer[T]) Close() {
	if b.closed {
		return
	}
	b.zeroLive()
	b.provider.Release(b.slots)
	b.slots = nil
	b.head = 0
	b.count = 0
	b.closed = true
	b.gen++
}

func (b *Buffer[T]) ptr(op string, i int) *T {
	b.checkOpen(op)
	if b.count == 0 {
		violate(op, ErrEmpty)
	}
	if i < 0 || i >= b.count {
		violatef(op, ErrOutOfRange, "index %d, length %d", i, b.count)
	}
	return &b.slots[b.phys(i)]
}

func (b *Buffer[T]) zeroLive() {
	var zero T
	for i := 0; i < b.count; i++ {
		b.slots[b.phys(i)] = zero
	}
}

func (b *Buffer[T]) checkOpen(op string) {
	if b.closed {
		violate(op, ErrClosed)
	}
}

// phys maps a logical offset from the head to a storage offset.
func (b *Buffer[T]) phys(i int) int {
	return b.wrap(b.head + i)
}

func (b *Buffer[T]) wrap(i int) int {
	return i % len(b.slots)
}

func (b *Buffer[T]) tail() int {
	return b.phys(b.count)
}
