package ring

import "cmp"

// Iterator is a random access cursor over the live elements of a Buffer.
// It stays valid until the next structural change of its buffer.
type Iterator[T any] struct {
	buf *Buffer[T]
	pos int
	end bool
	gen uint64
}

// Begin returns an iterator at the oldest element, or End for an empty buffer.
func (b *Buffer[T]) Begin() Iterator[T] {
	b.checkOpen("Begin")
	return b.iterAt(0)
}

// End returns the iterator one past the newest element.
func (b *Buffer[T]) End() Iterator[T] {
	b.checkOpen("End")
	return b.iterAt(b.count)
}

// iterAt returns an iterator at logical offset i, 0 <= i <= count.
func (b *Buffer[T]) iterAt(i int) Iterator[T] {
	if i == b.count {
		return Iterator[T]{buf: b, end: true, gen: b.gen}
	}
	return Iterator[T]{buf: b, pos: b.phys(i), gen: b.gen}
}

func (it Iterator[T]) Valid() bool {
	return it.buf != nil && !it.buf.closed && it.gen == it.buf.gen
}

func (it Iterator[T]) AtEnd() bool {
	return it.end
}

// Index is the logical offset of the iterator from the oldest element.
// End has index Len().
func (it Iterator[T]) Index() int {
	it.check("Index")
	return it.linear()
}

func (it Iterator[T]) Value() T {
	return *it.ptr("Value")
}

func (it Iterator[T]) Ptr() *T {
	return it.ptr("Ptr")
}

// Set overwrites the referenced element. It is not a structural change.
func (it Iterator[T]) Set(v T) {
	*it.ptr("Set") = v
}

// Next moves to the following element, or to End after the newest one.
func (it *Iterator[T]) Next() {
	it.check("Next")
	if it.end {
		violatef("Next", ErrOutOfRange, "increment of end iterator")
	}

	b := it.buf
	it.pos++
	if it.pos == len(b.slots) {
		it.pos = 0
	}
	if it.pos == b.tail() {
		it.end = true
		it.pos = 0
	}
}

// Prev moves to the preceding element. End moves to the newest element.
func (it *Iterator[T]) Prev() {
	it.check("Prev")
	if it.linear() == 0 {
		violatef("Prev", ErrOutOfRange, "decrement before the first element")
	}

	b := it.buf
	if it.end {
		it.end = false
		it.pos = b.phys(b.count - 1)
		return
	}
	it.pos--
	if it.pos < 0 {
		it.pos = len(b.slots) - 1
	}
}

// Add returns the iterator n elements further; n may be negative.
func (it Iterator[T]) Add(n int) Iterator[T] {
	return it.advance("Add", n)
}

func (it Iterator[T]) Sub(n int) Iterator[T] {
	return it.advance("Sub", -n)
}

// Diff returns the number of elements between other and it.
func (it Iterator[T]) Diff(other Iterator[T]) int {
	it.checkPair("Diff", other)
	return it.linear() - other.linear()
}

// Equal reports whether both iterators point at the same element of the same
// buffer. Zero iterators are equal to each other only.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	if it.buf == nil || it.buf != other.buf {
		return it.buf == other.buf
	}
	it.checkPair("Equal", other)
	if it.end || other.end {
		return it.end == other.end
	}
	return it.pos == other.pos
}

// Compare orders iterators of the same buffer by logical position.
func (it Iterator[T]) Compare(other Iterator[T]) int {
	it.checkPair("Compare", other)
	return cmp.Compare(it.linear(), other.linear())
}

func (it Iterator[T]) Less(other Iterator[T]) bool {
	return it.Compare(other) < 0
}

func (it Iterator[T]) advance(op string, n int) Iterator[T] {
	it.check(op)
	target := it.linear() + n
	if target < 0 || target > it.buf.count {
		violatef(op, ErrOutOfRange, "offset %d from index %d, length %d", n, it.linear(), it.buf.count)
	}
	return it.buf.iterAt(target)
}

// linear maps the physical position to its distance from the head so that
// positions on both sides of the wrap seam compare correctly.
func (it Iterator[T]) linear() int {
	b := it.buf
	if it.end {
		return b.count
	}
	n := len(b.slots)
	return (it.pos - b.head + n) % n
}

func (it Iterator[T]) ptr(op string) *T {
	it.check(op)
	if it.end {
		violatef(op, ErrOutOfRange, "dereference of end iterator")
	}
	return &it.buf.slots[it.pos]
}

func (it Iterator[T]) check(op string) {
	switch {
	case it.buf == nil:
		violatef(op, ErrInvalidated, "zero iterator")
	case it.buf.closed:
		violate(op, ErrClosed)
	case it.gen != it.buf.gen:
		violate(op, ErrInvalidated)
	}
}

func (it Iterator[T]) checkPair(op string, other Iterator[T]) {
	it.check(op)
	other.check(op)
	if it.buf != other.buf {
		violate(op, ErrForeignIterator)
	}
}
