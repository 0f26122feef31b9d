package ring

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCapacity = errors.New("capacity must not be negative")
	ErrAllocation      = errors.New("storage allocation failed")
	ErrQuotaExceeded   = errors.New("storage quota exceeded")

	ErrEmpty           = errors.New("buffer is empty")
	ErrOutOfRange      = errors.New("index out of range")
	ErrInvalidated     = errors.New("iterator invalidated by a structural change")
	ErrClosed          = errors.New("buffer is closed")
	ErrForeignIterator = errors.New("iterators belong to different buffers")
)

// AllocationError is returned when a Provider cannot supply storage.
type AllocationError struct {
	Slots int
	Err   error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("ring: cannot allocate %d slots: %v", e.Slots, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocation
}

// ContractViolation is the panic value used for programming errors such as
// reading from an empty buffer or using a stale iterator.
type ContractViolation struct {
	Op     string
	Err    error
	Detail string
}

func (v *ContractViolation) Error() string {
	if len(v.Detail) == 0 {
		return fmt.Sprintf("ring: %s: %v", v.Op, v.Err)
	}
	return fmt.Sprintf("ring: %s: %v (%s)", v.Op, v.Err, v.Detail)
}

func (v *ContractViolation) Unwrap() error {
	return v.Err
}

func violate(op string, err error) {
	panic(&ContractViolation{Op: op, Err: err})
}

func violatef(op string, err error, format string, args ...any) {
	panic(&ContractViolation{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)})
}
