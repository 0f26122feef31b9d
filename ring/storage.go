package ring

import (
	"fmt"
	"sync"
)

// Provider hands out fixed-length storage blocks to buffers and takes them back
// when a buffer is closed or replaced.
type Provider[T any] interface {
	Acquire(n int) ([]T, error)
	Release(slots []T)
}

// HeapProvider allocates every block with make and leaves reclamation to the GC.
type HeapProvider[T any] struct{}

func (HeapProvider[T]) Acquire(n int) (slots []T, err error) {
	defer func() {
		// make panics on lengths it cannot represent
		if r := recover(); r != nil {
			slots = nil
			err = &AllocationError{Slots: n, Err: fmt.Errorf("%v", r)}
		}
	}()
	return make([]T, n), nil
}

func (HeapProvider[T]) Release([]T) {}

// QuotaProvider shares a fixed slot budget between all buffers created with it.
// It is safe for concurrent use.
type QuotaProvider[T any] struct {
	mu    sync.Mutex
	limit int
	used  int
}

func NewQuotaProvider[T any](limit int) *QuotaProvider[T] {
	return &QuotaProvider[T]{limit: limit}
}

func (p *QuotaProvider[T]) Acquire(n int) ([]T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n > p.limit-p.used {
		return nil, &AllocationError{
			Slots: n,
			Err:   fmt.Errorf("%w: %d of %d slots in use", ErrQuotaExceeded, p.used, p.limit),
		}
	}
	p.used += n
	return make([]T, n), nil
}

func (p *QuotaProvider[T]) Release(slots []T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used -= len(slots)
}

// InUse reports how many slots are currently handed out.
func (p *QuotaProvider[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}
