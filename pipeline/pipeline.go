package pipeline

type Options struct {
	// KeepRemoved passes removed items to later steps, which is needed by
	// steps that print surrounding lines.
	KeepRemoved bool
}

type Metadata struct {
	Removed bool
	RecNum  int
	Source  string
	// GapBefore marks the first item emitted after skipped records.
	GapBefore bool
}

type Item[Value any] struct {
	Value    Value
	Metadata Metadata
}

func NewItem[Value any](value Value, recNum int, source string) Item[Value] {
	return Item[Value]{
		Value:    value,
		Metadata: Metadata{RecNum: recNum, Source: source},
	}
}

func (i Item[Value]) WithValue(value Value) Item[Value] {
	return Item[Value]{
		Value:    value,
		Metadata: i.Metadata,
	}
}

func Convert[In, Out any](item Item[In], value Out) Item[Out] {
	return Item[Out]{
		Value:    value,
		Metadata: item.Metadata,
	}
}

type Yield[T any] func(Item[T], error) bool
type Seq[T any] func(Yield[T])
type Step[In, Out any] func(Seq[In]) Seq[Out]

func Noop[T any]() Step[T, T] {
	return func(in Seq[T]) Seq[T] {
		return in
	}
}

func NewStep[In, Out any](opts Options, sink func(item Item[In], yield Yield[Out]) bool) Step[In, Out] {
	return NewStepWithFin(opts, sink, nil)
}

// NewStepWithFin is NewStep with a finalizer that runs once the input is
// exhausted and may still yield items.
func NewStepWithFin[In, Out any](
	opts Options,
	sink func(item Item[In], yield Yield[Out]) bool,
	finalize func(yield Yield[Out])) Step[In, Out] {
	return func(in Seq[In]) Seq[Out] {
		return func(yield Yield[Out]) {
			for v, err := range in {
				if err != nil {
					var def Item[Out]
					if !yield(def, err) {
						return
					}
					continue
				}
				if !opts.KeepRemoved && v.Metadata.Removed {
					continue
				}
				if !sink(v, yield) {
					return
				}
			}
			if finalize != nil {
				finalize(yield)
			}
		}
	}
}

// Chain composes steps left to right.
func Chain[T any](steps ...Step[T, T]) Step[T, T] {
	return func(in Seq[T]) Seq[T] {
		out := in
		for _, step := range steps {
			out = step(out)
		}
		return out
	}
}

// Collect drains seq, stopping at the first error.
func Collect[T any](seq Seq[T]) ([]Item[T], error) {
	var res []Item[T]
	var firstErr error
	seq(func(item Item[T], err error) bool {
		if err != nil {
			firstErr = err
			return false
		}
		res = append(res, item)
		return true
	})
	return res, firstErr
}
