package steps

import (
	"github.com/vladimir-rom/ringex/pipeline"
	"github.com/vladimir-rom/ringex/ring"
)

// First passes the first count matched items. Removed items are passed along
// until the limit is reached, and then up to after more of them, so that a
// later Context step can print the lines around the last match.
func First[V any](opts pipeline.Options, count, after int) pipeline.Step[V, V] {
	if count <= 0 {
		return pipeline.Noop[V]()
	}

	matched := 0
	trailing := 0
	return pipeline.NewStep(opts, func(item pipeline.Item[V], yield pipeline.Yield[V]) bool {
		if item.Metadata.Removed {
			if matched < count {
				return yield(item, nil)
			}
			if trailing >= after {
				return false
			}
			trailing++
			return yield(item, nil)
		}

		if matched == count {
			return false
		}
		matched++
		if !yield(item, nil) {
			return false
		}
		return matched < count || (opts.KeepRemoved && after > 0)
	})
}

// held is a matched item kept by Last together with the removed items that
// may still be printed as its context.
type held[V any] struct {
	lead  []pipeline.Item[V]
	match pipeline.Item[V]
}

// Last holds back everything and yields the final count matched items once
// the input is exhausted. Up to before removed items preceding every held
// match and up to after removed items following it are kept with it for a
// later Context step. onEvict, if set, sees every match pushed out of the
// window.
func Last[V any](opts pipeline.Options, count, before, after int, onEvict func(pipeline.Item[V])) pipeline.Step[V, V] {
	if count <= 0 {
		return pipeline.Noop[V]()
	}

	var evictHandler func(held[V])
	if onEvict != nil {
		evictHandler = func(h held[V]) { onEvict(h.match) }
	}
	matches := ring.MustNew(count, ring.WithEvictHandler(evictHandler))

	var leading *ring.Buffer[pipeline.Item[V]]
	if before > 0 {
		leading = ring.MustNew[pipeline.Item[V]](before)
	}
	var trailing []pipeline.Item[V]

	reset := func() {
		matches.Clear()
		trailing = nil
		if leading != nil {
			leading.Clear()
		}
	}

	return pipeline.NewStepWithFin(
		opts,
		func(item pipeline.Item[V], yield pipeline.Yield[V]) bool {
			if item.Metadata.Removed {
				switch {
				case !matches.Empty() && len(trailing) < after:
					trailing = append(trailing, item)
				case leading != nil:
					leading.PushBack(item)
				}
				return true
			}

			lead := trailing
			if leading != nil {
				lead = append(lead, leading.Slice()...)
				leading.Clear()
			}
			trailing = nil
			matches.PushBack(held[V]{lead: lead, match: item})
			return true
		},
		func(yield pipeline.Yield[V]) {
			defer reset()
			for h := range matches.Values {
				for _, item := range h.lead {
					if !yield(item, nil) {
						return
					}
				}
				if !yield(h.match, nil) {
					return
				}
			}
			for _, item := range trailing {
				if !yield(item, nil) {
					return
				}
			}
		},
	)
}

// Context passes matched items together with up to before preceding and
// after following removed items. The first item of a group that does not
// directly continue the previous one is marked with GapBefore.
func Context[V any](opts pipeline.Options, before, after int) pipeline.Step[V, V] {
	if !opts.KeepRemoved {
		return pipeline.NewStep(opts, func(item pipeline.Item[V], yield pipeline.Yield[V]) bool {
			if item.Metadata.Removed {
				return true
			}
			return yield(item, nil)
		})
	}

	var history *ring.Buffer[pipeline.Item[V]]
	if before > 0 {
		history = ring.MustNew[pipeline.Item[V]](before)
	}

	lastEmitted := -1
	emit := func(item pipeline.Item[V], yield pipeline.Yield[V]) bool {
		if lastEmitted >= 0 && item.Metadata.RecNum != lastEmitted+1 {
			item.Metadata.GapBefore = true
		}
		lastEmitted = item.Metadata.RecNum
		return yield(item, nil)
	}

	remainingAfter := 0
	return pipeline.NewStep(opts, func(item pipeline.Item[V], yield pipeline.Yield[V]) bool {
		if !item.Metadata.Removed {
			if history != nil {
				for prev := range history.Values {
					if !emit(prev, yield) {
						return false
					}
				}
				history.Clear()
			}

			remainingAfter = after
			return emit(item, yield)
		}

		if remainingAfter > 0 {
			remainingAfter--
			return emit(item, yield)
		}

		if history != nil {
			history.PushBack(item)
		}
		return true
	})
}
