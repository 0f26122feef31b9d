package steps

import (
	"maps"
	"strconv"

	"github.com/vladimir-rom/ringex/pipeline"
	"github.com/vladimir-rom/ringex/ring"
)

// MovingAverage adds "<field>_avg" to every matched JSON record that has a
// numeric field, averaged over the last window such records.
func MovingAverage(opts pipeline.Options, field string, window int) pipeline.Step[Record, Record] {
	if len(field) == 0 || window <= 0 {
		return pipeline.Noop[Record]()
	}

	values := ring.MustNew[float64](window)
	sum := 0.0
	avgField := field + "_avg"

	return pipeline.NewStep(opts, func(rec pipeline.Item[Record], yield pipeline.Yield[Record]) bool {
		if rec.Metadata.Removed || rec.Value.Fields == nil {
			return yield(rec, nil)
		}

		v, ok := toFloat(rec.Value.Fields[field])
		if !ok {
			return yield(rec, nil)
		}

		if old, evicted := values.PushBack(v); evicted {
			sum -= old
		}
		sum += v

		fields := maps.Clone(rec.Value.Fields)
		fields[avgField] = sum / float64(values.Len())
		return yield(rec.WithValue(rec.Value.WithFields(fields)), nil)
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
