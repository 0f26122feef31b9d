package steps

import (
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/vladimir-rom/gokql"
	"github.com/vladimir-rom/ringex/pipeline"
)

// FilterByKQL keeps JSON records matching a Kibana Query Language filter.
// Plain text records never match.
func FilterByKQL(opts pipeline.Options, filter string) (pipeline.Step[Record, Record], error) {
	if len(filter) == 0 {
		return pipeline.Noop[Record](), nil
	}

	expression, err := gokql.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("filter parsing error: %w", err)
	}

	return pipeline.NewStep(opts, func(rec pipeline.Item[Record], yield pipeline.Yield[Record]) bool {
		if rec.Metadata.Removed {
			return yield(rec, nil)
		}
		if rec.Value.Fields == nil {
			rec.Metadata.Removed = true
			return yield(rec, nil)
		}

		ev, err := gokql.NewMapEvaluator(map[string]any(rec.Value.Fields))
		if err != nil {
			return yield(rec, err)
		}
		matched, err := expression.Match(ev)
		if err != nil {
			return yield(rec, err)
		}
		rec.Metadata.Removed = !matched
		return yield(rec, nil)
	}), nil
}

// FilterByJq runs a jq program over every record. Boolean results filter the
// record, objects replace its fields and other values are wrapped in {"item": v}.
func FilterByJq(opts pipeline.Options, filter string) (pipeline.Step[Record, Record], error) {
	if len(filter) == 0 {
		return pipeline.Noop[Record](), nil
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("jq parsing error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation error: %w", err)
	}

	return pipeline.NewStep(opts, func(rec pipeline.Item[Record], yield pipeline.Yield[Record]) bool {
		if rec.Metadata.Removed {
			return yield(rec, nil)
		}

		var input any = rec.Value.Line
		if rec.Value.Fields != nil {
			input = map[string]any(rec.Value.Fields)
		}

		iter := code.Run(input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			switch result := v.(type) {
			case error:
				if !yield(rec, fmt.Errorf("jq: record %d: %w", rec.Metadata.RecNum, result)) {
					return false
				}
			case bool:
				out := rec
				out.Metadata.Removed = !result
				if !yield(out, nil) {
					return false
				}
			case map[string]any:
				if !yield(rec.WithValue(rec.Value.WithFields(result)), nil) {
					return false
				}
			default:
				if !yield(rec.WithValue(rec.Value.WithFields(JSON{"item": result})), nil) {
					return false
				}
			}
		}
		return true
	}), nil
}
