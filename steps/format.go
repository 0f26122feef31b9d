package steps

import (
	"fmt"

	"github.com/vladimir-rom/ringex/colors"
	"github.com/vladimir-rom/ringex/pipeline"
)

type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
)

const GroupSeparator = "--"

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatRaw, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// ToText renders records for output. Removed records reaching this step are
// context lines; a separator line precedes every non-adjacent group.
func ToText(opts pipeline.Options, format Format, c *colors.Colorizer) pipeline.Step[Record, string] {
	return pipeline.NewStep(opts, func(rec pipeline.Item[Record], yield pipeline.Yield[string]) bool {
		if rec.Metadata.GapBefore {
			if !yield(pipeline.Convert(rec, c.Separator(GroupSeparator)), nil) {
				return false
			}
		}

		text := rec.Value.Text()
		if format == FormatJSON {
			text = rec.Value.JSONText()
		}
		return yield(pipeline.Convert(rec, c.Line(text, rec.Metadata.Removed)), nil)
	})
}
