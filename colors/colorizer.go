package colors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/vladimir-rom/ringex/cmd/config"
)

type StrColorizer func(s string) string

type ColorBuilder func(value ...color.Attribute) StrColorizer

// Colorizer paints output lines by role. A disabled colorizer returns its
// input unchanged.
type Colorizer struct {
	Enabled   bool
	Match     StrColorizer
	Context   StrColorizer
	Separator StrColorizer
	Highlight StrColorizer

	highlights *regexp.Regexp
}

func NewColorizer(palette config.Palette, colorBuilder ColorBuilder, enabled bool) (*Colorizer, error) {
	if !enabled {
		return &Colorizer{
			Match:     identity,
			Context:   identity,
			Separator: identity,
			Highlight: identity,
		}, nil
	}

	res := &Colorizer{
		Enabled:   true,
		Match:     identity,
		Context:   colorBuilder(90),
		Separator: colorBuilder(color.FgBlue),
		Highlight: colorBuilder(color.FgCyan),
	}

	for role, conf := range palette {
		col := colorizerForConfig(conf, colorBuilder)
		if col == nil {
			return nil, fmt.Errorf("unknown color for %s: %q", role, conf.Color)
		}

		switch role {
		case config.RoleMatch:
			res.Match = col
		case config.RoleContext:
			res.Context = col
		case config.RoleSeparator:
			res.Separator = col
		case config.RoleHighlight:
			res.Highlight = col
		default:
			return nil, fmt.Errorf("unknown color role: %s", role)
		}
	}
	return res, nil
}

func DefaultColorBuilder(value ...color.Attribute) StrColorizer {
	c := color.New(value...)
	c.EnableColor()
	return toStrColorizer(c.SprintFunc())
}

// WithHighlights makes Line paint every case-insensitive occurrence of subs.
func (c *Colorizer) WithHighlights(subs []string) *Colorizer {
	subs = lo.Compact(subs)
	if !c.Enabled || len(subs) == 0 {
		return c
	}

	escaped := lo.Map(subs, func(s string, _ int) string {
		return regexp.QuoteMeta(s)
	})
	res := *c
	res.highlights = regexp.MustCompile("(?i)" + strings.Join(escaped, "|"))
	return &res
}

// Line paints a matched line, or a context line when context is set.
func (c *Colorizer) Line(s string, context bool) string {
	if context {
		return c.Context(s)
	}
	if c.highlights == nil {
		return c.Match(s)
	}

	var b strings.Builder
	last := 0
	for _, loc := range c.highlights.FindAllStringIndex(s, -1) {
		b.WriteString(c.Match(s[last:loc[0]]))
		b.WriteString(c.Highlight(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(c.Match(s[last:]))
	return b.String()
}

func colorizerForConfig(colorConfig config.Color, colorBuilder ColorBuilder) StrColorizer {
	if len(colorConfig.Color) > 0 {
		switch colorConfig.Color {
		case config.PColorBlack:
			return colorBuilder(color.FgBlack)
		case config.PColorBlue:
			return colorBuilder(color.FgBlue)
		case config.PColorCyan:
			return colorBuilder(color.FgCyan)
		case config.PColorGreen:
			return colorBuilder(color.FgGreen)
		case config.PColorMagenta:
			return colorBuilder(color.FgMagenta)
		case config.PColorRed:
			return colorBuilder(color.FgRed)
		case config.PColorWhite:
			return colorBuilder(color.FgWhite)
		case config.PColorYellow:
			return colorBuilder(color.FgYellow)
		default:
			return nil
		}
	}

	if len(colorConfig.CustomColor) > 0 {
		return colorBuilder(toAttributes(colorConfig.CustomColor)...)
	}

	return nil
}

func toAttributes(ints []int) []color.Attribute {
	return lo.Map(ints, func(c, _ int) color.Attribute { return color.Attribute(c) })
}

func toStrColorizer(cf func(a ...any) string) StrColorizer {
	return func(s string) string {
		return cf(s)
	}
}

func identity(s string) string {
	return s
}
