package colors

import (
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimir-rom/ringex/cmd/config"
)

func TestColorizer(t *testing.T) {
	testee, err := NewColorizer(
		config.Palette{
			config.RoleMatch:     {Color: config.PColorRed},
			config.RoleContext:   {CustomColor: []int{90, 1}},
			config.RoleSeparator: {Color: config.PColorMagenta},
		},
		colorBuilder,
		true,
	)

	require.NoError(t, err)
	assert.Equal(t, "[31](line)", testee.Line("line", false))
	assert.Equal(t, "[90 1](line)", testee.Line("line", true))
	assert.Equal(t, "[35](--)", testee.Separator("--"))
	assert.Equal(t, fmt.Sprintf("[%d](x)", color.FgCyan), testee.Highlight("x"))
}

func TestColorizerErrors(t *testing.T) {
	_, err := NewColorizer(config.Palette{config.RoleMatch: {Color: "purple"}}, colorBuilder, true)
	assert.Error(t, err)

	_, err = NewColorizer(config.Palette{"title": {Color: config.PColorRed}}, colorBuilder, true)
	assert.Error(t, err)

	_, err = NewColorizer(config.Palette{config.RoleMatch: {}}, colorBuilder, true)
	assert.Error(t, err)
}

func TestDisabledColorizer(t *testing.T) {
	testee, err := NewColorizer(config.Palette{config.RoleMatch: {Color: "purple"}}, colorBuilder, false)
	require.NoError(t, err)
	testee = testee.WithHighlights([]string{"in"})

	assert.False(t, testee.Enabled)
	assert.Equal(t, "line", testee.Line("line", false))
	assert.Equal(t, "line", testee.Line("line", true))
	assert.Equal(t, "--", testee.Separator("--"))
}

func TestHighlights(t *testing.T) {
	testee, err := NewColorizer(nil, colorBuilder, true)
	require.NoError(t, err)

	plain := testee.WithHighlights(nil)
	assert.Equal(t, "an error", plain.Line("an error", false))

	testee = testee.WithHighlights([]string{"err", "", "a.b"})
	assert.Equal(t, "an [36](ERR)or [36](a.b) axb", testee.Line("an ERRor a.b axb", false))
	assert.Equal(t, "[90](an error)", testee.Line("an error", true))
}

func colorBuilder(value ...color.Attribute) StrColorizer {
	return func(s string) string {
		return fmt.Sprintf("%v(%s)", value, s)
	}
}
