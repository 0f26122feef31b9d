package steps

import (
	"fmt"
	"regexp"

	"github.com/charlievieth/strcase"
	"github.com/vladimir-rom/ringex/pipeline"
)

// IncludeAny keeps lines containing any of substrings, ignoring case.
func IncludeAny(opts pipeline.Options, substrings []string) pipeline.Step[string, string] {
	if len(substrings) == 0 {
		return pipeline.Noop[string]()
	}

	return markRemoved(opts, func(line string) bool {
		for _, s := range substrings {
			if strcase.Contains(line, s) {
				return false
			}
		}
		return true
	})
}

// ExcludeAny drops lines containing any of substrings, ignoring case.
func ExcludeAny(opts pipeline.Options, substrings []string) pipeline.Step[string, string] {
	if len(substrings) == 0 {
		return pipeline.Noop[string]()
	}

	return markRemoved(opts, func(line string) bool {
		for _, s := range substrings {
			if strcase.Contains(line, s) {
				return true
			}
		}
		return false
	})
}

func IncludeRegexp(opts pipeline.Options, regexps []string) (pipeline.Step[string, string], error) {
	if len(regexps) == 0 {
		return pipeline.Noop[string](), nil
	}

	rs, err := compileAll(regexps)
	if err != nil {
		return nil, err
	}

	return markRemoved(opts, func(line string) bool {
		for _, r := range rs {
			if r.MatchString(line) {
				return false
			}
		}
		return true
	}), nil
}

func ExcludeRegexp(opts pipeline.Options, regexps []string) (pipeline.Step[string, string], error) {
	if len(regexps) == 0 {
		return pipeline.Noop[string](), nil
	}

	rs, err := compileAll(regexps)
	if err != nil {
		return nil, err
	}

	return markRemoved(opts, func(line string) bool {
		for _, r := range rs {
			if r.MatchString(line) {
				return true
			}
		}
		return false
	}), nil
}

func markRemoved(opts pipeline.Options, remove func(line string) bool) pipeline.Step[string, string] {
	return pipeline.NewStep(opts, func(line pipeline.Item[string], yield pipeline.Yield[string]) bool {
		if !line.Metadata.Removed && remove(line.Value) {
			line.Metadata.Removed = true
		}
		return yield(line, nil)
	})
}

func compileAll(regexps []string) ([]*regexp.Regexp, error) {
	rs := make([]*regexp.Regexp, len(regexps))
	for i := range regexps {
		r, err := regexp.Compile(regexps[i])
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression %s: %w", regexps[i], err)
		}
		rs[i] = r
	}
	return rs, nil
}
