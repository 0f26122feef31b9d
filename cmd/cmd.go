package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"

	"github.com/fatih/color"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/vladimir-rom/ringex/cmd/config"
	"github.com/vladimir-rom/ringex/colors"
	"github.com/vladimir-rom/ringex/pipeline"
	"github.com/vladimir-rom/ringex/steps"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := createRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type filterParams struct {
	kqlFilter     string
	jqFilter      string
	include       []string
	exclude       []string
	includeRegexp []string
	excludeRegexp []string
	highlights    []string
	first         int
	last          int
	context       int
	before        int
	after         int
	avgField      string
	avgWindow     int
	format        string
	colorMode     string
	follow        bool
	showErrors    bool
	verbose       bool
	palette       config.Palette
}

func createRootCmd() *cobra.Command {
	k := koanf.New(".")
	rootCmd := &cobra.Command{
		Use:          "ringex [flags] file-name",
		Short:        "ringex filters log lines and keeps a bounded history of them for --last and --context",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "YAML file with default values for any flag and a 'colors' section")
	reg := config.NewRegistry(k, rootCmd.Flags())
	resolve := defineParams(reg)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fileName, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		if err := reg.Load(fileName); err != nil {
			return err
		}

		params, err := resolve()
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "ringex: ", 0)
		if params.verbose && len(fileName) > 0 {
			logger.Printf("config loaded from %s", fileName)
		}

		input, closeInput, err := openInput(cmd, args[0], params.follow)
		if err != nil {
			return err
		}
		defer closeInput()

		return runPipeline(params, input, cmd.OutOrStdout(), logger)
	}

	return rootCmd
}

func defineParams(reg *config.Registry) func() (*filterParams, error) {
	kqlFilter := reg.StringP("filter-kql", "f", "", "filter JSON records with the Kibana Query Language. Example: 'level:(error OR warn)'")
	jqFilter := reg.String("jq", "", "filter or transform records with a jq program")
	include := reg.StringsP("include", "i", nil, "include only lines with any of the specified substrings (case-insensitive)")
	exclude := reg.StringsP("exclude", "e", nil, "exclude lines with any of the specified substrings (case-insensitive)")
	includeRegexp := reg.Strings("include-regexp", nil, "include only lines matching any of the regular expressions")
	excludeRegexp := reg.Strings("exclude-regexp", nil, "exclude lines matching any of the regular expressions")
	highlights := reg.StringsP("highlight", "l", nil, "highlight substrings in output")
	first := reg.Int("first", 0, "print only the first N matched lines")
	last := reg.Int("last", 0, "print only the last N matched lines")
	contextCount := reg.IntP("context", "C", 0, "print N lines before and after each matched line")
	before := reg.IntP("before", "B", 0, "print N lines before each matched line, overrides --context")
	after := reg.IntP("after", "A", 0, "print N lines after each matched line, overrides --context")
	avgField := reg.String("avg-field", "", "add <field>_avg with the moving average of a numeric JSON field")
	avgWindow := reg.Int("avg-window", 10, "number of records the moving average spans")
	format := reg.String("format", string(steps.FormatRaw), "output format: raw or json")
	colorMode := reg.String("color", "auto", "colorize output: auto, always or never")
	follow := reg.BoolP("follow", "F", false, "keep reading lines appended to the file until interrupted")
	showErrors := reg.Bool("show-errors", false, "show processing errors")
	verbose := reg.BoolP("verbose", "v", false, "report dropped history to stderr")

	return func() (*filterParams, error) {
		p := &filterParams{
			kqlFilter:     kqlFilter(),
			jqFilter:      jqFilter(),
			include:       include(),
			exclude:       exclude(),
			includeRegexp: includeRegexp(),
			excludeRegexp: excludeRegexp(),
			highlights:    highlights(),
			first:         first(),
			last:          last(),
			context:       contextCount(),
			before:        before(),
			after:         after(),
			avgField:      avgField(),
			avgWindow:     avgWindow(),
			format:        format(),
			colorMode:     colorMode(),
			follow:        follow(),
			showErrors:    showErrors(),
			verbose:       verbose(),
		}
		if err := reg.Unmarshal("colors", &p.palette); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func openInput(cmd *cobra.Command, fileName string, follow bool) (pipeline.Seq[string], func() error, error) {
	noop := func() error { return nil }
	switch {
	case fileName == "-" && follow:
		return nil, nil, errors.New("--follow needs a file name, not stdin")
	case fileName == "-":
		return steps.ReadLines(cmd.InOrStdin(), "stdin"), noop, nil
	case follow:
		return steps.Follow(cmd.Context(), fileName), noop, nil
	}

	closeFile, r, err := steps.OpenFile(fileName)
	if err != nil {
		return nil, nil, err
	}
	return steps.ReadLines(r, fileName), closeFile, nil
}

func runPipeline(params *filterParams, input pipeline.Seq[string], w io.Writer, logger *log.Logger) error {
	before, after := params.before, params.after
	if before == 0 {
		before = params.context
	}
	if after == 0 {
		after = params.context
	}

	opts := pipeline.Options{
		KeepRemoved: before > 0 || after > 0,
	}

	format, err := steps.ParseFormat(params.format)
	if err != nil {
		return err
	}
	colorizer, err := newColorizer(params)
	if err != nil {
		return err
	}

	includeRegexp, err := steps.IncludeRegexp(opts, params.includeRegexp)
	if err != nil {
		return err
	}
	excludeRegexp, err := steps.ExcludeRegexp(opts, params.excludeRegexp)
	if err != nil {
		return err
	}
	filterByKQL, err := steps.FilterByKQL(opts, params.kqlFilter)
	if err != nil {
		return err
	}
	filterByJq, err := steps.FilterByJq(opts, params.jqFilter)
	if err != nil {
		return err
	}

	evicted := 0
	var onEvict func(pipeline.Item[steps.Record])
	if params.verbose {
		onEvict = func(pipeline.Item[steps.Record]) { evicted++ }
	}

	processLines := pipeline.Chain(
		steps.IncludeAny(opts, params.include),
		steps.ExcludeAny(opts, params.exclude),
		includeRegexp,
		excludeRegexp,
	)

	processRecords := pipeline.Chain(
		filterByKQL,
		filterByJq,
		steps.MovingAverage(opts, params.avgField, params.avgWindow),
		steps.First[steps.Record](opts, params.first, after),
		steps.Last(opts, params.last, before, after, onEvict),
		steps.Context[steps.Record](opts, before, after),
	)

	err = steps.WriteLines(
		w,
		params.showErrors,
		steps.ToText(opts, format, colorizer)(
			processRecords(
				steps.ToRecords(opts)(
					processLines(input)))))

	if evicted > 0 {
		logger.Printf("%d lines were pushed out of the --last %d window", evicted, params.last)
	}
	return err
}

func newColorizer(params *filterParams) (*colors.Colorizer, error) {
	var enabled bool
	switch params.colorMode {
	case "auto":
		enabled = !color.NoColor
	case "always":
		enabled = true
	case "never":
		enabled = false
	default:
		return nil, fmt.Errorf("unknown color mode: %s", params.colorMode)
	}

	c, err := colors.NewColorizer(params.palette, colors.DefaultColorBuilder, enabled)
	if err != nil {
		return nil, err
	}
	return c.WithHighlights(slices.Concat(params.include, params.highlights)), nil
}
