package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoModification(t *testing.T) {
	in := []string{`{"field1":"value1","field2":"value2"}`, "plain text"}
	testCmd(t, nil, in, in)
}

func TestFirst(t *testing.T) {
	testCmd(t,
		[]string{"--first", "1"},
		[]string{"value1", "value2"},
		[]string{"value1"})
}

func TestLast(t *testing.T) {
	testCmd(t,
		[]string{"--last", "2"},
		[]string{"value1", "value2", "value3", "value4"},
		[]string{"value3", "value4"})

	testCmd(t,
		[]string{"--last", "2", "-i", "value"},
		[]string{"value1", "other", "value2", "value3", "other"},
		[]string{"value2", "value3"})
}

func TestFirstAndLast(t *testing.T) {
	testCmd(t,
		[]string{"--first", "3", "--last", "2"},
		[]string{"value1", "value2", "value3", "value4"},
		[]string{"value2", "value3"})
}

func TestKQL(t *testing.T) {
	testCmd(t,
		[]string{"-f", "field:value2"},
		[]string{`{"field":"value1"}`, `{"field":"value2"}`, `{"field":"value3"}`, "field:value2"},
		[]string{`{"field":"value2"}`})
}

func TestJq(t *testing.T) {
	testCmd(t,
		[]string{"--jq", `.field=="value2"`},
		[]string{`{"field":"value1"}`, `{"field":"value2"}`},
		[]string{`{"field":"value2"}`})

	testCmd(t,
		[]string{"--jq", `. + {"foo":"bar"}`},
		[]string{`{"field":"value1"}`},
		[]string{`{"field":"value1","foo":"bar"}`})
}

func TestIncludeExclude(t *testing.T) {
	in := []string{"value1", "value2", "value3"}
	testCmd(t, []string{"--include", "Value2"}, in, []string{"value2"})
	testCmd(t, []string{"--exclude", "VALUE2"}, in, []string{"value1", "value3"})
	testCmd(t, []string{"--include-regexp", "value[1-2]"}, in, []string{"value1", "value2"})
	testCmd(t, []string{"--exclude-regexp", "value[1-2]"}, in, []string{"value3"})
}

func TestContext(t *testing.T) {
	input := make([]string, 0)
	for i := range 5 {
		input = append(input, fmt.Sprintf("value%d", i+1))
	}

	testCmd(t,
		[]string{"--include", "Value3", "--context", "1"},
		input,
		[]string{"value2", "value3", "value4"})

	testCmd(t,
		[]string{"--include", "Value1", "--context", "1"},
		input,
		[]string{"value1", "value2"})

	testCmd(t,
		[]string{"--include", "Value5", "--context", "1"},
		input,
		[]string{"value4", "value5"})

	testCmd(t,
		[]string{"--include", "Value3", "--context", "5"},
		input,
		input)

	testCmd(t,
		[]string{"--include", "Value1111", "--context", "1"},
		input,
		[]string{})
}

func TestBeforeAfterWithSeparator(t *testing.T) {
	input := make([]string, 0)
	for i := range 10 {
		input = append(input, fmt.Sprintf("line%d", i))
	}

	testCmd(t,
		[]string{"-i", "line2", "-i", "line8", "-B", "1", "-A", "0"},
		input,
		[]string{"line1", "line2", "--", "line7", "line8"})
}

func TestFirstLastWithContext(t *testing.T) {
	testCmd(t,
		[]string{"-i", "match", "-C", "1", "--first", "1"},
		[]string{"a", "match1", "b", "c", "match2"},
		[]string{"a", "match1", "b"})

	input := []string{"a", "match1", "b", "c", "d", "match2", "e"}
	testCmd(t,
		[]string{"-i", "match", "-C", "1", "--last", "3"},
		input,
		[]string{"a", "match1", "b", "--", "d", "match2", "e"})

	testCmd(t,
		[]string{"-i", "match", "-C", "1", "--last", "1"},
		input,
		[]string{"d", "match2", "e"})

	_, stderr, err := execute(t,
		[]string{"-i", "match", "-C", "1", "--last", "1", "-v", "--color", "never", "-"},
		input)
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 lines were pushed out of the --last 1 window")
}

func TestMovingAverage(t *testing.T) {
	testCmd(t,
		[]string{"--avg-field", "ms", "--avg-window", "2", "--format", "json"},
		[]string{`{"ms":2}`, `{"ms":4}`, `{"ms":8}`, "no json"},
		[]string{`{"ms":2,"ms_avg":2}`, `{"ms":4,"ms_avg":3}`, `{"ms":8,"ms_avg":6}`, "no json"})
}

func TestFormatJSON(t *testing.T) {
	testCmd(t,
		[]string{"--format", "json"},
		[]string{`ts=1 {"b":1,"a":2}`},
		[]string{`{"a":2,"b":1}`})
}

func TestConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "ringex.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("last: 1\ninclude: [value]\n"), 0o600))

	in := []string{"value1", "other", "value2", "other"}
	testCmd(t, []string{"--config", configFile}, in, []string{"value2"})
	testCmd(t, []string{"--config", configFile, "--last", "2"}, in, []string{"value1", "value2"})
}

func TestColorsFromConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "ringex.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("colors:\n  match:\n    color: purple\n"), 0o600))

	_, _, err := execute(t, []string{"--config", configFile, "--color", "always", "-"}, nil)
	assert.ErrorContains(t, err, "purple")
}

func TestReadFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(fileName, []byte("\uFEFFvalue1\nvalue2\n"), 0o600))

	out, _, err := execute(t, []string{"--color", "never", "--last", "1", fileName}, nil)
	require.NoError(t, err)
	assert.Equal(t, "value2\n", out)
}

func TestVerbose(t *testing.T) {
	_, stderr, err := execute(t,
		[]string{"--color", "never", "--last", "1", "-v", "-"},
		[]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 lines were pushed out of the --last 1 window")
}

func TestInvalidArguments(t *testing.T) {
	for _, args := range [][]string{
		{"--format", "xml", "-"},
		{"--color", "sometimes", "-"},
		{"--include-regexp", "(", "-"},
		{"--jq", ".[", "-"},
		{"--follow", "-"},
		{"--config", "missing.yaml", "-"},
		{filepath.Join(t.TempDir(), "missing.log")},
	} {
		_, _, err := execute(t, args, nil)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func testCmd(t *testing.T, args []string, in []string, expectedOut []string) {
	t.Helper()
	args = append(args, "--color", "never", "--show-errors", "-")
	out, _, err := execute(t, args, in)
	t.Log(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if out == "" {
		lines = []string{}
	}
	assert.Equal(t, expectedOut, lines)
}

func execute(t *testing.T, args []string, in []string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := createRootCmd()
	cmd.SetArgs(args)

	inBuffer := bytes.Buffer{}
	for _, line := range in {
		inBuffer.WriteString(line)
		inBuffer.WriteByte('\n')
	}
	outBuffer := bytes.Buffer{}
	errBuffer := bytes.Buffer{}
	cmd.SetIn(&inBuffer)
	cmd.SetOut(&outBuffer)
	cmd.SetErr(&errBuffer)

	err = cmd.Execute()
	return outBuffer.String(), errBuffer.String(), err
}
