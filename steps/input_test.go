package steps

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimir-rom/ringex/colors"
	"github.com/vladimir-rom/ringex/pipeline"
)

func TestReadLines(t *testing.T) {
	items := collectItems(t, ReadLines(strings.NewReader("a\nb\r\nc"), "stdin"))
	require.Len(t, items, 3)
	for i, v := range []string{"a", "b", "c"} {
		assert.Equal(t, v, items[i].Value)
		assert.Equal(t, i, items[i].Metadata.RecNum)
		assert.Equal(t, "stdin", items[i].Metadata.Source)
	}
}

func TestOpenFileStripsBOM(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "bom.log")
	require.NoError(t, os.WriteFile(fileName, []byte("\uFEFFfirst\nsecond\n"), 0o600))

	closeFile, r, err := OpenFile(fileName)
	require.NoError(t, err)
	defer closeFile()

	assert.Equal(t, []string{"first", "second"}, values(t, ReadLines(r, fileName)))

	_, _, err = OpenFile(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestFollow(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(fileName, []byte("\uFEFFone\ntwo\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan pipeline.Item[string], 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for item, err := range Follow(ctx, fileName) {
			if err == nil {
				lines <- item
			}
		}
	}()

	assert.Equal(t, "one", receive(t, lines).Value)
	assert.Equal(t, "two", receive(t, lines).Value)

	f, err := os.OpenFile(fileName, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("thr")
	require.NoError(t, err)
	_, err = f.WriteString("ee\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	third := receive(t, lines)
	assert.Equal(t, "three", third.Value)
	assert.Equal(t, 2, third.Metadata.RecNum)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop after cancellation")
	}
}

func TestFollowMissingFile(t *testing.T) {
	_, err := pipeline.Collect(Follow(context.Background(), filepath.Join(t.TempDir(), "missing.log")))
	assert.Error(t, err)
}

func TestWriteLines(t *testing.T) {
	seq := func(yield pipeline.Yield[string]) {
		if !yield(pipeline.NewItem("a", 0, "test"), nil) {
			return
		}
		if !yield(pipeline.Item[string]{}, assert.AnError) {
			return
		}
		yield(pipeline.NewItem("b", 1, "test"), nil)
	}

	var out bytes.Buffer
	require.NoError(t, WriteLines(&out, false, seq))
	assert.Equal(t, "a\nb\n", out.String())

	out.Reset()
	require.NoError(t, WriteLines(&out, true, seq))
	assert.Equal(t, "a\n"+assert.AnError.Error()+"\nb\n", out.String())
}

func TestToText(t *testing.T) {
	c, err := colors.NewColorizer(nil, colors.DefaultColorBuilder, false)
	require.NoError(t, err)

	rec := ParseRecord(`prefix {"b":1,"a":2}`)
	gap := pipeline.NewItem(rec, 5, "test")
	gap.Metadata.GapBefore = true

	in := func(yield pipeline.Yield[Record]) {
		if !yield(pipeline.NewItem(rec, 0, "test"), nil) {
			return
		}
		yield(gap, nil)
	}

	assert.Equal(t,
		[]string{`prefix {"b":1,"a":2}`, GroupSeparator, `prefix {"b":1,"a":2}`},
		values(t, ToText(pipeline.Options{}, FormatRaw, c)(in)))
	assert.Equal(t,
		[]string{`{"a":2,"b":1}`, GroupSeparator, `{"a":2,"b":1}`},
		values(t, ToText(pipeline.Options{}, FormatJSON, c)(in)))

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan pipeline.Item[string]) pipeline.Item[string] {
	t.Helper()
	select {
	case item := <-ch:
		return item
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a followed line")
		return pipeline.Item[string]{}
	}
}
