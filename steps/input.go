package steps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/vladimir-rom/ringex/pipeline"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

func OpenFile(fileName string) (close func() error, reader io.Reader, err error) {
	raw, err := os.Open(fileName)
	if err != nil {
		return nil, nil, err
	}

	return raw.Close, transform.NewReader(raw, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
}

func ReadLines(r io.Reader, source string) pipeline.Seq[string] {
	return func(yield pipeline.Yield[string]) {
		scanner := bufio.NewScanner(r)
		scanner.Split(bufio.ScanLines)
		recNum := 0
		for scanner.Scan() {
			if !yield(pipeline.NewItem(scanner.Text(), recNum, source), nil) {
				return
			}
			recNum++
		}
		if err := scanner.Err(); err != nil {
			yield(pipeline.Item[string]{}, fmt.Errorf("reading %s: %w", source, err))
		}
	}
}

// Follow yields the lines of fileName and then waits for lines appended to it
// until ctx is cancelled or the file is removed or renamed.
func Follow(ctx context.Context, fileName string) pipeline.Seq[string] {
	return func(yield pipeline.Yield[string]) {
		var none pipeline.Item[string]

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			yield(none, err)
			return
		}
		defer watcher.Close()

		if err := watcher.Add(fileName); err != nil {
			yield(none, fmt.Errorf("watching %s: %w", fileName, err))
			return
		}

		f, err := os.Open(fileName)
		if err != nil {
			yield(none, err)
			return
		}
		defer f.Close()

		reader := bufio.NewReader(f)
		var pending strings.Builder
		recNum := 0
		for {
			chunk, err := reader.ReadString('\n')
			pending.WriteString(chunk)
			if err == nil {
				line := strings.TrimRight(pending.String(), "\r\n")
				pending.Reset()
				if recNum == 0 {
					line = strings.TrimPrefix(line, utf8BOM)
				}
				if !yield(pipeline.NewItem(line, recNum, fileName), nil) {
					return
				}
				recNum++
				continue
			}
			if !errors.Is(err, io.EOF) {
				yield(none, err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if !yield(none, err) {
					return
				}
			}
		}
	}
}

func WriteLines(w io.Writer, showErrors bool, lines pipeline.Seq[string]) error {
	for line, err := range lines {
		if err != nil {
			if showErrors {
				if _, err := fmt.Fprintln(w, err); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintln(w, line.Value); err != nil {
			return err
		}
	}

	return nil
}
