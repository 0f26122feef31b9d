package steps

import (
	"encoding/json"
	"strings"

	"github.com/vladimir-rom/ringex/pipeline"
)

type JSON map[string]any

// Record is an input line together with its fields when the line carries a
// JSON object, possibly after a plain text prefix.
type Record struct {
	Line     string
	Fields   JSON
	Modified bool
}

// Text returns the original line, or the re-encoded fields once a step has
// changed them.
func (r Record) Text() string {
	if r.Modified && r.Fields != nil {
		if b, err := json.Marshal(r.Fields); err == nil {
			return string(b)
		}
	}
	return r.Line
}

func (r Record) JSONText() string {
	if r.Fields == nil {
		return r.Line
	}
	b, err := json.Marshal(r.Fields)
	if err != nil {
		return r.Line
	}
	return string(b)
}

func (r Record) WithFields(fields JSON) Record {
	return Record{Line: r.Line, Fields: fields, Modified: true}
}

func ToRecords(opts pipeline.Options) pipeline.Step[string, Record] {
	return pipeline.NewStep(opts, func(line pipeline.Item[string], yield pipeline.Yield[Record]) bool {
		return yield(pipeline.Convert(line, ParseRecord(line.Value)), nil)
	})
}

func ParseRecord(line string) Record {
	rec := Record{Line: line}
	ind := strings.Index(line, "{")
	if ind < 0 {
		return rec
	}

	var fields JSON
	if json.Unmarshal([]byte(line[ind:]), &fields) == nil {
		rec.Fields = fields
	}
	return rec
}
