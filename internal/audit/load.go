package audit

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lox/handcheck/internal/hand"
	"github.com/lox/handcheck/internal/issue"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBaseURL = "https://handcheck.dev/schemas/"

type schemaSet struct {
	input *jsonschema.Schema
	hand  *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	compiled := make(map[string]*jsonschema.Schema, 2)
	for _, name := range []string{"input.json", "hand.json"} {
		data, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		compiled[name] = schema
	}
	return &schemaSet{input: compiled["input.json"], hand: compiled["hand.json"]}, nil
})

// Record is one input hand: its raw JSON, the decoded hand when decoding worked, and
// the problems found while reading it.
type Record struct {
	Index    int
	Raw      json.RawMessage
	Hand     hand.Hand
	Decoded  bool
	Problems issue.List
}

// Load reads a hand collection: either a JSON array of hands or an object whose
// "hands" field holds one. Malformed JSON or any other top-level shape is an error;
// problems with individual hands are recorded on their Record.
func Load(r io.Reader) ([]Record, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if err := schemas.input.Validate(doc); err != nil {
		return nil, fmt.Errorf("input must be a list of hands or an object with a hands list: %w", err)
	}

	var raws []json.RawMessage
	if _, ok := doc.([]any); ok {
		err = json.Unmarshal(data, &raws)
	} else {
		var envelope struct {
			Hands []json.RawMessage `json:"hands"`
		}
		err = json.Unmarshal(data, &envelope)
		raws = envelope.Hands
	}
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = readRecord(schemas, i, raw)
	}
	return records, nil
}

func readRecord(schemas *schemaSet, index int, raw json.RawMessage) Record {
	rec := Record{Index: index, Raw: raw}
	rec.Problems = append(rec.Problems, schemaProblems(schemas.hand, raw)...)

	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		rec.Problems = append(rec.Problems, issue.Structuralf("decode", "hand is not a JSON object"))
		return rec
	}
	if err := json.Unmarshal(raw, &rec.Hand); err != nil {
		rec.Problems = append(rec.Problems, issue.Structuralf("decode", "hand does not decode: %v", err))
		rec.Hand = hand.Hand{}
		return rec
	}
	rec.Decoded = true
	return rec
}

// schemaProblems checks one hand's JSON against the hand schema, one problem per failing
// leaf.
func schemaProblems(schema *jsonschema.Schema, raw []byte) issue.List {
	doc, err := decodeDocument(raw)
	if err != nil {
		return issue.List{issue.Structuralf("decode", "hand is not valid JSON: %v", err)}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return issue.List{issue.Structuralf("schema", "%v", err)}
	}

	var leaves []*jsonschema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].InstanceLocation < leaves[j].InstanceLocation })

	out := make(issue.List, 0, len(leaves))
	for _, l := range leaves {
		loc := l.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out = append(out, issue.Structuralf("schema", "%s: %s", loc, strings.TrimSpace(l.Message)))
	}
	return out
}

func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level value")
	}
	return doc, nil
}
