package selection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// Parse validates data and returns the definition it describes, with absent
// fields taken from the defaults. Any violation rejects the whole document
// with an *Error.
func Parse(data []byte) (*Definition, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, &Error{Kind: MalformedJSON, Details: []string{"document must be a JSON object"}}
	}

	rawVersion, ok := root["version"]
	if !ok {
		return nil, newError(MissingOrInvalidVersion, "version", "missing required field")
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}

	partial, err := toPartial(root, rawVersion)
	if err != nil {
		return nil, err
	}
	def := MergeWithDefaults(*partial)
	return &def, nil
}

// decode standardizes JSONC and decodes it into generic values, keeping
// numbers as json.Number so integer checks stay exact.
func decode(data []byte) (any, error) {
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, &Error{Kind: MalformedJSON, Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Kind: MalformedJSON, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &Error{Kind: MalformedJSON, Details: []string{"unexpected data after top-level value"}}
	}
	return doc, nil
}

// toPartial converts the schema-checked document into typed values. The
// assertions repeat what the schema guarantees; nothing is assumed.
func toPartial(root map[string]any, rawVersion any) (*Partial, error) {
	version, err := toVersion(rawVersion)
	if err != nil {
		return nil, err
	}
	p := &Partial{Version: &version}

	if raw, ok := root["source"]; ok {
		src, err := toSource(raw)
		if err != nil {
			return nil, err
		}
		p.Source = src
	}
	if raw, ok := root["view"]; ok {
		view, err := toView(raw)
		if err != nil {
			return nil, err
		}
		p.View = view
	}
	return p, nil
}

func toVersion(raw any) (int, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, newError(MissingOrInvalidVersion, "version", "must be a positive integer")
	}
	if i, err := num.Int64(); err == nil {
		if i < 1 || i > math.MaxInt {
			return 0, newError(MissingOrInvalidVersion, "version", "must be a positive integer, got %s", num)
		}
		return int(i), nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < 1 || f >= math.MaxInt {
		return 0, newError(MissingOrInvalidVersion, "version", "must be a positive integer, got %s", num)
	}
	return int(f), nil
}

func toSource(raw any) (*PartialSource, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, newError(InvalidSource, "source", "must be an object")
	}
	src := &PartialSource{}
	if v, ok := obj["folder"]; ok {
		folder, ok := v.(string)
		if !ok {
			return nil, newError(InvalidSource, "source.folder", "must be a string")
		}
		src.Folder = &folder
	}
	if v, ok := obj["filters"]; ok {
		items, ok := v.([]any)
		if !ok {
			return nil, newError(InvalidSource, "source.filters", "must be an array")
		}
		src.Filters = make([]Filter, 0, len(items))
		for i, item := range items {
			f, err := toFilter(item, fmt.Sprintf("source.filters[%d]", i))
			if err != nil {
				return nil, err
			}
			src.Filters = append(src.Filters, f)
		}
	}
	return src, nil
}

func toFilter(raw any, path string) (Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Filter{}, newError(InvalidSource, path, "must be an object")
	}
	property, ok := obj["property"].(string)
	if !ok || property == "" {
		return Filter{}, newError(InvalidSource, path+".property", "must be a non-empty string")
	}
	op, ok := obj["operator"].(string)
	if !ok || !Operator(op).Valid() {
		return Filter{}, newError(InvalidSource, path+".operator", "must be one of =, !=, <, <=, >, >=, contains")
	}
	value, ok := obj["value"].(string)
	if !ok {
		return Filter{}, newError(InvalidSource, path+".value", "must be a string")
	}
	return Filter{Property: property, Operator: Operator(op), Value: value}, nil
}

func toView(raw any) (*PartialView, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, newError(InvalidView, "view", "must be an object")
	}
	view := &PartialView{}
	if v, ok := obj["showCompleted"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, newError(InvalidView, "view.showCompleted", "must be a boolean")
		}
		view.ShowCompleted = &b
	}
	if v, ok := obj["sortBy"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, newError(InvalidView, "view.sortBy", "must be a string")
		}
		view.SortBy = &s
	}
	if v, ok := obj["sortDirection"]; ok {
		s, ok := v.(string)
		if !ok || !Direction(s).Valid() {
			return nil, newError(InvalidView, "view.sortDirection", "must be \"asc\" or \"desc\"")
		}
		d := Direction(s)
		view.SortDirection = &d
	}
	return view, nil
}

// Serialize returns the canonical encoding of d.
func Serialize(d Definition) ([]byte, error) {
	if d.Source.Filters == nil {
		d.Source.Filters = []Filter{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("marshal selection: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads and parses the selection file at path.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selection file: %w", err)
	}
	return Parse(data)
}

// Save writes the canonical encoding of d to path, replacing it atomically.
func Save(path string, d Definition) error {
	data, err := Serialize(d)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write selection file: %w", err)
	}
	return nil
}
