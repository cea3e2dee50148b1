// Package payload wraps a raw webhook body in a lookup structure where every
// path is optional: absent keys, nulls, and type mismatches all read as empty.
package payload

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Document is a parsed, schema-less webhook payload.
type Document struct {
	root map[string]any
}

// Parse decodes body leniently. Bodies that are empty, malformed, or not a
// JSON object produce an empty document.
func Parse(body []byte) Document {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil || root == nil {
		return Document{root: map[string]any{}}
	}
	return Document{root: root}
}

// FromMap wraps an already decoded object.
func FromMap(m map[string]any) Document {
	if m == nil {
		m = map[string]any{}
	}
	return Document{root: m}
}

// Raw returns the decoded top-level object.
func (d Document) Raw() map[string]any {
	if d.root == nil {
		return map[string]any{}
	}
	return d.root
}

// Lookup evaluates a JSONPath expression such as "$.pull_request.head.ref".
// The second result is false when any segment is missing or null.
func (d Document) Lookup(path string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	v, err := jsonpath.Get(path, d.Raw())
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value at path rendered as a string. Strings are
// returned verbatim, numbers as their JSON text; anything else is "".
func (d Document) String(path string) string {
	v, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// Bool reports whether the value at path is the JSON literal true.
func (d Document) Bool(path string) bool {
	v, ok := d.Lookup(path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// First returns the first non-blank string among paths, or "".
func (d Document) First(paths ...string) string {
	for _, p := range paths {
		if s := d.String(p); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
