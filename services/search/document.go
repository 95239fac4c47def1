package search

import (
	"encoding/json"
	"strconv"
)

// RawDocument is a document as returned by the store. Its shape depends on the collection.
type RawDocument map[string]any

type fieldKind int

const (
	fieldAbsent fieldKind = iota
	fieldString
	fieldMedia
	fieldObject
	fieldList
	fieldOther
)

// field is a raw document value classified into one of a closed set of variants.
type field struct {
	kind fieldKind
	str  string
	obj  map[string]any
	list []any
	raw  any
}

func (d RawDocument) field(name string) field {
	value, ok := d[name]
	if !ok || value == nil {
		return field{kind: fieldAbsent}
	}

	switch v := value.(type) {
	case string:
		return field{kind: fieldString, str: v, raw: v}
	case map[string]any:
		// Media references are objects carrying a string url.
		if url, ok := v["url"].(string); ok {
			return field{kind: fieldMedia, str: url, obj: v, raw: v}
		}
		return field{kind: fieldObject, obj: v, raw: v}
	case []any:
		return field{kind: fieldList, list: v, raw: v}
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return field{kind: fieldList, list: list, raw: v}
	default:
		return field{kind: fieldOther, raw: v}
	}
}

// ID returns the document id as a string. Numeric ids are formatted without an exponent.
func (d RawDocument) ID() string {
	switch id := d["id"].(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	default:
		return ""
	}
}

// firstString returns the first non-empty string among the named fields.
func (d RawDocument) firstString(names ...string) string {
	for _, name := range names {
		if f := d.field(name); f.kind == fieldString && f.str != "" {
			return f.str
		}
	}
	return ""
}

// mediaURL returns the url of the first named field that is a usable media reference.
func (d RawDocument) mediaURL(names ...string) string {
	for _, name := range names {
		if f := d.field(name); f.kind == fieldMedia && f.str != "" {
			return f.str
		}
	}
	return ""
}

// reduced returns the value stored in result metadata for f.
// Objects collapse to their name or title when one is set.
func (f field) reduced() any {
	switch f.kind {
	case fieldObject, fieldMedia:
		for _, key := range []string{"name", "title"} {
			if s, ok := f.obj[key].(string); ok && s != "" {
				return s
			}
		}
		return f.raw
	default:
		return f.raw
	}
}
