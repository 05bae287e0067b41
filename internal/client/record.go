// ABOUTME: Alias-tolerant view over a JSON document returned by the API
// ABOUTME: Field lookups try each alias in order and take the first non-empty value

package client

import (
	"github.com/tidwall/gjson"
)

// Record wraps one JSON value. Upstream records use inconsistent field names
// across endpoints, so accessors accept a list of aliases.
type Record struct {
	res gjson.Result
}

// ParseRecord wraps raw JSON. Invalid input yields an empty record.
func ParseRecord(raw string) Record {
	return Record{res: gjson.Parse(raw)}
}

// Exists reports whether the record holds any value.
func (r Record) Exists() bool {
	return r.res.Exists() && r.res.Type != gjson.Null
}

// Raw returns the underlying JSON text.
func (r Record) Raw() string {
	return r.res.Raw
}

// Get returns the nested record at key.
func (r Record) Get(key string) Record {
	return Record{res: r.res.Get(gjson.Escape(key))}
}

// First returns the first alias holding a non-empty value, or an empty record.
func (r Record) First(keys ...string) Record {
	for _, k := range keys {
		v := r.res.Get(gjson.Escape(k))
		if truthy(v) {
			return Record{res: v}
		}
	}
	return Record{}
}

// Str returns the first non-empty alias as a string.
func (r Record) Str(keys ...string) string {
	v := r.First(keys...)
	if !v.Exists() {
		return ""
	}
	return v.res.String()
}

// StrOr is Str with a fallback for when no alias is set.
func (r Record) StrOr(fallback string, keys ...string) string {
	if s := r.Str(keys...); s != "" {
		return s
	}
	return fallback
}

// Bool reports whether any alias is set to a truthy value.
func (r Record) Bool(keys ...string) bool {
	return r.First(keys...).Exists()
}

// Float returns the first non-empty alias as a number. Numeric strings are parsed;
// anything else is 0.
func (r Record) Float(keys ...string) float64 {
	v := r.First(keys...)
	if !v.Exists() {
		return 0
	}
	return v.res.Float()
}

// Int is Float truncated to an int.
func (r Record) Int(keys ...string) int {
	return int(r.Float(keys...))
}

// ID returns the record's id, which may be a string or a number upstream.
func (r Record) ID() string {
	return r.Str("id")
}

// Unwrap returns the record nested under the first present key, or the record
// itself when none is present. Detail endpoints answer both {"item": {...}} and {...}.
func (r Record) Unwrap(keys ...string) Record {
	for _, k := range keys {
		v := r.res.Get(gjson.Escape(k))
		if v.IsObject() {
			return Record{res: v}
		}
	}
	return r
}

// List returns the array stored under field. A bare top-level array is accepted
// as well, because some endpoints return the list directly.
func (r Record) List(field string) []Record {
	src := r.res
	if !src.IsArray() {
		src = src.Get(gjson.Escape(field))
	}
	if !src.IsArray() {
		return nil
	}

	items := src.Array()
	out := make([]Record, 0, len(items))
	for _, it := range items {
		out = append(out, Record{res: it})
	}
	return out
}

// truthy mirrors the loose "value || fallback" semantics the API's own UI relies on:
// missing, null, false, "", and 0 are all treated as unset.
func truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}
