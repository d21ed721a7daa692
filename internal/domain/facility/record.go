package facility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is a flat, normalized facility: fixed columns plus flattened tags.
// Keys keep a stable order so the JSON output is deterministic.
type Record struct {
	keys   []string
	values map[string]any
}

// Normalize flattens a raw row into a Record.
// Fixed columns always win over tag keys of the same name; surviving tag keys
// follow the fixed columns in lexical order.
func Normalize(row Row) Record {
	rec := Record{
		keys:   make([]string, 0, len(row.Fields)+len(row.Tags)),
		values: make(map[string]any, len(row.Fields)+len(row.Tags)),
	}
	for _, f := range row.Fields {
		rec.set(f.Name, f.Value)
	}

	if len(row.Tags) == 0 {
		return rec
	}
	tagKeys := make([]string, 0, len(row.Tags))
	for k := range row.Tags {
		if _, fixed := rec.values[k]; fixed {
			continue
		}
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		rec.set(k, row.Tags[k])
	}
	return rec
}

// NewRecord builds a Record from ordered key/value pairs (later duplicates are ignored).
func NewRecord(pairs ...Field) Record {
	return Normalize(Row{Fields: pairs})
}

func (r *Record) set(key string, value any) {
	if _, ok := r.values[key]; ok {
		return
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
}

// OsmID returns the entity identifier (0 when missing or non-numeric).
func (r *Record) OsmID() int64 {
	switch v := r.values[ColumnOsmID].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record keys in output order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON encodes the record as a flat object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
