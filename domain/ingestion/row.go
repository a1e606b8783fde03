package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"goeda/domain/core"
)

// Row is an ordered mapping from column label to Value.
// The zero value is an empty row ready to use.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow creates an empty row with room for n columns
func NewRow(n int) Row {
	return Row{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// RowFromMap builds a row from a dynamically typed map using the given key
// order. Keys of m missing from order are appended in sorted order.
func RowFromMap(order []string, m map[string]interface{}) Row {
	row := NewRow(len(m))
	for _, k := range order {
		if raw, ok := m[k]; ok {
			row.Set(k, ValueOf(raw))
		}
	}
	var extra []string
	for k := range m {
		if _, ok := row.values[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		row.Set(k, ValueOf(m[k]))
	}
	return row
}

// Set stores v under key, appending the key on first use
func (r *Row) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key and whether the key is present
func (r Row) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or a missing value when absent
func (r Row) Value(key string) Value {
	if v, ok := r.values[key]; ok {
		return v
	}
	return NewMissingValue()
}

// Keys returns a copy of the keys in insertion order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys
func (r Row) Len() int {
	return len(r.keys)
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	c := NewRow(len(r.keys))
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// Hash returns a content digest that ignores key order
func (r Row) Hash() core.RowHash {
	fields := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		fields[k] = r.values[k].Canonical()
	}
	return core.ComputeRowHash(fields)
}

// Equal reports whether both rows hold the same keys and values, in any order
func (r Row) Equal(other Row) bool {
	if len(r.keys) != len(other.keys) {
		return false
	}
	for _, k := range r.keys {
		ov, ok := other.values[k]
		if !ok || ov.Canonical() != r.values[k].Canonical() {
			return false
		}
	}
	return true
}

// MarshalJSON writes the row as a JSON object in key order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = NewRow(8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("row value for %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("row value for %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
