package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered set of named values. Key order is the order in which
// keys were first set, which for decoded records is the wire order.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns an empty record with room for n keys.
func NewRecord(n int) Record {
	return Record{
		keys: make([]string, 0, n),
		vals: make(map[string]Value, n),
	}
}

// Set stores v under key. A repeated key keeps its original position.
func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the record's keys in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object, preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
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
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
// encoding/json maps do not keep order, so the object is walked token by token.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	rec := NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}

		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		rec.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = rec
	return nil
}
