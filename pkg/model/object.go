package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/snapkv/snapkv/pkg/errclass"
)

// Object is an ordered-by-insertion mapping of string to *Value. Keys and
// values live in parallel slices so iteration and serialization follow
// insertion order; equality ignores order (key set plus per-key values).
type Object struct {
	keys   []string
	values []*Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// Set inserts the entry, or replaces the value in place if the key already
// exists (the key keeps its original position). Nil values store null.
func (o *Object) Set(key string, v *Value) {
	if v == nil {
		v = Null()
	}
	for i, k := range o.keys {
		if k == key {
			o.values[i] = v
			return
		}
	}
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

// Get returns the value for key.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	for i, k := range o.keys {
		if k == key {
			return o.values[i], true
		}
	}
	return nil, false
}

// Delete removes the entry for key, reporting whether it existed.
func (o *Object) Delete(key string) bool {
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			o.values = append(o.values[:i], o.values[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Equal compares key sets and per-key values; insertion order does not
// participate.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o == nil {
		return true
	}
	for i, k := range o.keys {
		ov, ok := other.Get(k)
		if !ok || !o.values[i].Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving the key order it appears
// in. Duplicate keys keep the last value.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errclass.ErrIntegrity.WithMessagef("object: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errclass.ErrTypeMismatch.WithMessagef("object: got %v", tok)
	}

	o.keys = o.keys[:0]
	o.values = o.values[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errclass.ErrIntegrity.WithMessagef("object key: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errclass.ErrIntegrity.WithMessagef("object key: got %v", keyTok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			if isClassed(err) {
				return fmt.Errorf("entry %q: %w", key, err)
			}
			return errclass.ErrIntegrity.WithMessagef("entry %q: %v", key, err)
		}
		o.Set(key, &v)
	}
	if _, err := dec.Token(); err != nil {
		return errclass.ErrIntegrity.WithMessagef("object: %v", err)
	}
	return nil
}
