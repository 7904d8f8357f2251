package model

import (
	"encoding/json"

	"github.com/snapkv/snapkv/pkg/errclass"
)

// EncodeMapping serializes a key→value mapping as an indented JSON object,
// one tagged value per key. encoding/json emits map keys sorted, so equal
// mappings always produce identical bytes.
func EncodeMapping(m map[string]*Value) ([]byte, error) {
	if m == nil {
		m = map[string]*Value{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeMapping parses a serialized mapping. Malformed JSON is an integrity
// error; a structurally valid document whose entries violate their declared
// tags surfaces the entry's own classification (usually type mismatch).
func DecodeMapping(data []byte) (map[string]*Value, error) {
	var m map[string]*Value
	if err := json.Unmarshal(data, &m); err != nil {
		if isClassed(err) {
			return nil, err
		}
		return nil, errclass.ErrIntegrity.WithMessagef("mapping: %v", err)
	}
	if m == nil {
		return nil, errclass.ErrIntegrity.WithMessage("mapping: not a JSON object")
	}
	// A bare JSON null bypasses Value's decoder and leaves a nil entry.
	for k, v := range m {
		if v == nil {
			return nil, errclass.ErrTypeMismatch.WithMessagef("mapping: key %q: missing type tag", k)
		}
	}
	return m, nil
}
