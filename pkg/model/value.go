package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/snapkv/snapkv/pkg/errclass"
)

// Value is the tagged union over every storable datum. The tag and payload
// are set together at construction and never change; composites hold shared
// *Value handles, so the same nested Value may be referenced by more than
// one container.
//
// The zero Value is null. A nil *Value behaves as null everywhere.
type Value struct {
	kind Kind
	i    int64   // i32, i64
	u    uint64  // u32, u64
	f    float64 // f64
	b    bool    // bool
	s    string  // str
	arr  []*Value
	obj  *Object
}

// Null returns the null value.
func Null() *Value { return &Value{kind: KindNull} }

// I32 returns a signed 32-bit integer value.
func I32(v int32) *Value { return &Value{kind: KindI32, i: int64(v)} }

// U32 returns an unsigned 32-bit integer value.
func U32(v uint32) *Value { return &Value{kind: KindU32, u: uint64(v)} }

// I64 returns a signed 64-bit integer value.
func I64(v int64) *Value { return &Value{kind: KindI64, i: v} }

// U64 returns an unsigned 64-bit integer value.
func U64(v uint64) *Value { return &Value{kind: KindU64, u: v} }

// F64 returns a 64-bit float value.
func F64(v float64) *Value { return &Value{kind: KindF64, f: v} }

// Bool returns a boolean value.
func Bool(v bool) *Value { return &Value{kind: KindBool, b: v} }

// String returns a UTF-8 string value.
func String(v string) *Value { return &Value{kind: KindString, s: v} }

// Array returns an array value holding shared handles to the given
// elements. Nil elements are stored as null.
func Array(elems ...*Value) *Value {
	arr := make([]*Value, len(elems))
	for i, e := range elems {
		if e == nil {
			e = Null()
		}
		arr[i] = e
	}
	return &Value{kind: KindArray, arr: arr}
}

// ObjectValue returns an object value backed by o. The object is shared,
// not copied; a nil o yields an empty object.
func ObjectValue(o *Object) *Value {
	if o == nil {
		o = NewObject()
	}
	return &Value{kind: KindObject, obj: o}
}

// Kind returns the value's type tag.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is null.
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// AsI32 returns the payload if the value is an i32.
func (v *Value) AsI32() (int32, bool) {
	if v.Kind() != KindI32 {
		return 0, false
	}
	return int32(v.i), true
}

// AsU32 returns the payload if the value is a u32.
func (v *Value) AsU32() (uint32, bool) {
	if v.Kind() != KindU32 {
		return 0, false
	}
	return uint32(v.u), true
}

// AsI64 returns the payload if the value is an i64.
func (v *Value) AsI64() (int64, bool) {
	if v.Kind() != KindI64 {
		return 0, false
	}
	return v.i, true
}

// AsU64 returns the payload if the value is a u64.
func (v *Value) AsU64() (uint64, bool) {
	if v.Kind() != KindU64 {
		return 0, false
	}
	return v.u, true
}

// AsF64 returns the payload if the value is an f64.
func (v *Value) AsF64() (float64, bool) {
	if v.Kind() != KindF64 {
		return 0, false
	}
	return v.f, true
}

// AsBool returns the payload if the value is a bool.
func (v *Value) AsBool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// AsString returns the payload if the value is a string.
func (v *Value) AsString() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.s, true
}

// AsArray returns the element handles if the value is an array. The slice
// is the array's backing storage and is shared with every holder.
func (v *Value) AsArray() ([]*Value, bool) {
	if v.Kind() != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the shared object if the value is an object.
func (v *Value) AsObject() (*Object, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Equal reports structural equality: same tag, same payload. Arrays compare
// element-wise in order; objects compare by key set and per-key values.
// There is no numeric coercion between variants.
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindI32, KindI64:
		return v.i == o.i
	case KindU32, KindU64:
		return v.u == o.u
	case KindF64:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	}
	return false
}

// String renders a human-readable form: bare payloads for primitives,
// bracketed forms for composites.
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindI32, KindI64:
		return strconv.FormatInt(v.i, 10)
	case KindU32, KindU64:
		return strconv.FormatUint(v.u, 10)
	case KindF64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, 0, v.obj.Len())
		for _, k := range v.obj.Keys() {
			e, _ := v.obj.Get(k)
			parts = append(parts, k+": "+e.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "unknown"
}

// taggedValue is the wire shape of a single value: {"t": "<tag>", "v": ...}.
type taggedValue struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

// MarshalJSON encodes the value in its tagged wire form.
func (v *Value) MarshalJSON() ([]byte, error) {
	out := taggedValue{T: v.Kind().String()}
	switch v.Kind() {
	case KindNull:
		out.V = json.RawMessage("null")
	case KindI32, KindI64:
		out.V = json.RawMessage(strconv.FormatInt(v.i, 10))
	case KindU32, KindU64:
		out.V = json.RawMessage(strconv.FormatUint(v.u, 10))
	case KindF64:
		payload, err := json.Marshal(v.f)
		if err != nil {
			return nil, err
		}
		out.V = payload
	case KindBool:
		out.V = json.RawMessage(strconv.FormatBool(v.b))
	case KindString:
		payload, err := json.Marshal(v.s)
		if err != nil {
			return nil, err
		}
		out.V = payload
	case KindArray:
		payload, err := json.Marshal(v.arr)
		if err != nil {
			return nil, err
		}
		out.V = payload
	case KindObject:
		payload, err := json.Marshal(v.obj)
		if err != nil {
			return nil, err
		}
		out.V = payload
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged wire form. A tag whose payload does not
// parse as the declared type (wrong JSON type, integer out of range, float
// literal for an integer tag) is a type-mismatch error.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		T *string         `json:"t"`
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errclass.ErrIntegrity.WithMessagef("tagged value: %v", err)
	}
	if raw.T == nil {
		return errclass.ErrTypeMismatch.WithMessage("missing type tag")
	}
	kind, ok := KindFromTag(*raw.T)
	if !ok {
		return errclass.ErrTypeMismatch.WithMessagef("unknown type tag %q", *raw.T)
	}

	switch kind {
	case KindNull:
		if len(raw.V) != 0 && !bytes.Equal(raw.V, []byte("null")) {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindNull}
	case KindI32:
		n, ok := rawNumber(raw.V)
		if !ok {
			return tagMismatch(kind, raw.V)
		}
		i, err := strconv.ParseInt(n, 10, 32)
		if err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindI32, i: i}
	case KindU32:
		n, ok := rawNumber(raw.V)
		if !ok {
			return tagMismatch(kind, raw.V)
		}
		u, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindU32, u: u}
	case KindI64:
		n, ok := rawNumber(raw.V)
		if !ok {
			return tagMismatch(kind, raw.V)
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindI64, i: i}
	case KindU64:
		n, ok := rawNumber(raw.V)
		if !ok {
			return tagMismatch(kind, raw.V)
		}
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindU64, u: u}
	case KindF64:
		n, ok := rawNumber(raw.V)
		if !ok {
			return tagMismatch(kind, raw.V)
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindF64, f: f}
	case KindBool:
		var b bool
		if err := strictUnmarshal(raw.V, &b); err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindBool, b: b}
	case KindString:
		var s string
		if err := strictUnmarshal(raw.V, &s); err != nil {
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindString, s: s}
	case KindArray:
		if len(raw.V) == 0 {
			return tagMismatch(kind, raw.V)
		}
		var arr []*Value
		if err := json.Unmarshal(raw.V, &arr); err != nil {
			if isClassed(err) {
				return err
			}
			return tagMismatch(kind, raw.V)
		}
		for i, e := range arr {
			if e == nil {
				arr[i] = Null()
			}
		}
		if arr == nil {
			arr = []*Value{}
		}
		*v = Value{kind: KindArray, arr: arr}
	case KindObject:
		if len(raw.V) == 0 {
			return tagMismatch(kind, raw.V)
		}
		obj := NewObject()
		if err := json.Unmarshal(raw.V, obj); err != nil {
			if isClassed(err) {
				return err
			}
			return tagMismatch(kind, raw.V)
		}
		*v = Value{kind: KindObject, obj: obj}
	}
	return nil
}

func tagMismatch(kind Kind, payload json.RawMessage) error {
	if len(payload) == 0 {
		return errclass.ErrTypeMismatch.WithMessagef("tag %q without value", kind)
	}
	return errclass.ErrTypeMismatch.WithMessagef("tag %q with value %s", kind, compactPayload(payload))
}

// isClassed reports whether err already carries one of the error classes,
// so nested decode failures keep their original classification.
func isClassed(err error) bool {
	var ke *errclass.KVSError
	return errors.As(err, &ke)
}

// rawNumber returns the literal if the payload is a bare JSON number token.
func rawNumber(payload json.RawMessage) (string, bool) {
	s := strings.TrimSpace(string(payload))
	if s == "" {
		return "", false
	}
	c := s[0]
	if c != '-' && (c < '0' || c > '9') {
		return "", false
	}
	// Validate it is a single well-formed JSON number.
	var n json.Number
	if err := strictUnmarshal([]byte(s), &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// strictUnmarshal decodes a single JSON value and rejects trailing content.
func strictUnmarshal(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errclass.ErrTypeMismatch.WithMessage("trailing content after value")
	}
	return nil
}

// compactPayload truncates long payloads for error messages.
func compactPayload(payload json.RawMessage) string {
	s := string(payload)
	if len(s) > 64 {
		return s[:61] + "..."
	}
	return s
}
