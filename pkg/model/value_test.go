package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ConstructorsSetKindAndPayload(t *testing.T) {
	i, ok := model.I32(-42).AsI32()
	require.True(t, ok)
	assert.Equal(t, int32(-42), i)

	u, ok := model.U32(42).AsU32()
	require.True(t, ok)
	assert.Equal(t, uint32(42), u)

	i64v, ok := model.I64(-1 << 40).AsI64()
	require.True(t, ok)
	assert.Equal(t, int64(-1<<40), i64v)

	u64v, ok := model.U64(1<<64 - 1).AsU64()
	require.True(t, ok)
	assert.Equal(t, uint64(1<<64-1), u64v)

	f, ok := model.F64(3.25).AsF64()
	require.True(t, ok)
	assert.Equal(t, 3.25, f)

	b, ok := model.Bool(true).AsBool()
	require.True(t, ok)
	assert.True(t, b)

	s, ok := model.String("dark").AsString()
	require.True(t, ok)
	assert.Equal(t, "dark", s)

	assert.True(t, model.Null().IsNull())
	assert.Equal(t, model.KindNull, model.Null().Kind())
}

func TestValue_NoCoercionBetweenVariants(t *testing.T) {
	// Same numeric payload, different tags: not equal, wrong accessor fails.
	assert.False(t, model.I32(1).Equal(model.I64(1)))
	assert.False(t, model.I32(1).Equal(model.U32(1)))
	assert.False(t, model.I64(1).Equal(model.F64(1)))

	_, ok := model.I32(1).AsI64()
	assert.False(t, ok)
	_, ok = model.F64(1).AsI32()
	assert.False(t, ok)
}

func TestValue_ZeroAndNilBehaveAsNull(t *testing.T) {
	var zero model.Value
	assert.True(t, zero.IsNull())

	var nilValue *model.Value
	assert.Equal(t, model.KindNull, nilValue.Kind())
	assert.True(t, nilValue.Equal(model.Null()))
}

func TestValue_ArrayEqualityIsOrderSensitive(t *testing.T) {
	a := model.Array(model.I32(1), model.I32(2))
	b := model.Array(model.I32(1), model.I32(2))
	c := model.Array(model.I32(2), model.I32(1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(model.Array(model.I32(1))))
}

func TestValue_ObjectEqualityIgnoresInsertionOrder(t *testing.T) {
	left := model.NewObject()
	left.Set("theme", model.String("dark"))
	left.Set("timeout", model.I32(30))

	right := model.NewObject()
	right.Set("timeout", model.I32(30))
	right.Set("theme", model.String("dark"))

	assert.True(t, model.ObjectValue(left).Equal(model.ObjectValue(right)))

	right.Set("timeout", model.I32(31))
	assert.False(t, model.ObjectValue(left).Equal(model.ObjectValue(right)))
}

func TestValue_SharedHandles(t *testing.T) {
	// The same nested Value may be referenced by more than one container.
	shared := model.String("shared")
	a := model.Array(shared)
	obj := model.NewObject()
	obj.Set("ref", shared)

	elems, ok := a.AsArray()
	require.True(t, ok)
	got, ok := obj.Get("ref")
	require.True(t, ok)
	assert.Same(t, elems[0], got)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "null", model.Null().String())
	assert.Equal(t, "-7", model.I32(-7).String())
	assert.Equal(t, "true", model.Bool(true).String())
	assert.Equal(t, "dark", model.String("dark").String())
	assert.Equal(t, "1.5", model.F64(1.5).String())
	assert.Equal(t, "[1, 2]", model.Array(model.I32(1), model.I32(2)).String())

	obj := model.NewObject()
	obj.Set("a", model.I32(1))
	assert.Equal(t, "{a: 1}", model.ObjectValue(obj).String())
}

func TestValue_MarshalTaggedForm(t *testing.T) {
	data, err := json.Marshal(model.String("dark"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"str","v":"dark"}`, string(data))

	data, err = json.Marshal(model.I32(30))
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"i32","v":30}`, string(data))

	data, err = json.Marshal(model.Null())
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"null","v":null}`, string(data))
}

func TestValue_RoundTripNested(t *testing.T) {
	inner := model.NewObject()
	inner.Set("z", model.U64(1<<64-1))
	inner.Set("a", model.Bool(false))

	v := model.Array(
		model.I32(-1),
		model.F64(2.5),
		model.Null(),
		model.ObjectValue(inner),
		model.Array(model.String("nested")),
	)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var back model.Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, v.Equal(&back), "round-trip must preserve tags and payloads")

	// Insertion order of object keys survives the trip.
	elems, ok := back.AsArray()
	require.True(t, ok)
	backObj, ok := elems[3].AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, backObj.Keys())
}

func TestValue_UnmarshalRejectsBadTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *errclass.KVSError
	}{
		{"unknown tag", `{"t":"i33","v":1}`, errclass.ErrTypeMismatch},
		{"missing tag", `{"v":1}`, errclass.ErrTypeMismatch},
		{"string for i32", `{"t":"i32","v":"1"}`, errclass.ErrTypeMismatch},
		{"float for i32", `{"t":"i32","v":1.5}`, errclass.ErrTypeMismatch},
		{"i32 overflow", `{"t":"i32","v":2147483648}`, errclass.ErrTypeMismatch},
		{"negative u32", `{"t":"u32","v":-1}`, errclass.ErrTypeMismatch},
		{"u64 overflow", `{"t":"u64","v":18446744073709551616}`, errclass.ErrTypeMismatch},
		{"number for bool", `{"t":"bool","v":1}`, errclass.ErrTypeMismatch},
		{"missing value", `{"t":"str"}`, errclass.ErrTypeMismatch},
		{"object for arr", `{"t":"arr","v":{}}`, errclass.ErrTypeMismatch},
		{"payload for null", `{"t":"null","v":5}`, errclass.ErrTypeMismatch},
		{"not an object", `42`, errclass.ErrIntegrity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v model.Value
			err := json.Unmarshal([]byte(tc.in), &v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestValue_UnmarshalBoundaryNumbers(t *testing.T) {
	var v model.Value
	require.NoError(t, json.Unmarshal([]byte(`{"t":"i32","v":-2147483648}`), &v))
	i, ok := v.AsI32()
	require.True(t, ok)
	assert.Equal(t, int32(-2147483648), i)

	require.NoError(t, json.Unmarshal([]byte(`{"t":"u64","v":18446744073709551615}`), &v))
	u, ok := v.AsU64()
	require.True(t, ok)
	assert.Equal(t, uint64(18446744073709551615), u)

	// Integer literal is a valid f64 payload.
	require.NoError(t, json.Unmarshal([]byte(`{"t":"f64","v":30}`), &v))
	f, ok := v.AsF64()
	require.True(t, ok)
	assert.Equal(t, 30.0, f)
}

func TestValue_NestedErrorKeepsClassification(t *testing.T) {
	var v model.Value
	err := json.Unmarshal([]byte(`{"t":"arr","v":[{"t":"i32","v":"oops"}]}`), &v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errclass.ErrTypeMismatch))
}

func TestMapping_EncodeDeterministic(t *testing.T) {
	m := map[string]*model.Value{
		"b": model.I32(2),
		"a": model.String("one"),
	}
	first, err := model.EncodeMapping(m)
	require.NoError(t, err)
	second, err := model.EncodeMapping(map[string]*model.Value{
		"a": model.String("one"),
		"b": model.I32(2),
	})
	require.NoError(t, err)
	assert.Equal(t, first, second, "equal mappings must serialize identically")
}

func TestMapping_RoundTrip(t *testing.T) {
	m := map[string]*model.Value{
		"version": model.I32(4),
		"flags":   model.Array(model.Bool(true), model.Bool(false)),
	}
	data, err := model.EncodeMapping(m)
	require.NoError(t, err)

	back, err := model.DecodeMapping(data)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, m["version"].Equal(back["version"]))
	assert.True(t, m["flags"].Equal(back["flags"]))
}

func TestMapping_DecodeErrors(t *testing.T) {
	_, err := model.DecodeMapping([]byte(`{"broken`))
	assert.True(t, errors.Is(err, errclass.ErrIntegrity))

	_, err = model.DecodeMapping([]byte(`null`))
	assert.True(t, errors.Is(err, errclass.ErrIntegrity))

	_, err = model.DecodeMapping([]byte(`{"k": null}`))
	assert.True(t, errors.Is(err, errclass.ErrTypeMismatch))

	_, err = model.DecodeMapping([]byte(`{"k": {"t":"bool","v":"yes"}}`))
	assert.True(t, errors.Is(err, errclass.ErrTypeMismatch))
}

func TestMapping_DecodeEmptyObject(t *testing.T) {
	m, err := model.DecodeMapping([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestKind_TagRoundTrip(t *testing.T) {
	for _, kind := range []model.Kind{
		model.KindNull, model.KindI32, model.KindU32, model.KindI64,
		model.KindU64, model.KindF64, model.KindBool, model.KindString,
		model.KindArray, model.KindObject,
	} {
		back, ok := model.KindFromTag(kind.String())
		require.True(t, ok, "tag %q", kind)
		assert.Equal(t, kind, back)
	}

	_, ok := model.KindFromTag("i33")
	assert.False(t, ok)
}
