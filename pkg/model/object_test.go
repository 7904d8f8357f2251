package model_test

import (
	"encoding/json"
	"testing"

	"github.com/snapkv/snapkv/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetGetDelete(t *testing.T) {
	o := model.NewObject()
	o.Set("theme", model.String("dark"))
	o.Set("timeout", model.I32(30))

	v, ok := o.Get("theme")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "dark", s)

	_, ok = o.Get("missing")
	assert.False(t, ok)

	assert.True(t, o.Delete("theme"))
	assert.False(t, o.Delete("theme"))
	assert.Equal(t, 1, o.Len())
}

func TestObject_ReplaceKeepsPosition(t *testing.T) {
	o := model.NewObject()
	o.Set("a", model.I32(1))
	o.Set("b", model.I32(2))
	o.Set("a", model.I32(10))

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	v, _ := o.Get("a")
	i, _ := v.AsI32()
	assert.Equal(t, int32(10), i)
}

func TestObject_NilValueStoresNull(t *testing.T) {
	o := model.NewObject()
	o.Set("k", nil)
	v, ok := o.Get("k")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestObject_MarshalPreservesInsertionOrder(t *testing.T) {
	o := model.NewObject()
	o.Set("z", model.I32(1))
	o.Set("a", model.I32(2))

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"z":{"t":"i32","v":1},"a":{"t":"i32","v":2}}`, string(data))
}

func TestObject_UnmarshalPreservesOrderAndLastDuplicateWins(t *testing.T) {
	o := model.NewObject()
	err := json.Unmarshal([]byte(`{"z":{"t":"i32","v":1},"a":{"t":"i32","v":2},"z":{"t":"i32","v":3}}`), o)
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a"}, o.Keys())
	v, _ := o.Get("z")
	i, _ := v.AsI32()
	assert.Equal(t, int32(3), i)
}

func TestObject_UnmarshalRejectsNonObject(t *testing.T) {
	o := model.NewObject()
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), o))
}

func TestObject_NilSafeReads(t *testing.T) {
	var o *model.Object
	assert.Equal(t, 0, o.Len())
	assert.Nil(t, o.Keys())
	_, ok := o.Get("k")
	assert.False(t, ok)
}
