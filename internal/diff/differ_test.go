package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snapkv/snapkv/internal/diff"
	"github.com/snapkv/snapkv/pkg/model"
)

func TestDiff_AddedRemovedChanged(t *testing.T) {
	a := map[string]*model.Value{
		"kept":    model.String("same"),
		"changed": model.I32(1),
		"gone":    model.Bool(true),
	}
	b := map[string]*model.Value{
		"kept":    model.String("same"),
		"changed": model.I32(2),
		"new":     model.F64(1.5),
	}

	d := diff.Diff(a, b)
	assert.Equal(t, []string{"new"}, d.Added)
	assert.Equal(t, []string{"gone"}, d.Removed)
	assert.Equal(t, []string{"changed"}, d.Changed)
	assert.False(t, d.Empty())
}

func TestDiff_KindChangeIsChanged(t *testing.T) {
	// Same rendered payload, different tag: no coercion, so it changed.
	a := map[string]*model.Value{"n": model.I32(5)}
	b := map[string]*model.Value{"n": model.I64(5)}

	d := diff.Diff(a, b)
	assert.Equal(t, []string{"n"}, d.Changed)
}

func TestDiff_IdenticalMappingsAreEmpty(t *testing.T) {
	m := map[string]*model.Value{
		"arr": model.Array(model.I32(1), model.String("x")),
	}
	d := diff.Diff(m, m)
	assert.True(t, d.Empty())
}

func TestDiff_EmptySides(t *testing.T) {
	m := map[string]*model.Value{"a": model.Null(), "b": model.U64(9)}

	d := diff.Diff(nil, m)
	assert.Equal(t, []string{"a", "b"}, d.Added)
	assert.Empty(t, d.Removed)

	d = diff.Diff(m, nil)
	assert.Equal(t, []string{"a", "b"}, d.Removed)
	assert.Empty(t, d.Added)
}

func TestDiff_SortedOutput(t *testing.T) {
	b := map[string]*model.Value{
		"zeta":  model.I32(1),
		"alpha": model.I32(2),
		"mid":   model.I32(3),
	}
	d := diff.Diff(nil, b)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, d.Added)
}
