// Package diff computes key-level differences between two override
// mappings.
package diff

import (
	"sort"

	"github.com/snapkv/snapkv/pkg/model"
)

// Diff compares two mappings and reports keys only in b (added), only in
// a (removed), and in both with structurally unequal values (changed).
// The id fields of the result are left for the caller to fill. All key
// slices come back sorted.
func Diff(a, b map[string]*model.Value) *model.SnapshotDiff {
	d := &model.SnapshotDiff{}
	for key, bv := range b {
		av, ok := a[key]
		switch {
		case !ok:
			d.Added = append(d.Added, key)
		case !av.Equal(bv):
			d.Changed = append(d.Changed, key)
		}
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}
