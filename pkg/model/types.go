// Package model defines the shared vocabulary of the store: instance and
// snapshot identities, the typed value model, and the record types carried
// across package boundaries.
package model

import "strconv"

// InstanceID scopes one logical store to a directory-resident set of files.
// Distinct instance ids are fully isolated.
type InstanceID uint64

// String returns the decimal form used in file names.
func (id InstanceID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// SnapshotID identifies one immutable, on-disk snapshot. Ids are assigned
// monotonically per instance starting at 1 and are never reused, even after
// the snapshot is evicted.
type SnapshotID uint64

// String returns the decimal form used in file names.
func (id SnapshotID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Kind enumerates the value model's type tags.
type Kind int

const (
	KindNull Kind = iota
	KindI32
	KindU32
	KindI64
	KindU64
	KindF64
	KindBool
	KindString
	KindArray
	KindObject
)

// kindTags maps each Kind to its wire tag, index-aligned with the constants.
var kindTags = [...]string{
	KindNull:   "null",
	KindI32:    "i32",
	KindU32:    "u32",
	KindI64:    "i64",
	KindU64:    "u64",
	KindF64:    "f64",
	KindBool:   "bool",
	KindString: "str",
	KindArray:  "arr",
	KindObject: "obj",
}

// String returns the wire tag for the kind ("i32", "str", ...).
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return "unknown"
	}
	return kindTags[k]
}

// KindFromTag resolves a wire tag to its Kind.
func KindFromTag(tag string) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), true
		}
	}
	return KindNull, false
}
