package model

import "time"

// SnapshotInfo describes one retained on-disk snapshot.
type SnapshotInfo struct {
	ID      SnapshotID `json:"id"`
	Size    int64      `json:"size"`
	ModTime time.Time  `json:"mod_time"`
}

// SnapshotDiff is the key-level comparison of two retained snapshots:
// keys only in B (added), only in A (removed), and in both with unequal
// values (changed). Key slices are sorted.
type SnapshotDiff struct {
	A       SnapshotID `json:"a"`
	B       SnapshotID `json:"b"`
	Added   []string   `json:"added"`
	Removed []string   `json:"removed"`
	Changed []string   `json:"changed"`
}

// Empty reports whether the two snapshots hold identical mappings.
func (d *SnapshotDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
