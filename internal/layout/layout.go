// Package layout fixes the on-disk naming for one store instance's files
// and validates the instance directory.
//
// An instance directory holds, per instance id:
//
//	kvs_<iid>_default.json   defaults definition (optional)
//	kvs_<iid>_default.hash   4-byte digest of the definition
//	kvs_<iid>_snap_<sid>.json  one file per retained snapshot
//	kvs_<iid>_snap_<sid>.hash  4-byte digest of the snapshot payload
//
// Several instances may share one directory; ids keep them disjoint.
package layout

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
)

// DefaultsFile returns the defaults definition file name for an instance.
func DefaultsFile(iid model.InstanceID) string {
	return fmt.Sprintf("kvs_%d_default.json", iid)
}

// DefaultsDigestFile returns the defaults digest file name for an instance.
func DefaultsDigestFile(iid model.InstanceID) string {
	return fmt.Sprintf("kvs_%d_default.hash", iid)
}

// SnapshotFile returns the payload file name for a snapshot.
func SnapshotFile(iid model.InstanceID, sid model.SnapshotID) string {
	return fmt.Sprintf("kvs_%d_snap_%d.json", iid, sid)
}

// SnapshotDigestFile returns the digest sidecar name for a snapshot.
func SnapshotDigestFile(iid model.InstanceID, sid model.SnapshotID) string {
	return fmt.Sprintf("kvs_%d_snap_%d.hash", iid, sid)
}

// AuditFile returns the default audit log name for an instance.
func AuditFile(iid model.InstanceID) string {
	return fmt.Sprintf("kvs_%d_audit.jsonl", iid)
}

// SnapshotPrefix returns the directory-listing prefix that selects one
// instance's snapshot files.
func SnapshotPrefix(iid model.InstanceID) string {
	return fmt.Sprintf("kvs_%d_snap_", iid)
}

// ParseSnapshotFile extracts the snapshot id from a payload file name
// belonging to the given instance. Digest sidecars and other instances'
// files do not match. Ids start at 1; a zero id never names a snapshot.
func ParseSnapshotFile(iid model.InstanceID, name string) (model.SnapshotID, bool) {
	rest, ok := strings.CutPrefix(name, SnapshotPrefix(iid))
	if !ok {
		return 0, false
	}
	digits, ok := strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, false
	}
	sid, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || sid == 0 {
		return 0, false
	}
	return model.SnapshotID(sid), true
}

// EnsureDir creates the instance directory if needed and verifies it is
// usable.
func EnsureDir(dir string) error {
	if dir == "" {
		return errclass.ErrInvalidConfig.WithMessage("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errclass.ErrIO.WithMessagef("create directory %s: %v", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errclass.ErrIO.WithMessagef("stat directory %s: %v", dir, err)
	}
	if !info.IsDir() {
		return errclass.ErrIO.WithMessagef("%s is not a directory", dir)
	}
	return nil
}
