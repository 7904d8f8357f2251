// Package kvs is the public surface of snapkv: an embedded, file-backed
// key-value store with typed values, per-key default fallbacks, and
// snapshot-based versioning with restore.
//
// One Kvs instance owns the files of one instance id inside one
// directory. Values are typed (model.Value); reads resolve the live
// override mapping first and fall back to the immutable default mapping
// loaded at construction. Nothing is durable until Flush, which writes
// the override mapping as the next numbered snapshot and rotates old
// ones out past the configured capacity.
//
// # Usage
//
//	store, err := kvs.Open(kvs.Config{
//	    InstanceID: 1,
//	    Dir:        "/var/lib/myapp/kvs",
//	})
//	if err != nil {
//	    return err
//	}
//	store.SetValue("version", model.I32(1))
//	sid, err := store.Flush()
//	...
//	err = store.SnapshotRestore(sid)
//
// # Concurrency
//
// A Kvs is safe for concurrent use by multiple goroutines of one
// process. Concurrent access to the same instance directory from
// separate processes is undefined and must be avoided by the caller.
//
// # Errors
//
// Every fallible operation returns one of the five errclass classes;
// match with errors.Is:
//
//	if errors.Is(err, errclass.ErrNotFound) { ... }
package kvs
