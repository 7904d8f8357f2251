package kvs

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/snapkv/snapkv/internal/audit"
	"github.com/snapkv/snapkv/internal/compression"
	"github.com/snapkv/snapkv/internal/defaults"
	"github.com/snapkv/snapkv/internal/diff"
	"github.com/snapkv/snapkv/internal/layout"
	"github.com/snapkv/snapkv/internal/seal"
	"github.com/snapkv/snapkv/internal/snapshot"
	"github.com/snapkv/snapkv/internal/verify"
	"github.com/snapkv/snapkv/pkg/config"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/metrics"
	"github.com/snapkv/snapkv/pkg/model"
)

// Config is the construction record consumed by Open. InstanceID and Dir
// are required; the flags tighten what must already exist on disk.
type Config struct {
	// InstanceID scopes this store to its set of files inside Dir.
	InstanceID model.InstanceID
	// Dir is the storage directory. Created if absent.
	Dir string
	// RequireDefaults makes a loadable defaults pair mandatory. When
	// unset, an absent pair yields an empty default mapping; a present
	// but corrupt pair is an error either way.
	RequireDefaults bool
	// RequireExisting demands at least one retained snapshot; opening an
	// instance that never flushed fails with not-found.
	RequireExisting bool
	// Settings are the engine-level tunables. Nil means config.Default().
	Settings *config.Settings
	// Logger receives structured logs. Nil keeps the library silent.
	Logger hclog.Logger
	// Metrics receives instrumentation. Nil disables it.
	Metrics *metrics.Metrics
}

// Kvs is one open store instance: the live override mapping, the
// immutable default mapping, and the snapshot files in the instance
// directory. Safe for concurrent use by multiple goroutines; a
// whole-instance RWMutex keeps every reader away from partially applied
// mutations.
type Kvs struct {
	iid model.InstanceID
	dir string

	mu        sync.RWMutex
	overrides map[string]*model.Value
	defaults  map[string]*model.Value

	snaps   *snapshot.Manager
	auditor *audit.Appender
	log     hclog.Logger
	metrics *metrics.Metrics
}

// Open validates cfg and produces a ready store, loading the override
// mapping from the latest retained snapshot when one exists. No
// partially initialized instance is ever returned.
func Open(cfg Config) (*Kvs, error) {
	if err := layout.EnsureDir(cfg.Dir); err != nil {
		return nil, err
	}

	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings = settings.Expanded(cfg.InstanceID.String())

	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log = log.Named("kvs").With("instance", cfg.InstanceID.String())

	comp, err := compression.Parse(settings.Snapshot.Compression)
	if err != nil {
		return nil, err
	}
	opts := []snapshot.Option{
		snapshot.WithCapacity(settings.Snapshot.MaxCount),
		snapshot.WithCompressor(comp),
		snapshot.WithLogger(log),
	}
	if settings.Seal.Enabled {
		key, err := seal.LoadKeyFile(settings.Seal.KeyFile)
		if err != nil {
			return nil, err
		}
		sealer, err := seal.New(key)
		if err != nil {
			return nil, err
		}
		opts = append(opts, snapshot.WithSealer(sealer))
	}
	snaps := snapshot.New(cfg.Dir, cfg.InstanceID, opts...)

	latest, hasSnapshot, err := snaps.Latest()
	if err != nil {
		return nil, err
	}
	if cfg.RequireExisting && !hasSnapshot {
		return nil, errclass.ErrNotFound.WithMessagef("no existing store for instance %d in %s", cfg.InstanceID, cfg.Dir)
	}

	overrides := map[string]*model.Value{}
	if hasSnapshot {
		overrides, err = snaps.Load(latest)
		if err != nil {
			return nil, err
		}
	}

	defaultMapping, err := defaults.Load(cfg.Dir, cfg.InstanceID)
	if err != nil {
		if !errors.Is(err, errclass.ErrNotFound) || cfg.RequireDefaults {
			return nil, err
		}
		defaultMapping = map[string]*model.Value{}
	}

	store := &Kvs{
		iid:       cfg.InstanceID,
		dir:       cfg.Dir,
		overrides: overrides,
		defaults:  defaultMapping,
		snaps:     snaps,
		log:       log,
		metrics:   cfg.Metrics,
	}
	if settings.Audit.Enabled {
		path := settings.Audit.Path
		if path == "" {
			path = filepath.Join(cfg.Dir, layout.AuditFile(cfg.InstanceID))
		}
		store.auditor = audit.NewAppender(path)
	}

	store.metrics.SetRetained(cfg.InstanceID.String(), store.snapshotCount())
	store.audit(model.AuditRecord{Op: model.AuditOpOpen})
	log.Info("store opened",
		"dir", cfg.Dir,
		"overrides", len(overrides),
		"defaults", len(defaultMapping),
		"loaded_snapshot", latest,
	)
	return store, nil
}

// InstanceID returns the instance id this store is bound to.
func (k *Kvs) InstanceID() model.InstanceID { return k.iid }

// Dir returns the validated storage directory.
func (k *Kvs) Dir() string { return k.dir }

// SetValue inserts or replaces the override for key. In-memory only; the
// change is not durable until Flush. A nil value stores null.
func (k *Kvs) SetValue(key string, v *model.Value) {
	if v == nil {
		v = model.Null()
	}
	k.mu.Lock()
	k.overrides[key] = v
	k.mu.Unlock()
	k.metrics.ObserveOp("set_value", nil)
	k.log.Debug("value set", "key", key, "kind", v.Kind().String())
}

// GetValue resolves key: the override if present, else the default, else
// not-found. Resolution is whole-value at the top level; override and
// default composites are never merged.
func (k *Kvs) GetValue(key string) (*model.Value, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if v, ok := k.overrides[key]; ok {
		k.metrics.ObserveOp("get_value", nil)
		return v, nil
	}
	if v, ok := k.defaults[key]; ok {
		k.metrics.ObserveOp("get_value", nil)
		return v, nil
	}
	err := errclass.ErrNotFound.WithMessagef("key %q", key)
	k.metrics.ObserveOp("get_value", err)
	return nil, err
}

// GetDefaultValue returns the default mapping's value for key, ignoring
// any override.
func (k *Kvs) GetDefaultValue(key string) (*model.Value, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.defaults[key]
	if !ok {
		err := errclass.ErrNotFound.WithMessagef("no default for key %q", key)
		k.metrics.ObserveOp("get_default_value", err)
		return nil, err
	}
	k.metrics.ObserveOp("get_default_value", nil)
	return v, nil
}

// KeyExists reports whether key has an explicit override. Default-only
// keys report false; this is how callers tell "explicitly set" from
// "using default".
func (k *Kvs) KeyExists(key string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.overrides[key]
	return ok
}

// GetAllKeys returns the override mapping's keys, sorted. Default-only
// keys are not included.
func (k *Kvs) GetAllKeys() []string {
	k.mu.RLock()
	keys := make([]string, 0, len(k.overrides))
	for key := range k.overrides {
		keys = append(keys, key)
	}
	k.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// RemoveKey deletes the override for key, making it default-backed
// again (or fully absent). Not-found if key has no override.
func (k *Kvs) RemoveKey(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.overrides[key]; !ok {
		err := errclass.ErrNotFound.WithMessagef("no override for key %q", key)
		k.metrics.ObserveOp("remove_key", err)
		return err
	}
	delete(k.overrides, key)
	k.metrics.ObserveOp("remove_key", nil)
	k.log.Debug("override removed", "key", key)
	return nil
}

// ResetKey reverts key to its default, with the same contract as
// RemoveKey.
func (k *Kvs) ResetKey(key string) error {
	return k.RemoveKey(key)
}

// Reset clears the entire override mapping. Always succeeds and is
// idempotent; no disk state changes until Flush.
func (k *Kvs) Reset() {
	k.mu.Lock()
	k.overrides = map[string]*model.Value{}
	k.mu.Unlock()
	k.metrics.ObserveOp("reset", nil)
	k.log.Debug("overrides reset")
}

// Flush serializes the override mapping to a new snapshot, assigns the
// next id, and applies retention. On failure the in-memory state is
// unchanged and no snapshot id is consumed.
func (k *Kvs) Flush() (model.SnapshotID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	start := time.Now()
	sid, evicted, storedBytes, err := k.snaps.Write(k.overrides)
	k.metrics.ObserveOp("flush", err)
	if err != nil {
		return 0, err
	}
	k.metrics.ObserveFlush(time.Since(start), storedBytes)
	k.metrics.AddEvicted(len(evicted))
	k.metrics.SetRetained(k.iid.String(), k.snapshotCount())

	k.audit(model.AuditRecord{Op: model.AuditOpFlush, SnapshotID: sid})
	if len(evicted) > 0 {
		k.audit(model.AuditRecord{Op: model.AuditOpEvict, SnapshotID: sid, Evicted: evicted})
	}
	k.log.Info("flushed", "snapshot", sid, "keys", len(k.overrides), "evicted", len(evicted))
	return sid, nil
}

// SnapshotCount returns the number of snapshots currently retained on
// disk for this instance.
func (k *Kvs) SnapshotCount() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.snapshotCount()
}

func (k *Kvs) snapshotCount() int {
	n, err := k.snaps.Count()
	if err != nil {
		k.log.Warn("count snapshots", "error", err)
		return 0
	}
	return n
}

// SnapshotMaxCount returns the fixed retention capacity. It comes from
// Settings at construction and is not adjustable at runtime.
func (k *Kvs) SnapshotMaxCount() int {
	return k.snaps.Capacity()
}

// SnapshotRestore replaces the override mapping with an independent copy
// of snapshot id's contents. Not-found if id is not retained. Restoring
// creates no snapshot and changes no count; a later Flush continues the
// id sequence from the maximum ever assigned.
func (k *Kvs) SnapshotRestore(id model.SnapshotID) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	mapping, err := k.snaps.Load(id)
	k.metrics.ObserveOp("snapshot_restore", err)
	if err != nil {
		if errors.Is(err, errclass.ErrIntegrity) {
			k.metrics.IncIntegrityFailure()
		}
		return err
	}
	k.overrides = mapping

	k.audit(model.AuditRecord{Op: model.AuditOpRestore, SnapshotID: id})
	k.log.Info("restored", "snapshot", id, "keys", len(mapping))
	return nil
}

// Snapshots lists the retained snapshots, oldest first.
func (k *Kvs) Snapshots() ([]model.SnapshotInfo, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.snaps.List()
}

// ResolveSnapshot maps "latest", "oldest", or a decimal id to a retained
// snapshot id.
func (k *Kvs) ResolveSnapshot(spec string) (model.SnapshotID, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.snaps.Resolve(spec)
}

// SnapshotDiff compares two retained snapshots key by key.
func (k *Kvs) SnapshotDiff(a, b model.SnapshotID) (*model.SnapshotDiff, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	am, err := k.snaps.Load(a)
	if err != nil {
		return nil, err
	}
	bm, err := k.snaps.Load(b)
	if err != nil {
		return nil, err
	}
	d := diff.Diff(am, bm)
	d.A, d.B = a, b
	return d, nil
}

// Verify rechecks every stored digest for this instance (defaults pair
// and all snapshot sidecars) and returns the first failure.
func (k *Kvs) Verify() error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	report, err := verify.Run(k.dir, k.iid)
	k.metrics.ObserveOp("verify", err)
	if err != nil {
		return err
	}
	if err := report.FirstError(); err != nil {
		k.metrics.IncIntegrityFailure()
		return err
	}
	return nil
}

// audit appends one trail record. The trail is best-effort: failures are
// logged and never fail the store operation that produced them.
func (k *Kvs) audit(rec model.AuditRecord) {
	if k.auditor == nil {
		return
	}
	rec.InstanceID = k.iid
	if err := k.auditor.Append(rec); err != nil {
		k.log.Warn("audit append failed", "op", rec.Op, "error", err)
	}
}
