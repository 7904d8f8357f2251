// Package snapshot manages the on-disk snapshot lifecycle for one store
// instance: writing new snapshots with digest sidecars, loading and
// verifying retained ones, and enforcing the fixed-capacity retention
// policy.
//
// Snapshot ids are assigned monotonically per instance: the next id is
// the highest id present on disk plus one, starting at 1. Retention never
// evicts the newest snapshot, so the sequence cannot restart while any
// snapshot remains.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/snapkv/snapkv/internal/compression"
	"github.com/snapkv/snapkv/internal/integrity"
	"github.com/snapkv/snapkv/internal/layout"
	"github.com/snapkv/snapkv/internal/seal"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/fsutil"
	"github.com/snapkv/snapkv/pkg/model"
)

// Manager owns the snapshot files of one instance inside one directory.
// It is not safe for concurrent use; the store core serializes access.
type Manager struct {
	dir      string
	iid      model.InstanceID
	capacity int
	comp     *compression.Compressor
	sealer   *seal.Sealer
	log      hclog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity sets the retention capacity (minimum 1).
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.capacity = n
		}
	}
}

// WithCompressor sets the payload compressor used for new snapshots.
func WithCompressor(c *compression.Compressor) Option {
	return func(m *Manager) { m.comp = c }
}

// WithSealer enables sealing of new snapshot payloads and unsealing of
// retained ones.
func WithSealer(s *seal.Sealer) Option {
	return func(m *Manager) { m.sealer = s }
}

// WithLogger sets the manager's logger.
func WithLogger(l hclog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// DefaultCapacity is the retention capacity used when none is configured.
const DefaultCapacity = 3

// New creates a Manager for one instance's snapshots in dir.
func New(dir string, iid model.InstanceID, opts ...Option) *Manager {
	m := &Manager{
		dir:      dir,
		iid:      iid,
		capacity: DefaultCapacity,
		comp:     compression.New(compression.LevelNone),
		log:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Capacity returns the retention capacity.
func (m *Manager) Capacity() int { return m.capacity }

// ids returns the retained snapshot ids in ascending order.
func (m *Manager) ids() ([]model.SnapshotID, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, errclass.ErrIO.WithMessagef("read directory %s: %v", m.dir, err)
	}
	var ids []model.SnapshotID
	for _, e := range entries {
		if sid, ok := layout.ParseSnapshotFile(m.iid, e.Name()); ok {
			ids = append(ids, sid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Count returns the number of retained snapshots.
func (m *Manager) Count() (int, error) {
	ids, err := m.ids()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Latest returns the highest retained snapshot id, if any.
func (m *Manager) Latest() (model.SnapshotID, bool, error) {
	ids, err := m.ids()
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[len(ids)-1], true, nil
}

// List returns the retained snapshots ascending by id, with file size and
// modification time taken from the payload file.
func (m *Manager) List() ([]model.SnapshotInfo, error) {
	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	infos := make([]model.SnapshotInfo, 0, len(ids))
	for _, sid := range ids {
		fi, err := os.Stat(filepath.Join(m.dir, layout.SnapshotFile(m.iid, sid)))
		if err != nil {
			// Evicted between listing and stat; skip.
			if os.IsNotExist(err) {
				continue
			}
			return nil, errclass.ErrIO.WithMessagef("stat snapshot %d: %v", sid, err)
		}
		infos = append(infos, model.SnapshotInfo{ID: sid, Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

// Resolve maps a caller-facing snapshot spec to a retained id: "latest",
// "oldest", or a decimal id. Unretained ids are not-found.
func (m *Manager) Resolve(spec string) (model.SnapshotID, error) {
	ids, err := m.ids()
	if err != nil {
		return 0, err
	}
	switch spec {
	case "latest":
		if len(ids) == 0 {
			return 0, errclass.ErrNotFound.WithMessage("no snapshots retained")
		}
		return ids[len(ids)-1], nil
	case "oldest":
		if len(ids) == 0 {
			return 0, errclass.ErrNotFound.WithMessage("no snapshots retained")
		}
		return ids[0], nil
	}
	n, err := strconv.ParseUint(spec, 10, 64)
	if err != nil || n == 0 {
		return 0, errclass.ErrInvalidConfig.WithMessagef("snapshot spec %q, want latest, oldest, or a positive id", spec)
	}
	sid := model.SnapshotID(n)
	for _, have := range ids {
		if have == sid {
			return sid, nil
		}
	}
	return 0, errclass.ErrNotFound.WithMessagef("snapshot %d", sid)
}

// Write persists mapping as the next snapshot and applies retention. It
// returns the new id, the evicted ids (oldest first), and the stored
// payload size in bytes. On failure nothing is retained and no id is
// consumed.
func (m *Manager) Write(mapping map[string]*model.Value) (model.SnapshotID, []model.SnapshotID, int64, error) {
	ids, err := m.ids()
	if err != nil {
		return 0, nil, 0, err
	}
	next := model.SnapshotID(1)
	if len(ids) > 0 {
		next = ids[len(ids)-1] + 1
	}

	plain, err := model.EncodeMapping(mapping)
	if err != nil {
		return 0, nil, 0, errclass.ErrIO.WithMessagef("encode snapshot: %v", err)
	}
	stored, err := m.comp.Compress(plain)
	if err != nil {
		return 0, nil, 0, errclass.ErrIO.WithMessagef("compress snapshot: %v", err)
	}
	name := layout.SnapshotFile(m.iid, next)
	if m.sealer != nil {
		stored, err = m.sealer.Seal(stored, name)
		if err != nil {
			return 0, nil, 0, err
		}
	}

	payloadPath := filepath.Join(m.dir, name)
	if err := fsutil.AtomicWrite(payloadPath, stored, 0o644); err != nil {
		return 0, nil, 0, errclass.ErrIO.WithMessagef("write snapshot %d: %v", next, err)
	}
	digestPath := filepath.Join(m.dir, layout.SnapshotDigestFile(m.iid, next))
	if err := integrity.WriteDigestFile(digestPath, stored); err != nil {
		os.Remove(payloadPath)
		return 0, nil, 0, err
	}

	evicted, err := m.evict(append(ids, next))
	if err != nil {
		return 0, nil, 0, err
	}
	m.log.Debug("snapshot written", "instance", m.iid, "id", next, "bytes", len(stored))
	return next, evicted, int64(len(stored)), nil
}

// evict removes the oldest snapshots until at most capacity remain. ids
// must be ascending and include the just-written snapshot.
func (m *Manager) evict(ids []model.SnapshotID) ([]model.SnapshotID, error) {
	if len(ids) <= m.capacity {
		return nil, nil
	}
	var evicted []model.SnapshotID
	for _, sid := range ids[:len(ids)-m.capacity] {
		payloadPath := filepath.Join(m.dir, layout.SnapshotFile(m.iid, sid))
		if err := os.Remove(payloadPath); err != nil && !os.IsNotExist(err) {
			return evicted, errclass.ErrIO.WithMessagef("evict snapshot %d: %v", sid, err)
		}
		digestPath := filepath.Join(m.dir, layout.SnapshotDigestFile(m.iid, sid))
		if err := os.Remove(digestPath); err != nil && !os.IsNotExist(err) {
			return evicted, errclass.ErrIO.WithMessagef("evict snapshot %d digest: %v", sid, err)
		}
		m.log.Info("snapshot evicted", "instance", m.iid, "id", sid)
		evicted = append(evicted, sid)
	}
	return evicted, nil
}

// Load reads snapshot id and returns its mapping as a fresh, independent
// copy. The sidecar digest is checked against the stored bytes before any
// decoding; sealed payloads are opened, compressed ones inflated.
func (m *Manager) Load(id model.SnapshotID) (map[string]*model.Value, error) {
	name := layout.SnapshotFile(m.iid, id)
	payloadPath := filepath.Join(m.dir, name)
	stored, err := os.ReadFile(payloadPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrNotFound.WithMessagef("snapshot %d", id)
		}
		return nil, errclass.ErrIO.WithMessagef("read snapshot %d: %v", id, err)
	}

	digestPath := filepath.Join(m.dir, layout.SnapshotDigestFile(m.iid, id))
	rawDigest, err := os.ReadFile(digestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrIntegrity.WithMessagef("snapshot %d digest missing", id)
		}
		return nil, errclass.ErrIO.WithMessagef("read snapshot %d digest: %v", id, err)
	}
	if err := integrity.VerifyBytes(stored, rawDigest); err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}

	// Stored payloads are self-describing; sniff so snapshots written
	// under different settings still load.
	plain := stored
	if seal.IsSealed(plain) {
		if m.sealer == nil {
			return nil, errclass.ErrInvalidConfig.WithMessagef("snapshot %d is sealed and no seal key is configured", id)
		}
		plain, err = m.sealer.Open(plain, name)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", id, err)
		}
	}
	if compression.IsCompressed(plain) {
		plain, err = compression.Decompress(plain)
		if err != nil {
			return nil, errclass.ErrIntegrity.WithMessagef("snapshot %d: %v", id, err)
		}
	}

	mapping, err := model.DecodeMapping(plain)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}
	return mapping, nil
}
