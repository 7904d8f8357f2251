// Package defaults loads the integrity-checked defaults pair of one store
// instance: a JSON definition mapping keys to tagged values, and a 4-byte
// Adler-32 digest of the definition's exact bytes.
//
// The pair is authored outside the running store (or installed via Write)
// and is read once at construction. A running instance never mutates it.
package defaults

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snapkv/snapkv/internal/integrity"
	"github.com/snapkv/snapkv/internal/layout"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/fsutil"
	"github.com/snapkv/snapkv/pkg/model"
)

// Load reads, verifies, and parses the defaults pair for an instance.
//
// An absent definition file is reported as a not-found error so the caller
// can decide whether defaults were required; everything else wrong with a
// present pair (missing digest, digest mismatch, malformed JSON, tag/value
// disagreement) is an error in its own class regardless of that decision.
func Load(dir string, iid model.InstanceID) (map[string]*model.Value, error) {
	defPath := filepath.Join(dir, layout.DefaultsFile(iid))
	data, err := os.ReadFile(defPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrNotFound.WithMessagef("defaults file %s", defPath)
		}
		return nil, errclass.ErrIO.WithMessagef("read defaults %s: %v", defPath, err)
	}

	digestPath := filepath.Join(dir, layout.DefaultsDigestFile(iid))
	rawDigest, err := os.ReadFile(digestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrIntegrity.WithMessagef("defaults digest %s missing", digestPath)
		}
		return nil, errclass.ErrIO.WithMessagef("read defaults digest %s: %v", digestPath, err)
	}
	if err := integrity.VerifyBytes(data, rawDigest); err != nil {
		return nil, fmt.Errorf("defaults %s: %w", defPath, err)
	}

	m, err := model.DecodeMapping(data)
	if err != nil {
		return nil, fmt.Errorf("defaults %s: %w", defPath, err)
	}
	return m, nil
}

// Write validates a defaults definition and installs the pair, computing a
// fresh digest over the exact bytes written. It returns the entry count.
// Definitions are stored plain; no compression or sealing applies to them.
func Write(dir string, iid model.InstanceID, definition []byte) (int, error) {
	m, err := model.DecodeMapping(definition)
	if err != nil {
		return 0, fmt.Errorf("defaults definition: %w", err)
	}

	defPath := filepath.Join(dir, layout.DefaultsFile(iid))
	if err := fsutil.AtomicWrite(defPath, definition, 0o644); err != nil {
		return 0, errclass.ErrIO.WithMessagef("write defaults %s: %v", defPath, err)
	}
	digestPath := filepath.Join(dir, layout.DefaultsDigestFile(iid))
	if err := integrity.WriteDigestFile(digestPath, definition); err != nil {
		return 0, err
	}
	return len(m), nil
}

// WriteMapping encodes a mapping and installs it as the defaults pair.
func WriteMapping(dir string, iid model.InstanceID, m map[string]*model.Value) (int, error) {
	data, err := model.EncodeMapping(m)
	if err != nil {
		return 0, errclass.ErrIO.WithMessagef("encode defaults: %v", err)
	}
	return Write(dir, iid, data)
}
