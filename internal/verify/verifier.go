// Package verify rechecks every stored digest of one store instance: the
// defaults pair, when present, and the sidecar of every retained
// snapshot. Verification works on raw bytes only and never decodes or
// unseals payloads, so it needs no key and cannot be fooled by a payload
// that decodes by luck.
package verify

import (
	"os"
	"path/filepath"

	"github.com/snapkv/snapkv/internal/integrity"
	"github.com/snapkv/snapkv/internal/layout"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
)

// FileResult is the verification outcome for one payload file.
type FileResult struct {
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report collects the per-file results for one instance.
type Report struct {
	InstanceID model.InstanceID `json:"instance_id"`
	Results    []FileResult     `json:"results"`
}

// OK reports whether every checked file verified cleanly.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// FirstError returns the first failing file's error, or nil.
func (r *Report) FirstError() error {
	for _, res := range r.Results {
		if !res.OK {
			return errclass.ErrIntegrity.WithMessagef("%s: %s", res.Path, res.Error)
		}
	}
	return nil
}

// Run verifies every digest for the instance in dir. An unreadable
// directory is an I/O error; individual file failures land in the report
// rather than aborting the walk.
func Run(dir string, iid model.InstanceID) (*Report, error) {
	report := &Report{InstanceID: iid}

	defName := layout.DefaultsFile(iid)
	defPath := filepath.Join(dir, defName)
	if _, err := os.Stat(defPath); err == nil {
		report.add(defName, integrity.VerifyFile(defPath, filepath.Join(dir, layout.DefaultsDigestFile(iid))))
	} else if !os.IsNotExist(err) {
		return nil, errclass.ErrIO.WithMessagef("stat %s: %v", defPath, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errclass.ErrIO.WithMessagef("read directory %s: %v", dir, err)
	}
	for _, e := range entries {
		sid, ok := layout.ParseSnapshotFile(iid, e.Name())
		if !ok {
			continue
		}
		report.add(e.Name(), integrity.VerifyFile(
			filepath.Join(dir, e.Name()),
			filepath.Join(dir, layout.SnapshotDigestFile(iid, sid)),
		))
	}
	return report, nil
}

func (r *Report) add(name string, err error) {
	res := FileResult{Path: name, OK: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	r.Results = append(r.Results, res)
}
