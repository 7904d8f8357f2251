// Package audit appends hash-chained JSONL records of a store's durable
// operations (open, flush, restore, evict).
//
// Each record carries the SHA-256 of its own serialized form (with the
// hash field empty) and the previous record's hash, so any edit, removal,
// or reordering of lines breaks the chain. The trail is best-effort by
// contract: the store logs append failures and carries on.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/idutil"
	"github.com/snapkv/snapkv/pkg/model"
)

// Appender writes audit records to one JSONL file. Safe for concurrent
// use within a process; cross-process appends are out of contract.
type Appender struct {
	path string

	mu       sync.Mutex
	lastHash string
	primed   bool
}

// NewAppender creates an Appender for the given log path. The file and
// its directory are created on first append.
func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

// Path returns the log file path.
func (a *Appender) Path() string { return a.path }

// Append fills in the record's id, timestamp, and chain fields, then
// appends it as one JSONL line and syncs the file.
func (a *Appender) Append(rec model.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.primed {
		last, err := lastRecordHash(a.path)
		if err != nil {
			return err
		}
		a.lastHash = last
		a.primed = true
	}

	rec.ID = idutil.New()
	rec.Timestamp = time.Now().UTC()
	rec.PrevHash = a.lastHash
	rec.RecordHash = ""
	hash, err := recordHash(&rec)
	if err != nil {
		return err
	}
	rec.RecordHash = hash

	line, err := json.Marshal(&rec)
	if err != nil {
		return errclass.ErrIO.WithMessagef("marshal audit record: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return errclass.ErrIO.WithMessagef("create audit directory: %v", err)
	}
	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errclass.ErrIO.WithMessagef("open audit log %s: %v", a.path, err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errclass.ErrIO.WithMessagef("append audit record: %v", err)
	}
	if err := file.Sync(); err != nil {
		return errclass.ErrIO.WithMessagef("sync audit log: %v", err)
	}

	a.lastHash = hash
	return nil
}

// VerifyChain walks the log and checks every record's hash and its link
// to the previous record. It returns the number of valid records; a
// broken chain is an integrity error naming the offending line.
func VerifyChain(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errclass.ErrIO.WithMessagef("open audit log %s: %v", path, err)
	}
	defer file.Close()

	var (
		prevHash string
		count    int
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return count, errclass.ErrIntegrity.WithMessagef("audit line %d: %v", count+1, err)
		}
		if rec.PrevHash != prevHash {
			return count, errclass.ErrIntegrity.WithMessagef("audit line %d: chain broken", count+1)
		}
		want := rec.RecordHash
		rec.RecordHash = ""
		got, err := recordHash(&rec)
		if err != nil {
			return count, err
		}
		if got != want {
			return count, errclass.ErrIntegrity.WithMessagef("audit line %d: record hash mismatch", count+1)
		}
		prevHash = want
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, errclass.ErrIO.WithMessagef("scan audit log: %v", err)
	}
	return count, nil
}

// lastRecordHash returns the RecordHash of the final line, skipping
// malformed ones, so a fresh process continues the chain where the last
// one stopped.
func lastRecordHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errclass.ErrIO.WithMessagef("open audit log %s: %v", path, err)
	}
	defer file.Close()

	var last string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec model.AuditRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		last = rec.RecordHash
	}
	if err := scanner.Err(); err != nil {
		return "", errclass.ErrIO.WithMessagef("scan audit log: %v", err)
	}
	return last, nil
}

// recordHash computes the SHA-256 of the record's serialized form. The
// caller clears RecordHash first; struct field order makes the bytes
// deterministic.
func recordHash(rec *model.AuditRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
