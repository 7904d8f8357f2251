package audit_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapkv/snapkv/internal/audit"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
)

func TestAppend_FillsIdentityAndChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	app := audit.NewAppender(path)

	require.NoError(t, app.Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpOpen}))
	require.NoError(t, app.Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpFlush, SnapshotID: 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second model.AuditRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.Empty(t, first.PrevHash)
	assert.NotEmpty(t, first.RecordHash)
	assert.Equal(t, first.RecordHash, second.PrevHash)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerifyChain_CleanLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	app := audit.NewAppender(path)
	for i := 0; i < 5; i++ {
		require.NoError(t, app.Append(model.AuditRecord{
			InstanceID: 1,
			Op:         model.AuditOpFlush,
			SnapshotID: model.SnapshotID(i + 1),
		}))
	}

	n, err := audit.VerifyChain(path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestVerifyChain_DetectsTamperedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	app := audit.NewAppender(path)
	require.NoError(t, app.Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpOpen}))
	require.NoError(t, app.Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpFlush, SnapshotID: 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := strings.Replace(string(data), `"op":"flush"`, `"op":"evict"`, 1)
	require.NotEqual(t, string(data), tampered)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	n, err := audit.VerifyChain(path)
	assert.ErrorIs(t, err, errclass.ErrIntegrity)
	assert.Equal(t, 1, n)
}

func TestVerifyChain_DetectsRemovedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	app := audit.NewAppender(path)
	for i := 0; i < 3; i++ {
		require.NoError(t, app.Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpFlush}))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(data), "\n")
	// Drop the middle record.
	require.NoError(t, os.WriteFile(path, []byte(lines[0]+lines[2]), 0o644))

	_, err = audit.VerifyChain(path)
	assert.ErrorIs(t, err, errclass.ErrIntegrity)
}

func TestVerifyChain_MissingFileIsEmpty(t *testing.T) {
	n, err := audit.VerifyChain(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppend_ContinuesChainAcrossAppenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	require.NoError(t, audit.NewAppender(path).Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpOpen}))
	// A fresh appender (new process) must link to the existing tail.
	require.NoError(t, audit.NewAppender(path).Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpFlush, SnapshotID: 1}))

	n, err := audit.VerifyChain(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppend_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "audit.jsonl")
	require.NoError(t, audit.NewAppender(path).Append(model.AuditRecord{InstanceID: 1, Op: model.AuditOpOpen}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
