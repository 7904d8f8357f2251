package model

import "time"

// AuditOp identifies the operation an audit record captures. Only durable
// points are audited; individual in-memory mutations are not.
type AuditOp string

const (
	AuditOpOpen    AuditOp = "open"
	AuditOpFlush   AuditOp = "flush"
	AuditOpRestore AuditOp = "restore"
	AuditOpEvict   AuditOp = "evict"
)

// AuditRecord is a single line in the audit log (JSONL format). Records are
// hash-chained: RecordHash covers the record serialized with RecordHash
// empty, and PrevHash carries the previous record's hash.
type AuditRecord struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	InstanceID InstanceID   `json:"instance_id"`
	Op         AuditOp      `json:"op"`
	SnapshotID SnapshotID   `json:"snapshot_id,omitempty"`
	Evicted    []SnapshotID `json:"evicted,omitempty"`
	PrevHash   string       `json:"prev_hash"`
	RecordHash string       `json:"record_hash"`
}
