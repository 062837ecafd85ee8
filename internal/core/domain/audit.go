package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	ActionCreate         = "Create"
	ActionUpdate         = "Update"
	ActionDelete         = "Delete"
	ActionChangePassword = "ChangePassword"

	UnknownActor = "Unknown"
)

// Auditable is implemented by entities whose writes are recorded in the audit log.
// AuditSnapshot must return an allow-listed projection: only fields listed there
// ever reach the log.
type Auditable interface {
	EntityName() string
	AuditKey() any
	AuditSnapshot() any
}

type AuditRecord struct {
	ID         int64
	Actor      string
	Action     string
	EntityType string
	KeyValues  string
	Before     json.RawMessage
	After      json.RawMessage
	Timestamp  time.Time
}

// BuildAuditRecord assembles a record from already serialized parts. It never fails;
// id and timestamp are left for the store to assign.
func BuildAuditRecord(actor, action, entityType, key string, before, after json.RawMessage) AuditRecord {
	return AuditRecord{
		Actor:      NormalizeActor(actor),
		Action:     action,
		EntityType: entityType,
		KeyValues:  key,
		Before:     before,
		After:      after,
	}
}

func NormalizeActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return UnknownActor
	}
	return actor
}

type AuditQuery struct {
	Actor      string
	EntityType string
	PageNumber int
	PageSize   int
}

type AuditPage struct {
	Items       []AuditRecord
	CurrentPage int
	PageSize    int
	TotalCount  int64
	TotalPages  int
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
