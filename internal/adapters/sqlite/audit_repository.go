package sqlite

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// AuditRepository is the append-only audit store. It exposes no update or delete.
type AuditRepository struct {
	db  *gormsqlite.DB
	now func() time.Time
}

func NewAuditRepository(db *gormsqlite.DB) *AuditRepository {
	return &AuditRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *AuditRepository) Append(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error) {
	row := auditLogModel{
		UserEmail:  record.Actor,
		Action:     record.Action,
		EntityName: record.EntityType,
		Timestamp:  r.now(),
		KeyValues:  record.KeyValues,
		OldValues:  rawToText(record.Before),
		NewValues:  rawToText(record.After),
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.AuditRecord{}, domain.NewStorageError("append audit record", err)
	}
	return row.toDomain(), nil
}

func (r *AuditRepository) Query(ctx context.Context, q domain.AuditQuery) ([]domain.AuditRecord, int64, error) {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageSize < 1 {
		return nil, 0, domain.NewValidationError(domain.RuleInvalidPageSize, "pageSize must be positive")
	}

	var (
		rows  []auditLogModel
		total int64
	)
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := auditFilter(tx.DB, q).Count(&total).Error; err != nil {
			return err
		}
		offset, ok := pageOffset(q.PageNumber, q.PageSize)
		if !ok || int64(offset) >= total {
			return nil
		}
		return auditFilter(tx.DB, q).
			Order("timestamp DESC, audit_log_id DESC").
			Offset(offset).
			Limit(q.PageSize).
			Find(&rows).Error
	})
	if err != nil {
		return nil, 0, domain.NewStorageError("query audit log", err)
	}

	result := make([]domain.AuditRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, total, nil
}

// pageOffset returns the row offset of a 1-indexed page; ok is false when the
// offset does not fit in an int.
func pageOffset(pageNumber, pageSize int) (offset int, ok bool) {
	if pageNumber-1 > (math.MaxInt-1)/pageSize {
		return 0, false
	}
	return (pageNumber - 1) * pageSize, true
}

func auditFilter(db *gorm.DB, q domain.AuditQuery) *gorm.DB {
	query := db.Model(&auditLogModel{})
	if q.Actor != "" {
		query = query.Where(containsExpr("user_email"), q.Actor)
	}
	if q.EntityType != "" {
		query = query.Where("entity_name = ?", q.EntityType)
	}
	return query
}

func (m auditLogModel) toDomain() domain.AuditRecord {
	return domain.AuditRecord{
		ID:         m.ID,
		Actor:      m.UserEmail,
		Action:     m.Action,
		EntityType: m.EntityName,
		KeyValues:  m.KeyValues,
		Before:     textToRaw(m.OldValues),
		After:      textToRaw(m.NewValues),
		Timestamp:  m.Timestamp,
	}
}

func rawToText(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	s := string(raw)
	return &s
}

func textToRaw(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	return json.RawMessage(*s)
}
