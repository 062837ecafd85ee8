package ports

import (
	"context"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// AuditStore is append-only. Append assigns id and timestamp.
type AuditStore interface {
	Append(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error)
	Query(ctx context.Context, query domain.AuditQuery) ([]domain.AuditRecord, int64, error)
}
