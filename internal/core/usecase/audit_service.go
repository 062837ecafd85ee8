package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
	"github.com/atvirokodosprendimai/newsroom/internal/observability/metrics"
)

const (
	DefaultAuditPageSize = 15
	MaxAuditPageSize     = 200
)

// ChangeLogger records one write. Implemented by AuditService.
type ChangeLogger interface {
	LogChange(ctx context.Context, actor, action, entityType, keyDescriptor string, before, after any) error
}

type AuditService struct {
	store ports.AuditStore
}

func NewAuditService(store ports.AuditStore) *AuditService {
	return &AuditService{store: store}
}

// LogChange appends exactly one record. Storage failures are returned for the caller to log.
func (s *AuditService) LogChange(ctx context.Context, actor, action, entityType, keyDescriptor string, before, after any) error {
	rec := domain.BuildAuditRecord(actor, action, entityType, keyDescriptor, CaptureSnapshot(before), CaptureSnapshot(after))
	if _, err := s.store.Append(ctx, rec); err != nil {
		metrics.AuditAppendTotal.WithLabelValues(entityType, metrics.ResultFailure).Inc()
		return err
	}
	metrics.AuditAppendTotal.WithLabelValues(entityType, metrics.ResultSuccess).Inc()
	return nil
}

// GetAuditLog returns one page, newest first. A zero page size means the default;
// sizes above MaxAuditPageSize are clamped and the effective size is reported back.
func (s *AuditService) GetAuditLog(ctx context.Context, q domain.AuditQuery) (domain.AuditPage, error) {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	switch {
	case q.PageSize == 0:
		q.PageSize = DefaultAuditPageSize
	case q.PageSize < 0:
		return domain.AuditPage{}, domain.NewValidationError(domain.RuleInvalidPageSize, "pageSize must be positive")
	case q.PageSize > MaxAuditPageSize:
		q.PageSize = MaxAuditPageSize
	}

	items, total, err := s.store.Query(ctx, q)
	if err != nil {
		return domain.AuditPage{}, fmt.Errorf("get audit log: %w", err)
	}
	if items == nil {
		items = []domain.AuditRecord{}
	}
	return domain.AuditPage{
		Items:       items,
		CurrentPage: q.PageNumber,
		PageSize:    q.PageSize,
		TotalCount:  total,
		TotalPages:  domain.TotalPages(total, q.PageSize),
	}, nil
}
