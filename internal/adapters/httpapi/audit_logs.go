package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

type auditLogResponse struct {
	AuditLogID int64   `json:"auditLogId"`
	UserEmail  string  `json:"userEmail"`
	Action     string  `json:"action"`
	EntityName string  `json:"entityName"`
	Timestamp  string  `json:"timestamp"`
	KeyValues  string  `json:"keyValues"`
	OldValues  *string `json:"oldValues"`
	NewValues  *string `json:"newValues"`
}

type auditPageResponse struct {
	Items       []auditLogResponse `json:"items"`
	CurrentPage int                `json:"currentPage"`
	PageSize    int                `json:"pageSize"`
	TotalCount  int64              `json:"totalCount"`
	TotalPages  int                `json:"totalPages"`
}

func toAuditLogResponse(rec domain.AuditRecord) auditLogResponse {
	return auditLogResponse{
		AuditLogID: rec.ID,
		UserEmail:  rec.Actor,
		Action:     rec.Action,
		EntityName: rec.EntityType,
		Timestamp:  rec.Timestamp.UTC().Format(timeFormat),
		KeyValues:  rec.KeyValues,
		OldValues:  rawText(rec.Before),
		NewValues:  rawText(rec.After),
	}
}

// rawText keeps snapshots as serialized text, the way they are stored.
func rawText(raw []byte) *string {
	if raw == nil {
		return nil
	}
	s := string(raw)
	return &s
}

func (h *Handler) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNumber, err := queryPageParam(q.Get("pageNumber"), "pageNumber")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pageSize, err := queryPageParam(q.Get("pageSize"), "pageSize")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.audit.GetAuditLog(r.Context(), domain.AuditQuery{
		Actor:      strings.TrimSpace(q.Get("userEmail")),
		EntityType: strings.TrimSpace(q.Get("entityName")),
		PageNumber: pageNumber,
		PageSize:   pageSize,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items := make([]auditLogResponse, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, toAuditLogResponse(rec))
	}
	writeJSON(w, http.StatusOK, auditPageResponse{
		Items:       items,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
	})
}

// queryPageParam returns 0 for an absent value so the service applies its default.
func queryPageParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if name == "pageSize" {
			return 0, domain.NewValidationError(domain.RuleInvalidPageSize, "pageSize must be an integer")
		}
		return 0, domain.NewValidationError(domain.RuleInvalidRequest, name+" must be an integer")
	}
	return v, nil
}
