package handler

import (
	"context"
	"net/http"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	ListAuditLogs(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	auditUC AuditService
}

func NewAuditHandler(auditUC AuditService) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// List filters the trail.
//
//	?user_id=&action=&resource_type=&resource_id=&start_date=&end_date=&limit=&offset=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseDateQuery(q.Get("start_date"), false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	end, err := parseDateQuery(q.Get("end_date"), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logs, err := h.auditUC.ListAuditLogs(r.Context(), domain.ActorID(r.Context()), domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		StartDate:    start,
		EndDate:      end,
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
