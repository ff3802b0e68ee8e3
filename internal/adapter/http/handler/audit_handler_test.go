package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/cambio/internal/adapter/http/dto"
	"github.com/iho/cambio/internal/domain"
)

type auditServiceStub struct {
	listFn func(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func (s *auditServiceStub) ListAuditLogs(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return s.listFn(ctx, actorID, filter)
}

func TestAuditHandler_List(t *testing.T) {
	var (
		gotActor  string
		gotFilter domain.AuditFilter
	)
	h := NewAuditHandler(&auditServiceStub{
		listFn: func(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
			gotActor, gotFilter = actorID, filter
			return []*domain.AuditLog{{
				ID:           "audit-1",
				UserID:       "admin-1",
				Action:       string(domain.AuditActionLimitSetBalance),
				ResourceType: domain.ResourceTypeLimit,
				ResourceID:   "cust-a",
				RequestID:    "req-1",
				BeforeState:  domain.JSON{"Balance": "80"},
				Status:       string(domain.AuditStatusSuccess),
				CreatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/audit?resource_type=limit&resource_id=cust-a&end_date=2025-03-31&limit=10&offset=20", nil)
	req = req.WithContext(domain.ContextWithUser(req.Context(), &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Active: true}))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotActor != "admin-1" {
		t.Fatalf("actor not forwarded: %q", gotActor)
	}
	if gotFilter.ResourceType != "limit" || gotFilter.ResourceID != "cust-a" || gotFilter.Limit != 10 || gotFilter.Offset != 20 {
		t.Fatalf("unexpected filter: %+v", gotFilter)
	}
	if gotFilter.StartDate != nil || gotFilter.EndDate == nil || gotFilter.EndDate.Hour() != 23 {
		t.Fatalf("unexpected date range: %v - %v", gotFilter.StartDate, gotFilter.EndDate)
	}

	var resp []dto.AuditLogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].RequestID != "req-1" || resp[0].BeforeState["Balance"] != "80" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAuditHandler_ListErrors(t *testing.T) {
	h := NewAuditHandler(&auditServiceStub{
		listFn: func(ctx context.Context, actorID string, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
			return nil, domain.ErrInvalidDateRange
		},
	})

	for _, tc := range []struct {
		name   string
		target string
		want   int
	}{
		{"bad date", "/audit?start_date=yesterday", http.StatusBadRequest},
		{"inverted range", "/audit?start_date=2025-03-02&end_date=2025-03-01", http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.List(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
