package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

func TestAuditUseCase_ListAuditLogs(t *testing.T) {
	f := newFixture(t, nil)
	audit := usecase.NewAuditUseCase(f.auditRepo, allowAdmins(gomock.NewController(t)))

	ctx := domain.ContextWithRequestMeta(context.Background(), domain.RequestMeta{
		RequestID: "req-42",
		IPAddress: "203.0.113.9",
		UserAgent: "cambio-test",
	})

	_, err := f.limits.SetBalance(ctx, usecase.SetBalanceInput{CustomerID: customerA, Amount: dec("300"), ActorID: adminID})
	require.NoError(t, err)
	_, err = f.limits.SetBalance(ctx, usecase.SetBalanceInput{CustomerID: customerB, Amount: dec("70"), ActorID: adminID})
	require.NoError(t, err)

	logs, err := audit.ListAuditLogs(context.Background(), adminID, domain.AuditFilter{ResourceType: domain.ResourceTypeLimit})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, customerB, logs[0].ResourceID, "newest first")
	assert.Equal(t, "req-42", logs[0].RequestID)
	assert.Equal(t, "203.0.113.9", logs[0].IPAddress)
	assert.Equal(t, "cambio-test", logs[0].UserAgent)

	logs, err = audit.ListAuditLogs(context.Background(), adminID, domain.AuditFilter{ResourceType: domain.ResourceTypeLimit, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, customerA, logs[0].ResourceID)
}

func TestAuditUseCase_ListAuditLogsRejects(t *testing.T) {
	f := newFixture(t, nil)
	audit := usecase.NewAuditUseCase(f.auditRepo, allowAdmins(gomock.NewController(t)))
	ctx := context.Background()

	_, err := audit.ListAuditLogs(ctx, operatorID, domain.AuditFilter{})
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = audit.ListAuditLogs(ctx, adminID, domain.AuditFilter{StartDate: &start, EndDate: &end})
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)
}
