package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/domain"
)

var auditColumns = []string{
	"id", "user_id", "action", "resource_type", "resource_id", "ip_address", "user_agent", "request_id",
	"before_state", "after_state", "status", "error_message", "created_at",
}

func TestAuditRepositoryCreateTx(t *testing.T) {
	mock := newMockPool(t)
	tx := beginMockTx(t, mock)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	entry := &domain.AuditLog{
		UserID:       "operator-1",
		Action:       string(domain.AuditActionOperationCreate),
		ResourceType: domain.ResourceTypeOperation,
		ResourceID:   "op-1",
		RequestID:    "req-7",
		AfterState:   domain.JSON{"status": "completed"},
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    testTime,
	}

	require.NoError(t, NewAuditRepository(mock).CreateTx(context.Background(), tx, entry))
	require.NoError(t, tx.Commit(context.Background()))

	assert.NotEmpty(t, entry.ID, "an id is assigned when missing")
	assertExpectations(t, mock)
}

func TestAuditRepositoryCreateError(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("disk full"))

	err := NewAuditRepository(mock).Create(context.Background(), &domain.AuditLog{
		ID:           "audit-1",
		Action:       string(domain.AuditActionCustomerDelete),
		ResourceType: domain.ResourceTypeCustomer,
		ResourceID:   "cust-9",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer.delete on customer/cust-9")
	assertExpectations(t, mock)
}

func TestAuditRepositoryList(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WillReturnRows(pgxmock.NewRows(auditColumns).
			AddRow(
				"audit-2", "admin-1", "limit.set_balance", "limit", "cust-a", "10.0.0.1", "curl/8", "req-2",
				[]byte(`{"balance":"80"}`), []byte(`{"balance":"500"}`), "success", "", testTime,
			).
			AddRow(
				"audit-1", "admin-1", "limit.create", "limit", "cust-a", "", "", "",
				nil, []byte(`{"balance":"100"}`), "success", "", testTime,
			))

	logs, err := NewAuditRepository(mock).List(context.Background(), domain.AuditFilter{
		ResourceType: domain.ResourceTypeLimit,
		ResourceID:   "cust-a",
		Limit:        5,
	})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "80", logs[0].BeforeState["balance"])
	assert.Equal(t, "500", logs[0].AfterState["balance"])
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
	assert.Nil(t, logs[1].BeforeState)
	assertExpectations(t, mock)
}

func TestAuditRepositoryListCorruptState(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery("FROM audit_logs").
		WillReturnRows(pgxmock.NewRows(auditColumns).AddRow(
			"audit-3", "admin-1", "currency.update_rate", "currency", "USD", "", "", "",
			[]byte(`{"rate":`), nil, "success", "", testTime,
		))

	_, err := NewAuditRepository(mock).List(context.Background(), domain.AuditFilter{Limit: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode before state of audit-3")
}
