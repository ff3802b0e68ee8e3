package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
	"github.com/iho/cambio/internal/usecase"
)

const insertAuditLog = `
	INSERT INTO audit_logs (
		id, user_id, action, resource_type, resource_id,
		ip_address, user_agent, request_id,
		before_state, after_state, status, error_message, created_at
	) VALUES (
		@id, @user_id, @action, @resource_type, @resource_id,
		@ip_address, @user_agent, @request_id,
		@before_state, @after_state, @status, @error_message, @created_at
	)
`

// Empty filters collapse to true, so one statement serves every combination.
const listAuditLogs = `
	SELECT id, user_id, action, resource_type, resource_id,
	       ip_address, user_agent, request_id,
	       before_state, after_state, status, error_message, created_at
	FROM audit_logs
	WHERE (@user_id::text = '' OR user_id = @user_id)
	  AND (@action::text = '' OR action = @action)
	  AND (@resource_type::text = '' OR resource_type = @resource_type)
	  AND (@resource_id::text = '' OR resource_id = @resource_id)
	  AND (@start_date::timestamptz IS NULL OR created_at >= @start_date)
	  AND (@end_date::timestamptz IS NULL OR created_at <= @end_date)
	ORDER BY created_at DESC, id DESC
	LIMIT @limit OFFSET @offset
`

// AuditRepository stores the audit trail.
type AuditRepository struct {
	db generated.DBTX
}

func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create writes an entry outside any transaction.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.insert(ctx, r.db, entry)
}

// CreateTx writes an entry inside tx so it commits with the change it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.AuditLog) error {
	return r.insert(ctx, tx.(*Tx).PgxTx(), entry)
}

func (r *AuditRepository) insert(ctx context.Context, db generated.DBTX, entry *domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	before, err := encodeState(entry.BeforeState)
	if err != nil {
		return fmt.Errorf("encode before state: %w", err)
	}
	after, err := encodeState(entry.AfterState)
	if err != nil {
		return fmt.Errorf("encode after state: %w", err)
	}

	_, err = db.Exec(ctx, insertAuditLog, pgx.NamedArgs{
		"id":            entry.ID,
		"user_id":       entry.UserID,
		"action":        entry.Action,
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
		"ip_address":    entry.IPAddress,
		"user_agent":    entry.UserAgent,
		"request_id":    entry.RequestID,
		"before_state":  before,
		"after_state":   after,
		"status":        entry.Status,
		"error_message": entry.ErrorMessage,
		"created_at":    entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert audit %s on %s/%s: %w", entry.Action, entry.ResourceType, entry.ResourceID, err)
	}
	return nil
}

// List returns entries newest first. Callers normalize the filter.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, listAuditLogs, pgx.NamedArgs{
		"user_id":       filter.UserID,
		"action":        filter.Action,
		"resource_type": filter.ResourceType,
		"resource_id":   filter.ResourceID,
		"start_date":    filter.StartDate,
		"end_date":      filter.EndDate,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			entry         domain.AuditLog
			before, after []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.RequestID,
			&before,
			&after,
			&entry.Status,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}

		if entry.BeforeState, err = decodeState(before); err != nil {
			return nil, fmt.Errorf("decode before state of %s: %w", entry.ID, err)
		}
		if entry.AfterState, err = decodeState(after); err != nil {
			return nil, fmt.Errorf("decode after state of %s: %w", entry.ID, err)
		}

		logs = append(logs, &entry)
	}

	return logs, rows.Err()
}

func encodeState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func decodeState(raw []byte) (domain.JSON, error) {
	if raw == nil {
		return nil, nil
	}
	var state domain.JSON
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return state, nil
}
