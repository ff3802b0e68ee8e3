package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
	"github.com/iho/cambio/internal/usecase"
)

const operationColumns = `id, customer_id, from_currency_id, to_currency_id, from_code, to_code,
amount, exchange_rate, final_amount, status, created_by, created_at, updated_at`

// sortColumns maps domain sort fields onto indexed columns.
var sortColumns = map[string]string{
	domain.SortByID:          "id",
	domain.SortByAmount:      "amount",
	domain.SortByFinalAmount: "final_amount",
	domain.SortByStatus:      "status",
	domain.SortByCreatedAt:   "created_at",
}

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(db generated.DBTX) *OperationRepository {
	return &OperationRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts an operation within a transaction.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error {
	return txQueries(tx).CreateOperation(ctx, generated.CreateOperationParams{
		ID:             op.ID,
		CustomerID:     op.CustomerID,
		FromCurrencyID: op.FromCurrencyID,
		ToCurrencyID:   op.ToCurrencyID,
		FromCode:       op.FromCode,
		ToCode:         op.ToCode,
		Amount:         decimalToNumeric(op.Amount),
		ExchangeRate:   decimalToNumeric(op.ExchangeRate),
		FinalAmount:    decimalToNumeric(op.FinalAmount),
		Status:         string(op.Status),
		CreatedBy:      op.CreatedBy,
		CreatedAt:      timeToPgTimestamptz(op.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(op.UpdatedAt),
	})
}

// GetByID retrieves an operation by ID.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*domain.ExchangeOperation, error) {
	row, err := r.queries.GetOperationByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return rowToOperation(row), nil
}

// GetByIDForUpdate retrieves an operation by ID with a FOR UPDATE lock.
func (r *OperationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExchangeOperation, error) {
	row, err := txQueries(tx).GetOperationByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	return rowToOperation(row), nil
}

// Update overwrites the pricing snapshot and status of an operation.
func (r *OperationRepository) Update(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error {
	n, err := txQueries(tx).UpdateOperation(ctx, generated.UpdateOperationParams{
		ID:             op.ID,
		CustomerID:     op.CustomerID,
		FromCurrencyID: op.FromCurrencyID,
		ToCurrencyID:   op.ToCurrencyID,
		FromCode:       op.FromCode,
		ToCode:         op.ToCode,
		Amount:         decimalToNumeric(op.Amount),
		ExchangeRate:   decimalToNumeric(op.ExchangeRate),
		FinalAmount:    decimalToNumeric(op.FinalAmount),
		Status:         string(op.Status),
		UpdatedAt:      timeToPgTimestamptz(op.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// CountByCustomer counts operations of any status owned by a customer.
func (r *OperationRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	return r.queries.CountOperationsByCustomer(ctx, customerID)
}

// Search returns one page of operations matching a normalized filter along
// with the count and FinalAmount sum over every match.
func (r *OperationRepository) Search(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	where, args := operationWhere(filter)

	var (
		total  int64
		amount pgtype.Numeric
	)
	totalsQuery := `SELECT COUNT(*), COALESCE(SUM(final_amount), 0) FROM exchange_operations` + where
	if err := r.db.QueryRow(ctx, totalsQuery, args...).Scan(&total, &amount); err != nil {
		return nil, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM exchange_operations%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		operationColumns, where, column, direction, direction, len(args)+1, len(args)+2,
	)
	pageArgs := append(args, filter.PageSize, filter.Offset())

	rows, err := r.db.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := make([]*domain.ExchangeOperation, 0, filter.PageSize)
	for rows.Next() {
		var row generated.ExchangeOperation
		if err := rows.Scan(
			&row.ID,
			&row.CustomerID,
			&row.FromCurrencyID,
			&row.ToCurrencyID,
			&row.FromCode,
			&row.ToCode,
			&row.Amount,
			&row.ExchangeRate,
			&row.FinalAmount,
			&row.Status,
			&row.CreatedBy,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ops = append(ops, rowToOperation(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.NewOperationPage(ops, filter, total, numericToDecimal(amount)), nil
}

func operationWhere(filter domain.OperationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.StartDate != nil {
		add("created_at >= $%d", timeToPgTimestamptz(*filter.StartDate))
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", timeToPgTimestamptz(*filter.EndDate))
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func rowToOperation(row generated.ExchangeOperation) *domain.ExchangeOperation {
	return &domain.ExchangeOperation{
		ID:             row.ID,
		CustomerID:     row.CustomerID,
		FromCurrencyID: row.FromCurrencyID,
		ToCurrencyID:   row.ToCurrencyID,
		FromCode:       strings.TrimSpace(row.FromCode),
		ToCode:         strings.TrimSpace(row.ToCode),
		Amount:         numericToDecimal(row.Amount),
		ExchangeRate:   numericToDecimal(row.ExchangeRate),
		FinalAmount:    numericToDecimal(row.FinalAmount),
		Status:         domain.OperationStatus(row.Status),
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
