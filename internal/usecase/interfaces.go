package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
)

// CurrencyRepository defines data access for the currency registry.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *domain.Currency) error
	GetByID(ctx context.Context, id string) (*domain.Currency, error)
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	UpdateRate(ctx context.Context, code string, rate decimal.Decimal, updatedAt time.Time) (*domain.Currency, error)
	List(ctx context.Context) ([]*domain.Currency, error)
}

// CustomerRepository defines data access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByDocument(ctx context.Context, document string) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error)
}

// LimitRepository defines data access for customer limits. Debit and Credit
// are single conditional statements; Debit never drives a balance negative.
type LimitRepository interface {
	Create(ctx context.Context, tx Transaction, limit *domain.CustomerLimit) error
	GetByCustomerID(ctx context.Context, customerID string) (*domain.CustomerLimit, error)
	GetByCustomerIDsForUpdate(ctx context.Context, tx Transaction, customerIDs []string) ([]*domain.CustomerLimit, error)
	Debit(ctx context.Context, tx Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error)
	Credit(ctx context.Context, tx Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error)
	SetBalance(ctx context.Context, tx Transaction, customerID string, balance, granted decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error)
}

// OperationRepository defines data access for exchange operations.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.ExchangeOperation) error
	GetByID(ctx context.Context, id string) (*domain.ExchangeOperation, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ExchangeOperation, error)
	Update(ctx context.Context, tx Transaction, op *domain.ExchangeOperation) error
	Search(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error)
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	LimitReconciliation(ctx context.Context) ([]*domain.LimitReconciliation, error)
}

// StatsRepository aggregates dashboard figures.
type StatsRepository interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
