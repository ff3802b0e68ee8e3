package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
)

// LimitUseCase is the limit ledger: the only way a customer balance changes.
type LimitUseCase struct {
	txManager    TransactionManager
	limitRepo    LimitRepository
	customerRepo CustomerRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	authz        Authorizer
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewLimitUseCase creates a new LimitUseCase.
func NewLimitUseCase(
	txManager TransactionManager,
	limitRepo LimitRepository,
	customerRepo CustomerRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	authz Authorizer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LimitUseCase {
	return &LimitUseCase{
		txManager:    txManager,
		limitRepo:    limitRepo,
		customerRepo: customerRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		authz:        authz,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// GetLimit retrieves the limit of a customer.
func (uc *LimitUseCase) GetLimit(ctx context.Context, customerID string) (*domain.CustomerLimit, error) {
	return uc.limitRepo.GetByCustomerID(ctx, customerID)
}

// HasLimit reports whether the customer has a limit record.
func (uc *LimitUseCase) HasLimit(ctx context.Context, customerID string) (bool, error) {
	_, err := uc.limitRepo.GetByCustomerID(ctx, customerID)
	if errors.Is(err, domain.ErrLimitNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SufficientBalance reports whether the customer can absorb a debit of amount.
// A customer without a limit has no balance.
func (uc *LimitUseCase) SufficientBalance(ctx context.Context, customerID string, amount decimal.Decimal) (bool, error) {
	limit, err := uc.limitRepo.GetByCustomerID(ctx, customerID)
	if errors.Is(err, domain.ErrLimitNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return limit.Covers(amount), nil
}

// Debit subtracts amount from the customer's balance, failing with
// ErrInsufficientLimit when the balance cannot cover it.
func (uc *LimitUseCase) Debit(ctx context.Context, customerID string, amount decimal.Decimal, actorID string) (*domain.CustomerLimit, error) {
	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.CustomerLimit, error) {
		return uc.debitTx(txCtx, tx, customerID, amount, actorID, time.Now().UTC())
	})
}

// Credit adds amount to the customer's balance.
func (uc *LimitUseCase) Credit(ctx context.Context, customerID string, amount decimal.Decimal, actorID string) (*domain.CustomerLimit, error) {
	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.CustomerLimit, error) {
		return uc.creditTx(txCtx, tx, customerID, amount, actorID, time.Now().UTC())
	})
}

// CreateLimitInput represents input for granting a limit.
type CreateLimitInput struct {
	CustomerID string
	Amount     decimal.Decimal
	ActorID    string
}

// Create grants a customer its limit. A customer holds at most one.
func (uc *LimitUseCase) Create(ctx context.Context, input CreateLimitInput) (*domain.CustomerLimit, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateBalance(input.Amount); err != nil {
		return nil, err
	}

	if _, err := uc.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.CustomerLimit, error) {
		existing, err := uc.limitRepo.GetByCustomerIDsForUpdate(txCtx, tx, []string{input.CustomerID})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, domain.ErrLimitAlreadyExists
		}

		now := time.Now().UTC()
		limit := &domain.CustomerLimit{
			CustomerID:    input.CustomerID,
			Balance:       input.Amount,
			GrantedAmount: input.Amount,
			CreatedBy:     input.ActorID,
			CreatedAt:     now,
		}

		if err := uc.limitRepo.Create(txCtx, tx, limit); err != nil {
			return nil, err
		}

		if err := uc.record(txCtx, tx, domain.EventTypeLimitCreated, domain.AuditActionLimitCreate, input.ActorID, nil, limit, now); err != nil {
			return nil, err
		}

		return limit, nil
	})
}

// SetBalanceInput represents input for overriding a balance.
type SetBalanceInput struct {
	CustomerID string
	Amount     decimal.Decimal
	ActorID    string
}

// SetBalance overrides the whole balance. Amounts reserved by live operations
// stay reserved, so the granted amount becomes Amount plus that exposure.
func (uc *LimitUseCase) SetBalance(ctx context.Context, input SetBalanceInput) (*domain.CustomerLimit, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateBalance(input.Amount); err != nil {
		return nil, err
	}

	return uc.inTx(ctx, func(txCtx context.Context, tx Transaction) (*domain.CustomerLimit, error) {
		locked, err := uc.lockLimits(txCtx, tx, input.CustomerID)
		if err != nil {
			return nil, err
		}

		current, ok := locked[input.CustomerID]
		if !ok {
			return nil, domain.ErrLimitNotFound
		}
		before := *current

		now := time.Now().UTC()
		granted := input.Amount.Add(current.Exposure())

		updated, err := uc.limitRepo.SetBalance(txCtx, tx, input.CustomerID, input.Amount, granted, input.ActorID, now)
		if err != nil {
			return nil, err
		}

		if err := uc.record(txCtx, tx, domain.EventTypeLimitBalanceSet, domain.AuditActionLimitSetBalance, input.ActorID, &before, updated, now); err != nil {
			return nil, err
		}

		return updated, nil
	})
}

func (uc *LimitUseCase) inTx(
	ctx context.Context,
	fn func(txCtx context.Context, tx Transaction) (*domain.CustomerLimit, error),
) (*domain.CustomerLimit, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	limit, err := fn(txCtx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return limit, nil
}

// lockLimits locks the limit rows of the given customers in sorted order and
// returns the ones that exist, keyed by customer ID.
func (uc *LimitUseCase) lockLimits(ctx context.Context, tx Transaction, customerIDs ...string) (map[string]*domain.CustomerLimit, error) {
	seen := make(map[string]bool, len(customerIDs))
	ids := make([]string, 0, len(customerIDs))
	for _, id := range customerIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	limits, err := uc.limitRepo.GetByCustomerIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	m := make(map[string]*domain.CustomerLimit, len(limits))
	for _, l := range limits {
		m[l.CustomerID] = l
	}
	return m, nil
}

func (uc *LimitUseCase) sufficientBalanceTx(ctx context.Context, tx Transaction, customerID string, amount decimal.Decimal) (bool, error) {
	locked, err := uc.lockLimits(ctx, tx, customerID)
	if err != nil {
		return false, err
	}

	limit, ok := locked[customerID]
	if !ok {
		return false, nil
	}
	return limit.Covers(amount), nil
}

func (uc *LimitUseCase) debitTx(ctx context.Context, tx Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	limit, err := uc.limitRepo.Debit(ctx, tx, customerID, amount, actorID, at)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LimitMutations.WithLabelValues(string(domain.DirectionDebit)).Inc()
	}

	return limit, nil
}

func (uc *LimitUseCase) creditTx(ctx context.Context, tx Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	limit, err := uc.limitRepo.Credit(ctx, tx, customerID, amount, actorID, at)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LimitMutations.WithLabelValues(string(domain.DirectionCredit)).Inc()
	}

	return limit, nil
}

// record writes the outbox event and audit row of an administrative limit change.
func (uc *LimitUseCase) record(
	ctx context.Context,
	tx Transaction,
	eventType string,
	action domain.AuditAction,
	actorID string,
	before, after *domain.CustomerLimit,
	now time.Time,
) error {
	event := domain.NewLimitEvent(uc.idGen.Generate(), eventType, after, now)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if uc.auditRepo == nil {
		return nil
	}

	var beforeState domain.JSON
	if before != nil {
		beforeState = domain.MarshalState(before)
	}

	log := newAuditLog(ctx, uc.idGen.Generate(), actorID, action, domain.ResourceTypeLimit, after.CustomerID, beforeState, domain.MarshalState(after))
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}

	return nil
}
