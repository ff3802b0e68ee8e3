package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
)

// OperationUseCase creates, edits and deletes exchange operations against
// customer limits.
type OperationUseCase struct {
	txManager     TransactionManager
	operationRepo OperationRepository
	customerRepo  CustomerRepository
	currencies    *CurrencyUseCase
	limits        *LimitUseCase
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	authz         Authorizer
	retrier       Retrier
	idGen         IDGenerator
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewOperationUseCase creates a new OperationUseCase. A nil retrier runs each
// transaction once.
func NewOperationUseCase(
	txManager TransactionManager,
	operationRepo OperationRepository,
	customerRepo CustomerRepository,
	currencies *CurrencyUseCase,
	limits *LimitUseCase,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	authz Authorizer,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *OperationUseCase {
	return &OperationUseCase{
		txManager:     txManager,
		operationRepo: operationRepo,
		customerRepo:  customerRepo,
		currencies:    currencies,
		limits:        limits,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		authz:         authz,
		retrier:       retrier,
		idGen:         idGen,
		metrics:       metrics,
		logger:        logger,
	}
}

// CreateOperationInput represents input for creating an exchange operation.
type CreateOperationInput struct {
	CustomerID string
	FromCode   string
	ToCode     string
	Amount     decimal.Decimal
	ActorID    string
}

// CreateOperation quotes the pair, reserves the final amount on the customer's
// limit and records the operation as completed.
func (uc *OperationUseCase) CreateOperation(ctx context.Context, input CreateOperationInput) (*domain.ExchangeOperation, error) {
	start := time.Now()

	op, err := uc.createOperation(ctx, input)
	uc.observe("create", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsCreated.Inc()
		uc.metrics.OperationAmount.Observe(op.FinalAmount.InexactFloat64())
	}

	return op, nil
}

func (uc *OperationUseCase) createOperation(ctx context.Context, input CreateOperationInput) (*domain.ExchangeOperation, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if _, err := uc.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	quote, err := uc.currencies.Quote(ctx, input.FromCode, input.ToCode)
	if err != nil {
		return nil, err
	}

	var op *domain.ExchangeOperation
	err = uc.retry(ctx, func() error {
		var txErr error
		op, txErr = uc.createTx(ctx, input, quote)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

func (uc *OperationUseCase) createTx(ctx context.Context, input CreateOperationInput, quote *QuoteResult) (*domain.ExchangeOperation, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Postgres keeps microseconds; the ticket hashes CreatedAt.
	now := time.Now().UTC().Truncate(time.Microsecond)

	op := &domain.ExchangeOperation{
		ID:        uc.idGen.Generate(),
		Status:    domain.OperationStatusCompleted,
		CreatedBy: input.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	op.Reprice(input.CustomerID, quote.From, quote.To, input.Amount, quote.Rate)

	ok, err := uc.limits.sufficientBalanceTx(txCtx, tx, op.CustomerID, op.FinalAmount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInsufficientLimit
	}

	if _, err := uc.limits.debitTx(txCtx, tx, op.CustomerID, op.FinalAmount, input.ActorID, now); err != nil {
		return nil, err
	}

	if err := uc.operationRepo.Create(txCtx, tx, op); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeOperationCreated, domain.AuditActionOperationCreate, input.ActorID, nil, op, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return op, nil
}

// UpdateOperationInput represents input for editing an exchange operation.
type UpdateOperationInput struct {
	ID         string
	CustomerID string
	FromCode   string
	ToCode     string
	Amount     decimal.Decimal
	ActorID    string
}

// UpdateOperation re-quotes an operation and moves its reservation. The old
// final amount is credited back before the new one is debited; if the new
// debit cannot happen the credit is undone with a compensating debit.
func (uc *OperationUseCase) UpdateOperation(ctx context.Context, input UpdateOperationInput) (*domain.ExchangeOperation, error) {
	start := time.Now()

	op, err := uc.updateOperation(ctx, input)
	uc.observe("update", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsModified.Inc()
	}

	return op, nil
}

func (uc *OperationUseCase) updateOperation(ctx context.Context, input UpdateOperationInput) (*domain.ExchangeOperation, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var op *domain.ExchangeOperation
	err := uc.retry(ctx, func() error {
		var txErr error
		op, txErr = uc.updateTx(ctx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

func (uc *OperationUseCase) updateTx(ctx context.Context, input UpdateOperationInput) (*domain.ExchangeOperation, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(txCtx, tx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := requireOwnerOrPrivileged(txCtx, uc.authz, op, input.ActorID); err != nil {
		return nil, err
	}

	if !op.Status.CanTransitionTo(domain.OperationStatusModified) {
		// reports deleted operations as ErrOperationDeleted
		return nil, op.TransitionTo(domain.OperationStatusModified)
	}

	if _, err := uc.customerRepo.GetByID(txCtx, input.CustomerID); err != nil {
		return nil, err
	}

	quote, err := uc.currencies.Quote(txCtx, input.FromCode, input.ToCode)
	if err != nil {
		return nil, err
	}
	newFinal := input.Amount.Mul(quote.Rate)

	if _, err := uc.limits.lockLimits(txCtx, tx, op.CustomerID, input.CustomerID); err != nil {
		return nil, err
	}

	before := *op
	now := time.Now().UTC().Truncate(time.Microsecond)

	if _, err := uc.limits.creditTx(txCtx, tx, op.CustomerID, op.FinalAmount, input.ActorID, now); err != nil {
		return nil, err
	}

	ok, err := uc.limits.sufficientBalanceTx(txCtx, tx, input.CustomerID, newFinal)
	if err != nil {
		return nil, uc.compensate(txCtx, tx, &before, input.ActorID, now, err)
	}
	if !ok {
		return nil, uc.compensate(txCtx, tx, &before, input.ActorID, now, domain.ErrInsufficientLimit)
	}

	if _, err := uc.limits.debitTx(txCtx, tx, input.CustomerID, newFinal, input.ActorID, now); err != nil {
		return nil, uc.compensate(txCtx, tx, &before, input.ActorID, now, err)
	}

	op.Reprice(input.CustomerID, quote.From, quote.To, input.Amount, quote.Rate)
	if err := op.TransitionTo(domain.OperationStatusModified); err != nil {
		return nil, err
	}
	op.UpdatedAt = now

	if err := uc.operationRepo.Update(txCtx, tx, op); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeOperationModified, domain.AuditActionOperationUpdate, input.ActorID, &before, op, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return op, nil
}

// compensate re-debits the amount credited back to the original customer of
// an operation when the new debit was refused, and returns cause. A failed
// compensation is not retried; it is returned as a *domain.CompensationError.
func (uc *OperationUseCase) compensate(
	ctx context.Context,
	tx Transaction,
	original *domain.ExchangeOperation,
	actorID string,
	now time.Time,
	cause error,
) error {
	// A failed statement aborts the transaction and the deferred rollback
	// undoes the credit, so only domain refusals need a re-debit.
	if domain.KindOf(cause) == domain.KindInternal {
		return cause
	}

	_, err := uc.limits.debitTx(ctx, tx, original.CustomerID, original.FinalAmount, actorID, now)
	if err == nil {
		return cause
	}

	uc.logger.Error().
		Err(err).
		AnErr("cause", cause).
		Str("operation_id", original.ID).
		Str("customer_id", original.CustomerID).
		Str("amount", original.FinalAmount.String()).
		Str("direction", string(domain.DirectionDebit)).
		Msg("limit compensation failed, manual reconciliation required")

	if uc.metrics != nil {
		uc.metrics.CompensationFailures.Inc()
	}

	return &domain.CompensationError{
		OperationID: original.ID,
		CustomerID:  original.CustomerID,
		Amount:      original.FinalAmount,
		Direction:   domain.DirectionDebit,
		Cause:       cause,
		Err:         err,
	}
}

// DeleteOperationInput represents input for deleting an exchange operation.
type DeleteOperationInput struct {
	ID      string
	ActorID string
}

// DeleteOperation releases the operation's reservation and marks it deleted.
// The record is kept. Deleting twice fails with ErrOperationAlreadyDeleted.
func (uc *OperationUseCase) DeleteOperation(ctx context.Context, input DeleteOperationInput) (*domain.ExchangeOperation, error) {
	start := time.Now()

	var op *domain.ExchangeOperation
	err := uc.retry(ctx, func() error {
		var txErr error
		op, txErr = uc.deleteTx(ctx, input)
		return txErr
	})
	uc.observe("delete", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.OperationsDeleted.Inc()
	}

	return op, nil
}

func (uc *OperationUseCase) deleteTx(ctx context.Context, input DeleteOperationInput) (*domain.ExchangeOperation, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(txCtx, tx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := requireOwnerOrPrivileged(txCtx, uc.authz, op, input.ActorID); err != nil {
		return nil, err
	}

	if op.Status == domain.OperationStatusDeleted {
		return nil, domain.ErrOperationAlreadyDeleted
	}

	before := *op
	now := time.Now().UTC().Truncate(time.Microsecond)

	if _, err := uc.limits.creditTx(txCtx, tx, op.CustomerID, op.FinalAmount, input.ActorID, now); err != nil {
		return nil, err
	}

	if err := op.TransitionTo(domain.OperationStatusDeleted); err != nil {
		return nil, err
	}
	op.UpdatedAt = now

	if err := uc.operationRepo.Update(txCtx, tx, op); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx, domain.EventTypeOperationDeleted, domain.AuditActionOperationDelete, input.ActorID, &before, op, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return op, nil
}

// GenerateTicket returns the receipt fingerprint of an operation.
func (uc *OperationUseCase) GenerateTicket(ctx context.Context, id, actorID string) (string, error) {
	op, err := uc.operationRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := requireOwnerOrPrivileged(ctx, uc.authz, op, actorID); err != nil {
		return "", err
	}

	return domain.GenerateTicket(op), nil
}

// GetOperation retrieves an operation by ID.
func (uc *OperationUseCase) GetOperation(ctx context.Context, id string) (*domain.ExchangeOperation, error) {
	return uc.operationRepo.GetByID(ctx, id)
}

// OperationEvents returns the outbox events recorded for an operation,
// newest first. It is empty when the outbox is disabled.
func (uc *OperationUseCase) OperationEvents(ctx context.Context, id string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if _, err := uc.operationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	if offset < 0 {
		offset = 0
	}

	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeOperation, id, limit, offset)
}

// SearchOperations returns one page of operations matching filter.
func (uc *OperationUseCase) SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	return uc.operationRepo.Search(ctx, filter)
}

func (uc *OperationUseCase) retry(ctx context.Context, fn func() error) error {
	if uc.retrier == nil {
		return fn()
	}
	return uc.retrier.Retry(ctx, fn)
}

// record writes the outbox event and audit row of an operation change.
func (uc *OperationUseCase) record(
	ctx context.Context,
	tx Transaction,
	eventType string,
	action domain.AuditAction,
	actorID string,
	before, after *domain.ExchangeOperation,
	now time.Time,
) error {
	event := domain.NewOperationEvent(uc.idGen.Generate(), eventType, after, now)
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

	log := newAuditLog(ctx, uc.idGen.Generate(), actorID, action, domain.ResourceTypeOperation, after.ID, beforeState, domain.MarshalState(after))
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}

	return nil
}

func (uc *OperationUseCase) observe(command string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.OperationDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.OperationErrors.WithLabelValues(command, string(domain.KindOf(err))).Inc()
	}
}
