package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
)

// CustomerUseCase manages the customer registry.
type CustomerUseCase struct {
	customerRepo  CustomerRepository
	operationRepo OperationRepository
	auditRepo     AuditRepository
	authz         Authorizer
	idGen         IDGenerator
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewCustomerUseCase creates a new CustomerUseCase.
func NewCustomerUseCase(
	customerRepo CustomerRepository,
	operationRepo OperationRepository,
	auditRepo AuditRepository,
	authz Authorizer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *CustomerUseCase {
	return &CustomerUseCase{
		customerRepo:  customerRepo,
		operationRepo: operationRepo,
		auditRepo:     auditRepo,
		authz:         authz,
		idGen:         idGen,
		metrics:       metrics,
		logger:        logger,
	}
}

// CreateCustomerInput represents input for registering a customer.
type CreateCustomerInput struct {
	Name         string
	Document     string
	DocumentType domain.DocumentType
	Phone        string
	Email        string
	IsCompany    bool
	ActorID      string
}

// CreateCustomer registers a customer with a unique CPF or CNPJ.
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		ID:           uc.idGen.Generate(),
		Name:         strings.TrimSpace(input.Name),
		Document:     domain.NormalizeDocument(input.Document),
		DocumentType: domain.DocumentType(strings.ToUpper(string(input.DocumentType))),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		IsCompany:    input.IsCompany,
		CreatedBy:    input.ActorID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.customerRepo.GetByDocument(ctx, customer.Document); err == nil {
		return nil, domain.ErrDocumentAlreadyExists
	} else if !errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, err
	}

	if err := uc.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, domain.AuditActionCustomerCreate, customer.ID, nil, domain.MarshalState(customer))

	return customer, nil
}

// GetCustomer retrieves a customer by ID.
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return uc.customerRepo.GetByID(ctx, id)
}

// ListCustomers lists customers matching the filter's search term.
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	filter.Search = strings.TrimSpace(filter.Search)

	return uc.customerRepo.List(ctx, filter)
}

// UpdateCustomerInput represents input for editing a customer. Nil fields
// are left unchanged.
type UpdateCustomerInput struct {
	ID      string
	Name    *string
	Phone   *string
	Email   *string
	ActorID string
}

// UpdateCustomer edits the contact details of a customer.
func (uc *CustomerUseCase) UpdateCustomer(ctx context.Context, input UpdateCustomerInput) (*domain.Customer, error) {
	if err := requirePrivileged(ctx, uc.authz, input.ActorID); err != nil {
		return nil, err
	}

	customer, err := uc.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	before := domain.MarshalState(customer)

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		customer.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	uc.audit(ctx, input.ActorID, domain.AuditActionCustomerUpdate, customer.ID, before, domain.MarshalState(customer))

	return customer, nil
}

// DeleteCustomer removes a customer that never traded.
func (uc *CustomerUseCase) DeleteCustomer(ctx context.Context, id, actorID string) error {
	if err := requirePrivileged(ctx, uc.authz, actorID); err != nil {
		return err
	}

	customer, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := uc.operationRepo.CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCustomerHasOperations
	}

	if err := uc.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.audit(ctx, actorID, domain.AuditActionCustomerDelete, id, domain.MarshalState(customer), nil)

	return nil
}

func (uc *CustomerUseCase) audit(ctx context.Context, actorID string, action domain.AuditAction, id string, before, after domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	log := newAuditLog(ctx, uc.idGen.Generate(), actorID, action, domain.ResourceTypeCustomer, id, before, after)
	if err := uc.auditRepo.Create(ctx, log); err != nil {
		log.Status = string(domain.AuditStatusError)
		uc.logger.Error().Err(err).
			Str("action", log.Action).
			Str("customer_id", id).
			Str("actor_id", actorID).
			Msg("audit write failed")
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(log.Action, log.Status).Inc()
	}
}
