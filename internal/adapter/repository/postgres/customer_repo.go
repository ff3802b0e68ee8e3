package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/postgres/generated"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	queries *generated.Queries
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db generated.DBTX) *CustomerRepository {
	return &CustomerRepository{queries: generated.New(db)}
}

// Create inserts a customer. The document is unique.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	err := r.queries.CreateCustomer(ctx, generated.CreateCustomerParams{
		ID:           customer.ID,
		Name:         customer.Name,
		Document:     customer.Document,
		DocumentType: string(customer.DocumentType),
		Phone:        customer.Phone,
		Email:        customer.Email,
		IsCompany:    customer.IsCompany,
		CreatedBy:    customer.CreatedBy,
		CreatedAt:    timeToPgTimestamptz(customer.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrDocumentAlreadyExists
	}

	return err
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row, err := r.queries.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, err
	}

	return rowToCustomer(row), nil
}

// GetByDocument retrieves a customer by CPF/CNPJ digits.
func (r *CustomerRepository) GetByDocument(ctx context.Context, document string) (*domain.Customer, error) {
	row, err := r.queries.GetCustomerByDocument(ctx, document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, err
	}

	return rowToCustomer(row), nil
}

// Update stores the mutable contact fields of a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	n, err := r.queries.UpdateCustomer(ctx, generated.UpdateCustomerParams{
		ID:    customer.ID,
		Name:  customer.Name,
		Phone: customer.Phone,
		Email: customer.Email,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// Delete removes a customer and, through the foreign key, its limit.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// List returns customers whose name, document or email matches filter.Search.
func (r *CustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx, generated.ListCustomersParams{
		Search: filter.Search,
		Limit:  int32(filter.Limit),
		Offset: int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	customers := make([]*domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, rowToCustomer(row))
	}

	return customers, nil
}

func rowToCustomer(row generated.Customer) *domain.Customer {
	return &domain.Customer{
		ID:           row.ID,
		Name:         row.Name,
		Document:     row.Document,
		DocumentType: domain.DocumentType(row.DocumentType),
		Phone:        row.Phone,
		Email:        row.Email,
		IsCompany:    row.IsCompany,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt.Time,
	}
}
