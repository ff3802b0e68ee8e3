package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: '%s' is not a decimal number", ErrValidationFailed, field)
	}
	return d, nil
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{Email: r.Email, Password: r.Password}
}

// CreateUserRequest represents a request to create a back-office user.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin operator viewer"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     domain.Role(r.Role),
	}
}

// UpdateUserRequest changes the fields that are present.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin operator viewer"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateUserRequest) ToUseCaseInput(id, actorID string) usecase.UpdateUserInput {
	input := usecase.UpdateUserInput{
		ID:       id,
		ActorID:  actorID,
		Name:     r.Name,
		Active:   r.Active,
		Password: r.Password,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		input.Role = &role
	}
	return input
}

// CreateCurrencyRequest represents a request to register a currency.
type CreateCurrencyRequest struct {
	Code string `json:"code" validate:"required,currency_code"`
	Name string `json:"name" validate:"required,max=100"`
	Rate string `json:"rate" validate:"required,positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCurrencyRequest) ToUseCaseInput(actorID string) (usecase.CreateCurrencyInput, error) {
	rate, err := parseAmount("rate", r.Rate)
	if err != nil {
		return usecase.CreateCurrencyInput{}, err
	}

	return usecase.CreateCurrencyInput{
		Code:    r.Code,
		Name:    r.Name,
		Rate:    rate,
		ActorID: actorID,
	}, nil
}

// UpdateRateRequest represents a request to change a currency rate.
type UpdateRateRequest struct {
	Rate string `json:"rate" validate:"required,positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateRateRequest) ToUseCaseInput(code, actorID string) (usecase.UpdateRateInput, error) {
	rate, err := parseAmount("rate", r.Rate)
	if err != nil {
		return usecase.UpdateRateInput{}, err
	}

	return usecase.UpdateRateInput{Code: code, Rate: rate, ActorID: actorID}, nil
}

// CreateCustomerRequest represents a request to register a customer.
type CreateCustomerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Document     string `json:"document" validate:"required,document"`
	DocumentType string `json:"document_type" validate:"required,oneof=CPF CNPJ cpf cnpj"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	IsCompany    bool   `json:"is_company"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCustomerRequest) ToUseCaseInput(actorID string) usecase.CreateCustomerInput {
	return usecase.CreateCustomerInput{
		Name:         r.Name,
		Document:     r.Document,
		DocumentType: domain.DocumentType(strings.ToUpper(r.DocumentType)),
		Phone:        r.Phone,
		Email:        r.Email,
		IsCompany:    r.IsCompany,
		ActorID:      actorID,
	}
}

// UpdateCustomerRequest represents a partial update of a customer's contact details.
type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitnil,min=1,max=200"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitnil,email"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateCustomerRequest) ToUseCaseInput(id, actorID string) usecase.UpdateCustomerInput {
	return usecase.UpdateCustomerInput{
		ID:      id,
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		ActorID: actorID,
	}
}

// CreateLimitRequest represents a request to grant a customer limit.
type CreateLimitRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	Amount     string `json:"amount" validate:"required,positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLimitRequest) ToUseCaseInput(actorID string) (usecase.CreateLimitInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateLimitInput{}, err
	}

	return usecase.CreateLimitInput{CustomerID: r.CustomerID, Amount: amount, ActorID: actorID}, nil
}

// SetBalanceRequest overrides the balance of a limit.
type SetBalanceRequest struct {
	Amount string `json:"amount" validate:"required,nonnegative_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *SetBalanceRequest) ToUseCaseInput(customerID, actorID string) (usecase.SetBalanceInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.SetBalanceInput{}, err
	}

	return usecase.SetBalanceInput{CustomerID: customerID, Amount: amount, ActorID: actorID}, nil
}

// OperationRequest is the body of both create and update operation calls.
type OperationRequest struct {
	CustomerID   string `json:"customer_id" validate:"required"`
	FromCurrency string `json:"from_currency" validate:"required,currency_code"`
	ToCurrency   string `json:"to_currency" validate:"required,currency_code"`
	Amount       string `json:"amount" validate:"required,positive_amount"`
}

// ToCreateInput converts to use case input.
func (r *OperationRequest) ToCreateInput(actorID string) (usecase.CreateOperationInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.CreateOperationInput{}, err
	}

	return usecase.CreateOperationInput{
		CustomerID: r.CustomerID,
		FromCode:   r.FromCurrency,
		ToCode:     r.ToCurrency,
		Amount:     amount,
		ActorID:    actorID,
	}, nil
}

// ToUpdateInput converts to use case input.
func (r *OperationRequest) ToUpdateInput(id, actorID string) (usecase.UpdateOperationInput, error) {
	amount, err := parseAmount("amount", r.Amount)
	if err != nil {
		return usecase.UpdateOperationInput{}, err
	}

	return usecase.UpdateOperationInput{
		ID:         id,
		CustomerID: r.CustomerID,
		FromCode:   r.FromCurrency,
		ToCode:     r.ToCurrency,
		Amount:     amount,
		ActorID:    actorID,
	}, nil
}
