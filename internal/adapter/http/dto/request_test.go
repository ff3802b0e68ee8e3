package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

func TestValidate(t *testing.T) {
	name := "Ana"
	badEmail := "not-an-email"

	tests := []struct {
		name    string
		payload any
		field   string
	}{
		{
			name:    "valid operation",
			payload: &OperationRequest{CustomerID: "c1", FromCurrency: "usd", ToCurrency: "BRL", Amount: "10.50"},
		},
		{
			name:    "missing customer",
			payload: &OperationRequest{FromCurrency: "USD", ToCurrency: "BRL", Amount: "10"},
			field:   "customer_id",
		},
		{
			name:    "zero amount",
			payload: &OperationRequest{CustomerID: "c1", FromCurrency: "USD", ToCurrency: "BRL", Amount: "0"},
			field:   "amount",
		},
		{
			name:    "garbage amount",
			payload: &OperationRequest{CustomerID: "c1", FromCurrency: "USD", ToCurrency: "BRL", Amount: "ten"},
			field:   "amount",
		},
		{
			name:    "bad currency code",
			payload: &OperationRequest{CustomerID: "c1", FromCurrency: "US", ToCurrency: "BRL", Amount: "1"},
			field:   "from_currency",
		},
		{
			name:    "zero balance is allowed",
			payload: &SetBalanceRequest{Amount: "0"},
		},
		{
			name:    "negative balance",
			payload: &SetBalanceRequest{Amount: "-1"},
			field:   "amount",
		},
		{
			name: "valid cpf",
			payload: &CreateCustomerRequest{
				Name: "Ana", Document: "529.982.247-25", DocumentType: "cpf",
				Phone: "(11)98765-4321", Email: "ana@example.com",
			},
		},
		{
			name: "cpf check digits",
			payload: &CreateCustomerRequest{
				Name: "Ana", Document: "52998224726", DocumentType: "CPF",
				Phone: "(11)98765-4321", Email: "ana@example.com",
			},
			field: "document",
		},
		{
			name: "valid cnpj",
			payload: &CreateCustomerRequest{
				Name: "Acme", Document: "11.222.333/0001-81", DocumentType: "CNPJ",
				Phone: "(21)3456-7890", Email: "acme@example.com", IsCompany: true,
			},
		},
		{
			name:    "partial update",
			payload: &UpdateCustomerRequest{Name: &name},
		},
		{
			name:    "partial update with bad email",
			payload: &UpdateCustomerRequest{Email: &badEmail},
			field:   "email",
		},
		{
			name:    "unknown role",
			payload: &CreateUserRequest{Email: "a@b.co", Name: "A", Password: "Secret123!", Role: "master"},
			field:   "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected payload to be valid, got %v", err)
				}
				return
			}

			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), "'"+tt.field+"'") {
				t.Fatalf("expected error to name %q, got %v", tt.field, err)
			}
		})
	}
}

func TestOperationRequest_ToInputs(t *testing.T) {
	req := &OperationRequest{CustomerID: "c1", FromCurrency: "USD", ToCurrency: "BRL", Amount: "12.34"}

	create, err := req.ToCreateInput("op-1")
	if err != nil {
		t.Fatalf("ToCreateInput() error = %v", err)
	}
	if create.CustomerID != "c1" || create.FromCode != "USD" || create.ToCode != "BRL" || create.ActorID != "op-1" {
		t.Fatalf("unexpected create input: %+v", create)
	}
	if !create.Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("expected amount 12.34, got %s", create.Amount)
	}

	update, err := req.ToUpdateInput("ex-1", "op-1")
	if err != nil {
		t.Fatalf("ToUpdateInput() error = %v", err)
	}
	if update.ID != "ex-1" || update.ActorID != "op-1" {
		t.Fatalf("unexpected update input: %+v", update)
	}

	req.Amount = "abc"
	if _, err := req.ToCreateInput("op-1"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for bad amount, got %v", err)
	}
}

func TestCreateCustomerRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateCustomerRequest{
		Name:         "Ana",
		Document:     "52998224725",
		DocumentType: "cpf",
		Phone:        "(11)98765-4321",
		Email:        "ana@example.com",
	}

	got := req.ToUseCaseInput("admin")
	want := usecase.CreateCustomerInput{
		Name:         "Ana",
		Document:     "52998224725",
		DocumentType: domain.DocumentTypeCPF,
		Phone:        "(11)98765-4321",
		Email:        "ana@example.com",
		ActorID:      "admin",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestLimitRequests_ToUseCaseInput(t *testing.T) {
	create, err := (&CreateLimitRequest{CustomerID: "c1", Amount: "100"}).ToUseCaseInput("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if create.CustomerID != "c1" || !create.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected create limit input: %+v", create)
	}

	set, err := (&SetBalanceRequest{Amount: "0"}).ToUseCaseInput("c1", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.CustomerID != "c1" || !set.Amount.IsZero() {
		t.Fatalf("unexpected set balance input: %+v", set)
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Amount":       "amount",
		"CustomerID":   "customer_id",
		"FromCurrency": "from_currency",
		"DocumentType": "document_type",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
