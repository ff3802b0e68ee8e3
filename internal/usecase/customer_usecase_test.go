package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

func validCustomerInput() usecase.CreateCustomerInput {
	return usecase.CreateCustomerInput{
		Name:         "  Carla Dias ",
		Document:     "168.995.350-09",
		DocumentType: "cpf",
		Phone:        "(11)99876-5432",
		Email:        "Carla@Example.com",
		ActorID:      adminID,
	}
}

func TestCustomerUseCase_CreateCustomer(t *testing.T) {
	f := newFixture(t, nil)

	customer, err := f.customers.CreateCustomer(context.Background(), validCustomerInput())
	require.NoError(t, err)
	assert.Equal(t, "Carla Dias", customer.Name)
	assert.Equal(t, "16899535009", customer.Document)
	assert.Equal(t, domain.DocumentTypeCPF, customer.DocumentType)
	assert.Equal(t, "carla@example.com", customer.Email)
	assert.Equal(t, adminID, customer.CreatedBy)

	stored, err := f.customers.GetCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Document, stored.Document)
}

func TestCustomerUseCase_AuditFailureIsLogged(t *testing.T) {
	f := newFixture(t, nil)
	f.auditRepo.CreateErr = errors.New("audit_logs: disk full")

	customer, err := f.customers.CreateCustomer(context.Background(), validCustomerInput())
	require.NoError(t, err, "a lost audit row does not undo the registration")

	assert.Contains(t, f.logs.String(), "audit write failed")
	assert.Contains(t, f.logs.String(), "audit_logs: disk full")
	assert.Contains(t, f.logs.String(), customer.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.AuditLogsCreated.WithLabelValues(string(domain.AuditActionCustomerCreate), string(domain.AuditStatusError)),
	))
	assert.Empty(t, f.auditRepo.Logs())
}

func TestCustomerUseCase_CreateCustomer_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*usecase.CreateCustomerInput)
		wantErr error
	}{
		{name: "not privileged", mutate: func(in *usecase.CreateCustomerInput) { in.ActorID = operatorID }, wantErr: domain.ErrPermissionDenied},
		{name: "empty name", mutate: func(in *usecase.CreateCustomerInput) { in.Name = " " }, wantErr: domain.ErrInvalidCustomerName},
		{name: "bad check digits", mutate: func(in *usecase.CreateCustomerInput) { in.Document = "16899535008" }, wantErr: domain.ErrInvalidDocument},
		{name: "company with CPF", mutate: func(in *usecase.CreateCustomerInput) { in.IsCompany = true }, wantErr: domain.ErrDocumentTypeMismatch},
		{name: "bad phone", mutate: func(in *usecase.CreateCustomerInput) { in.Phone = "11998765432" }, wantErr: domain.ErrInvalidPhone},
		{name: "bad email", mutate: func(in *usecase.CreateCustomerInput) { in.Email = "carla" }, wantErr: domain.ErrInvalidEmail},
		{name: "duplicate document", mutate: func(in *usecase.CreateCustomerInput) { in.Document = "529.982.247-25" }, wantErr: domain.ErrDocumentAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			input := validCustomerInput()
			tt.mutate(&input)

			_, err := f.customers.CreateCustomer(context.Background(), input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCustomerUseCase_UpdateCustomer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	phone := "(11)90000-1111"
	updated, err := f.customers.UpdateCustomer(ctx, usecase.UpdateCustomerInput{ID: customerA, Phone: &phone, ActorID: adminID})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Ana Souza", updated.Name)

	bad := "not-an-email"
	_, err = f.customers.UpdateCustomer(ctx, usecase.UpdateCustomerInput{ID: customerA, Email: &bad, ActorID: adminID})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.customers.UpdateCustomer(ctx, usecase.UpdateCustomerInput{ID: "nobody", Phone: &phone, ActorID: adminID})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	logs, err := f.auditRepo.List(ctx, domain.AuditFilter{ResourceType: domain.ResourceTypeCustomer, ResourceID: customerA})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "(11)98765-4321", logs[0].BeforeState["Phone"])
	assert.Equal(t, phone, logs[0].AfterState["Phone"])
}

func TestCustomerUseCase_DeleteCustomer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	createUSD(t, f, customerA, "10", operatorID)

	err := f.customers.DeleteCustomer(ctx, customerA, adminID)
	require.ErrorIs(t, err, domain.ErrCustomerHasOperations)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	err = f.customers.DeleteCustomer(ctx, customerNL, operatorID)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, f.customers.DeleteCustomer(ctx, customerNL, adminID))
	_, err = f.customers.GetCustomer(ctx, customerNL)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCustomerUseCase_ListCustomers(t *testing.T) {
	f := newFixture(t, nil)

	customers, err := f.customers.ListCustomers(context.Background(), domain.CustomerFilter{Search: " acme "})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customerB, customers[0].ID)

	all, err := f.customers.ListCustomers(context.Background(), domain.CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
