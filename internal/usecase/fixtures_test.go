package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/metrics"
	"github.com/iho/cambio/internal/usecase"
	"github.com/iho/cambio/internal/usecase/mocks"
)

const (
	adminID    = "admin-1"
	operatorID = "operator-1"
	strangerID = "operator-2"

	customerA  = "cust-a"
	customerB  = "cust-b"
	customerNL = "cust-no-limit"
)

// allowAdmins makes adminID the only privileged actor.
func allowAdmins(ctrl *gomock.Controller) *mocks.MockAuthorizer {
	authz := mocks.NewMockAuthorizer(ctrl)
	authz.EXPECT().
		IsPrivileged(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, actorID string) (bool, error) {
			return actorID == adminID, nil
		}).
		AnyTimes()
	return authz
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCurrencies() []*domain.Currency {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []*domain.Currency{
		{ID: "cur-brl", Code: "BRL", Name: "Real Brasileiro", RateToBase: dec("1"), LastUpdate: now},
		{ID: "cur-usd", Code: "USD", Name: "Dólar Americano", RateToBase: dec("5.00"), LastUpdate: now},
		{ID: "cur-eur", Code: "EUR", Name: "Euro", RateToBase: dec("5.5"), LastUpdate: now},
	}
}

func testCustomers() []*domain.Customer {
	return []*domain.Customer{
		{ID: customerA, Name: "Ana Souza", Document: "52998224725", DocumentType: domain.DocumentTypeCPF, Phone: "(11)98765-4321", Email: "ana@example.com"},
		{ID: customerB, Name: "Acme Ltda", Document: "11222333000181", DocumentType: domain.DocumentTypeCNPJ, Phone: "(21)3456-7890", Email: "acme@example.com", IsCompany: true},
		{ID: customerNL, Name: "Bruno Lima", Document: "39053344705", DocumentType: domain.DocumentTypeCPF, Phone: "(11)91234-5678", Email: "bruno@example.com"},
	}
}

func testLimits() []*domain.CustomerLimit {
	return []*domain.CustomerLimit{
		{CustomerID: customerA, Balance: dec("100"), GrantedAmount: dec("100"), CreatedBy: adminID},
		{CustomerID: customerB, Balance: dec("50"), GrantedAmount: dec("50"), CreatedBy: adminID},
	}
}

type fixture struct {
	currencyRepo  *mocks.MockCurrencyRepository
	customerRepo  *mocks.MockCustomerRepository
	limitRepo     *mocks.MockLimitRepository
	operationRepo *mocks.MockOperationRepository
	outboxRepo    *mocks.MockOutboxRepository
	auditRepo     *mocks.MockAuditRepository
	txManager     *mocks.MockTransactionManager
	metrics       *metrics.Metrics
	logs          *bytes.Buffer

	currencies *usecase.CurrencyUseCase
	customers  *usecase.CustomerUseCase
	limits     *usecase.LimitUseCase
	operations *usecase.OperationUseCase
	ledger     *usecase.ReconciliationUseCase
}

func newFixture(t *testing.T, retrier usecase.Retrier) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	authz := allowAdmins(ctrl)
	idGen := mocks.NewMockIDGenerator()

	f := &fixture{
		currencyRepo:  mocks.NewMockCurrencyRepository(testCurrencies()...),
		customerRepo:  mocks.NewMockCustomerRepository(testCustomers()...),
		limitRepo:     mocks.NewMockLimitRepository(testLimits()...),
		operationRepo: mocks.NewMockOperationRepository(),
		outboxRepo:    mocks.NewMockOutboxRepository(),
		auditRepo:     mocks.NewMockAuditRepository(),
		txManager:     mocks.NewMockTransactionManager(),
		metrics:       metrics.New(prometheus.NewRegistry()),
		logs:          &bytes.Buffer{},
	}

	logger := zerolog.New(f.logs)

	f.currencies = usecase.NewCurrencyUseCase(f.currencyRepo, f.auditRepo, authz, idGen, "BRL", f.metrics, logger)
	f.customers = usecase.NewCustomerUseCase(f.customerRepo, f.operationRepo, f.auditRepo, authz, idGen, f.metrics, logger)
	f.limits = usecase.NewLimitUseCase(f.txManager, f.limitRepo, f.customerRepo, f.outboxRepo, f.auditRepo, authz, idGen, f.metrics)
	f.operations = usecase.NewOperationUseCase(
		f.txManager,
		f.operationRepo,
		f.customerRepo,
		f.currencies,
		f.limits,
		f.outboxRepo,
		f.auditRepo,
		authz,
		retrier,
		idGen,
		f.metrics,
		logger,
	)
	f.ledger = usecase.NewReconciliationUseCase(mocks.NewMockLedgerRepository(f.limitRepo, f.operationRepo))

	return f
}
