package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency // by code

	CreateFunc     func(ctx context.Context, currency *domain.Currency) error
	GetByCodeFunc  func(ctx context.Context, code string) (*domain.Currency, error)
	UpdateRateFunc func(ctx context.Context, code string, rate decimal.Decimal, updatedAt time.Time) (*domain.Currency, error)
}

func NewMockCurrencyRepository(currencies ...*domain.Currency) *MockCurrencyRepository {
	m := &MockCurrencyRepository{
		currencies: make(map[string]*domain.Currency),
	}
	for _, c := range currencies {
		m.currencies[c.Code] = c
	}
	return m
}

func (m *MockCurrencyRepository) Create(ctx context.Context, currency *domain.Currency) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.currencies[currency.Code]; ok {
		return domain.ErrCurrencyAlreadyExists
	}
	copied := *currency
	m.currencies[currency.Code] = &copied
	return nil
}

func (m *MockCurrencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.currencies {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) UpdateRate(ctx context.Context, code string, rate decimal.Decimal, updatedAt time.Time) (*domain.Currency, error) {
	if m.UpdateRateFunc != nil {
		return m.UpdateRateFunc(ctx, code, rate, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.currencies[code]
	if !ok {
		return nil, domain.ErrCurrencyNotFound
	}
	c.RateToBase = rate
	c.LastUpdate = updatedAt
	copied := *c
	return &copied, nil
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	currencies := make([]*domain.Currency, 0, len(m.currencies))
	for _, c := range m.currencies {
		copied := *c
		currencies = append(currencies, &copied)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })
	return currencies, nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer

	CreateFunc  func(ctx context.Context, customer *domain.Customer) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Customer, error)
	ListFunc    func(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error)
}

func NewMockCustomerRepository(customers ...*domain.Customer) *MockCustomerRepository {
	m := &MockCustomerRepository{
		customers: make(map[string]*domain.Customer),
	}
	for _, c := range customers {
		m.customers[c.ID] = c
	}
	return m
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *customer
	m.customers[customer.ID] = &copied
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) GetByDocument(ctx context.Context, document string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.Document == document {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customer.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	copied := *customer
	m.customers[customer.ID] = &copied
	return nil
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *MockCustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	term := strings.ToLower(filter.Search)
	var customers []*domain.Customer
	for _, c := range m.customers {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(c.Document, term) ||
			strings.Contains(c.Email, term) {
			copied := *c
			customers = append(customers, &copied)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

// MockLimitRepository is a mock implementation of LimitRepository. Debit and
// Credit mutate the stored balance immediately, like the conditional update
// in Postgres.
type MockLimitRepository struct {
	mu     sync.RWMutex
	limits map[string]*domain.CustomerLimit

	CreateFunc func(ctx context.Context, tx usecase.Transaction, limit *domain.CustomerLimit) error
	DebitFunc  func(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error)
	CreditFunc func(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error)

	// Locked records the customer IDs of every GetByCustomerIDsForUpdate call.
	Locked [][]string
}

func NewMockLimitRepository(limits ...*domain.CustomerLimit) *MockLimitRepository {
	m := &MockLimitRepository{
		limits: make(map[string]*domain.CustomerLimit),
	}
	for _, l := range limits {
		m.limits[l.CustomerID] = l
	}
	return m
}

// Balance returns the stored balance of a customer, or zero.
func (m *MockLimitRepository) Balance(customerID string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.limits[customerID]; ok {
		return l.Balance
	}
	return decimal.Zero
}

func (m *MockLimitRepository) Create(ctx context.Context, tx usecase.Transaction, limit *domain.CustomerLimit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.limits[limit.CustomerID]; ok {
		return domain.ErrLimitAlreadyExists
	}
	copied := *limit
	m.limits[limit.CustomerID] = &copied
	return nil
}

func (m *MockLimitRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.CustomerLimit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.limits[customerID]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, domain.ErrLimitNotFound
}

func (m *MockLimitRepository) GetByCustomerIDsForUpdate(ctx context.Context, tx usecase.Transaction, customerIDs []string) ([]*domain.CustomerLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locked = append(m.Locked, append([]string(nil), customerIDs...))
	var limits []*domain.CustomerLimit
	for _, id := range customerIDs {
		if l, ok := m.limits[id]; ok {
			copied := *l
			limits = append(limits, &copied)
		}
	}
	return limits, nil
}

func (m *MockLimitRepository) Debit(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	if m.DebitFunc != nil {
		return m.DebitFunc(ctx, tx, customerID, amount, actorID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limits[customerID]
	if !ok {
		return nil, domain.ErrLimitNotFound
	}
	if amount.GreaterThan(l.Balance) {
		return nil, domain.ErrInsufficientLimit
	}
	l.Balance = l.Balance.Sub(amount)
	l.LastUpdatedBy = actorID
	l.LastUpdatedAt = &at
	copied := *l
	return &copied, nil
}

func (m *MockLimitRepository) Credit(ctx context.Context, tx usecase.Transaction, customerID string, amount decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, tx, customerID, amount, actorID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limits[customerID]
	if !ok {
		return nil, domain.ErrLimitNotFound
	}
	l.Balance = l.Balance.Add(amount)
	l.LastUpdatedBy = actorID
	l.LastUpdatedAt = &at
	copied := *l
	return &copied, nil
}

func (m *MockLimitRepository) SetBalance(ctx context.Context, tx usecase.Transaction, customerID string, balance, granted decimal.Decimal, actorID string, at time.Time) (*domain.CustomerLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limits[customerID]
	if !ok {
		return nil, domain.ErrLimitNotFound
	}
	l.Balance = balance
	l.GrantedAmount = granted
	l.LastUpdatedBy = actorID
	l.LastUpdatedAt = &at
	copied := *l
	return &copied, nil
}

// MockOperationRepository is a mock implementation of OperationRepository.
type MockOperationRepository struct {
	mu         sync.RWMutex
	operations map[string]*domain.ExchangeOperation

	CreateFunc func(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error
	UpdateFunc func(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error
	SearchFunc func(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error)
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{
		operations: make(map[string]*domain.ExchangeOperation),
	}
}

// All returns a copy of every stored operation.
func (m *MockOperationRepository) All() []*domain.ExchangeOperation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ops := make([]*domain.ExchangeOperation, 0, len(m.operations))
	for _, op := range m.operations {
		copied := *op
		ops = append(ops, &copied)
	}
	return ops
}

func (m *MockOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *op
	m.operations[op.ID] = &copied
	return nil
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id string) (*domain.ExchangeOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if op, ok := m.operations[id]; ok {
		copied := *op
		return &copied, nil
	}
	return nil, domain.ErrOperationNotFound
}

func (m *MockOperationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExchangeOperation, error) {
	return m.GetByID(ctx, id)
}

func (m *MockOperationRepository) Update(ctx context.Context, tx usecase.Transaction, op *domain.ExchangeOperation) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.operations[op.ID]; !ok {
		return domain.ErrOperationNotFound
	}
	copied := *op
	m.operations[op.ID] = &copied
	return nil
}

func (m *MockOperationRepository) Search(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter)
	}

	var matched []*domain.ExchangeOperation
	total := decimal.Zero
	for _, op := range m.All() {
		if filter.CustomerID != "" && op.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && op.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && op.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && op.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, op)
		total = total.Add(op.FinalAmount)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		less := operationLess(matched[i], matched[j], filter.SortBy)
		if filter.Ascending {
			return less
		}
		return operationLess(matched[j], matched[i], filter.SortBy)
	})

	count := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return domain.NewOperationPage(matched[start:end], filter, count, total), nil
}

func operationLess(a, b *domain.ExchangeOperation, sortBy string) bool {
	switch sortBy {
	case domain.SortByID:
		return a.ID < b.ID
	case domain.SortByAmount:
		return a.Amount.LessThan(b.Amount)
	case domain.SortByFinalAmount:
		return a.FinalAmount.LessThan(b.FinalAmount)
	case domain.SortByStatus:
		return a.Status < b.Status
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (m *MockOperationRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, op := range m.operations {
		if op.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

// MockLedgerRepository reconciles the limits and operations of the other mocks.
type MockLedgerRepository struct {
	limits     *MockLimitRepository
	operations *MockOperationRepository

	LimitReconciliationFunc func(ctx context.Context) ([]*domain.LimitReconciliation, error)
}

func NewMockLedgerRepository(limits *MockLimitRepository, operations *MockOperationRepository) *MockLedgerRepository {
	return &MockLedgerRepository{limits: limits, operations: operations}
}

func (m *MockLedgerRepository) LimitReconciliation(ctx context.Context) ([]*domain.LimitReconciliation, error) {
	if m.LimitReconciliationFunc != nil {
		return m.LimitReconciliationFunc(ctx)
	}

	active := make(map[string]decimal.Decimal)
	for _, op := range m.operations.All() {
		if op.IsActive() {
			active[op.CustomerID] = active[op.CustomerID].Add(op.FinalAmount)
		}
	}

	m.limits.mu.RLock()
	defer m.limits.mu.RUnlock()
	rows := make([]*domain.LimitReconciliation, 0, len(m.limits.limits))
	for id, l := range m.limits.limits {
		rows = append(rows, &domain.LimitReconciliation{
			CustomerID:    id,
			Balance:       l.Balance,
			GrantedAmount: l.GrantedAmount,
			ActiveAmount:  active[id],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })
	return rows, nil
}

// MockStatsRepository is a mock implementation of StatsRepository.
type MockStatsRepository struct {
	Stats              domain.DashboardStats
	Calls              int
	DashboardStatsFunc func(ctx context.Context) (*domain.DashboardStats, error)
}

func (m *MockStatsRepository) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	m.Calls++
	if m.DashboardStatsFunc != nil {
		return m.DashboardStatsFunc(ctx)
	}
	stats := m.Stats
	return &stats, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns the recorded events in insertion order.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(events) < limit {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	if offset >= len(events) {
		return nil, nil
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	deleted := int64(len(m.events) - len(kept))
	m.events = kept
	return deleted, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	// CreateErr, when set, fails every write without recording it.
	CreateErr error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns the recorded audit rows in insertion order.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

// List matches the filter and returns newest first, like the repository.
func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var logs []*domain.AuditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		switch {
		case filter.UserID != "" && l.UserID != filter.UserID,
			filter.Action != "" && l.Action != filter.Action,
			filter.ResourceType != "" && l.ResourceType != filter.ResourceType,
			filter.ResourceID != "" && l.ResourceID != filter.ResourceID,
			filter.StartDate != nil && l.CreatedAt.Before(*filter.StartDate),
			filter.EndDate != nil && l.CreatedAt.After(*filter.EndDate):
			continue
		}
		logs = append(logs, l)
	}

	if filter.Offset >= len(logs) {
		return nil, nil
	}
	logs = logs[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(logs) {
		logs = logs[:filter.Limit]
	}
	return logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu      sync.Mutex
	Begun   int
	Commits int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.Begun++
	m.mu.Unlock()
	return &MockTransaction{
		CommitFunc: func(context.Context) error {
			m.mu.Lock()
			m.Commits++
			m.mu.Unlock()
			return nil
		},
	}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewMockUserRepository(users ...*domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

// Stored returns the persisted copy of user id, hash included.
func (m *MockUserRepository) Stored(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied
	}
	return nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u := m.Stored(id); u != nil {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}
