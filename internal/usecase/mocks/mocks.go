package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwire/walletd/internal/domain"
	"github.com/finwire/walletd/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository
// backed by an in-memory map. Any XxxFunc field overrides the default
// behavior.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account

	GetByIDFunc           func(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
	ListPageFunc          func(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error)
	CountFunc             func(ctx context.Context) (int64, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[int64]*domain.Account),
	}
}

// Put seeds an account into the in-memory store.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

// Balance reads the current balance of a seeded account.
func (m *MockAccountRepository) Balance(id int64) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrAccountNotFound
}

func (m *MockAccountRepository) ListPage(ctx context.Context, afterID int64, limit int) ([]*domain.Account, error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, afterID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var page []*domain.Account
	for id := afterID + 1; len(page) < limit && id <= m.maxIDLocked(); id++ {
		if acc, ok := m.accounts[id]; ok {
			page = append(page, acc)
		}
	}
	return page, nil
}

func (m *MockAccountRepository) maxIDLocked() int64 {
	var max int64
	for id := range m.accounts {
		if id > max {
			max = id
		}
	}
	return max
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.accounts)), nil
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	transfers map[int64]*domain.Transfer
	nextID    int64

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error
	GetByIDFunc         func(ctx context.Context, id int64) (*domain.Transfer, error)
	ListByAccountFunc   func(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error)
	SumsForAccountFunc  func(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error)
	ListArchivableFunc  func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{
		transfers: make(map[int64]*domain.Transfer),
	}
}

// Put seeds a transfer with an explicit id.
func (m *MockTransferRepository) Put(transfer *domain.Transfer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers[transfer.ID] = transfer
	if transfer.ID > m.nextID {
		m.nextID = transfer.ID
	}
}

// Len reports the number of stored transfers.
func (m *MockTransferRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transfers)
}

// Delete removes transfers by id, emulating the archival move.
func (m *MockTransferRepository) Delete(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.transfers, id)
	}
}

// Get returns a stored transfer by id.
func (m *MockTransferRepository) Get(id int64) *domain.Transfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transfers[id]
}

func (m *MockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	transfer.ID = m.nextID
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id int64) (*domain.Transfer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transfers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransferNotFound
}

func (m *MockTransferRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transfer, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transfer
	for id := int64(1); id <= m.nextID; id++ {
		t, ok := m.transfers[id]
		if !ok {
			continue
		}
		if t.SenderID == accountID || t.ReceiverID == accountID {
			matched = append(matched, t)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *MockTransferRepository) SumsForAccount(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumsForAccountFunc != nil {
		return m.SumsForAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	received, sentTotal := decimal.Zero, decimal.Zero
	for _, t := range m.transfers {
		if t.ReceiverID == accountID {
			received = received.Add(t.Amount)
		}
		if t.SenderID == accountID {
			sentTotal = sentTotal.Add(t.TotalAmount)
		}
	}
	return received, sentTotal, nil
}

func (m *MockTransferRepository) ListArchivable(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transfer, error) {
	if m.ListArchivableFunc != nil {
		return m.ListArchivableFunc(ctx, cutoff, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*domain.Transfer
	for id := int64(1); id <= m.nextID && len(matched) < limit; id++ {
		t, ok := m.transfers[id]
		if !ok {
			continue
		}
		if t.CreatedAt.Before(cutoff) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// MockArchiveRepository is a mock implementation of ArchiveRepository.
// MoveChunk copies rows out of the given transfer repository so tests
// can observe real move semantics.
type MockArchiveRepository struct {
	mu       sync.RWMutex
	archived map[int64]*domain.ArchivedTransfer
	source   *MockTransferRepository

	MoveChunkFunc func(ctx context.Context, tx usecase.Transaction, ids []int64, archivedAt time.Time) (int64, error)
}

func NewMockArchiveRepository(source *MockTransferRepository) *MockArchiveRepository {
	return &MockArchiveRepository{
		archived: make(map[int64]*domain.ArchivedTransfer),
		source:   source,
	}
}

// Archived returns an archived transfer by id.
func (m *MockArchiveRepository) Archived(id int64) *domain.ArchivedTransfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.archived[id]
}

func (m *MockArchiveRepository) MoveChunk(ctx context.Context, tx usecase.Transaction, ids []int64, archivedAt time.Time) (int64, error) {
	if m.MoveChunkFunc != nil {
		return m.MoveChunkFunc(ctx, tx, ids, archivedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var moved int64
	for _, id := range ids {
		t := m.source.Get(id)
		if t == nil {
			continue
		}
		m.archived[id] = &domain.ArchivedTransfer{Transfer: *t, ArchivedAt: archivedAt}
		moved++
	}
	m.source.Delete(ids)
	return moved, nil
}

func (m *MockArchiveRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.archived)), nil
}

// MockTransaction is a mock implementation of Transaction that runs
// registered hooks after a successful commit, mirroring the real one.
type MockTransaction struct {
	mu        sync.Mutex
	hooks     []func(ctx context.Context) error
	Committed bool
	RolledBck bool

	CommitFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		if err := t.CommitFunc(ctx); err != nil {
			return err
		}
	}
	t.mu.Lock()
	t.Committed = true
	hooks := t.hooks
	t.mu.Unlock()
	for _, hook := range hooks {
		_ = hook(ctx)
	}
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.Committed {
		t.RolledBck = true
	}
	return nil
}

func (t *MockTransaction) OnCommit(fn func(ctx context.Context) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, fn)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	Txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.Txs = append(m.Txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// MockRetrier is a pass-through Retrier that counts invocations.
type MockRetrier struct {
	Calls int

	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockNotificationSink records published events.
type MockNotificationSink struct {
	mu     sync.Mutex
	Events []*domain.TransferCompletedEvent

	PublishFunc func(ctx context.Context, event *domain.TransferCompletedEvent) error
}

func NewMockNotificationSink() *MockNotificationSink {
	return &MockNotificationSink{}
}

func (m *MockNotificationSink) Publish(ctx context.Context, event *domain.TransferCompletedEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockNotificationSink) Published() []*domain.TransferCompletedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.TransferCompletedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockIDGenerator generates sequential test IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
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
	m.next++
	return "event-" + strconv.Itoa(m.next)
}
