package storage

import (
	"context"
	"sync"
	"time"

	"sunduq/internal/core"
)

// MemoryStore is an in-memory Store used by tests and as the default dev
// backend. It keeps collections in creation order, same as the SQLite
// repository.
type MemoryStore struct {
	mu       sync.Mutex
	funds    []core.FundTransaction
	expenses []core.Expense
	orders   []core.Order
	settings *core.Settings
	audit    []AuditEntry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadFunds(_ context.Context) ([]core.FundTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FundTransaction(nil), s.funds...), nil
}

func (s *MemoryStore) AddFund(_ context.Context, f core.FundTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds = append(s.funds, f)
	return nil
}

func (s *MemoryStore) LoadExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	for i, e := range s.expenses {
		out[i] = copyExpense(e)
	}
	return out, nil
}

func (s *MemoryStore) AddExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, copyExpense(e))
	return nil
}

func (s *MemoryStore) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = copyExpense(e)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) LoadOrders(_ context.Context) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Order(nil), s.orders...), nil
}

func (s *MemoryStore) ReplaceOrders(_ context.Context, orders []core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]core.Order(nil), orders...)
	return nil
}

func (s *MemoryStore) LoadSettings(_ context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *MemoryStore) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *MemoryStore) RestoreAll(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds = append([]core.FundTransaction(nil), snap.Funds...)
	s.expenses = make([]core.Expense, len(snap.Expenses))
	for i, e := range snap.Expenses {
		s.expenses[i] = copyExpense(e)
	}
	s.orders = append([]core.Order(nil), snap.Orders...)
	settings := snap.Settings
	s.settings = &settings
	return nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	s.audit = append(s.audit, entry)
	return nil
}

// AuditEntries exposes the journal for tests.
func (s *MemoryStore) AuditEntries() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEntry(nil), s.audit...)
}

func (s *MemoryStore) Close() error { return nil }

func copyExpense(e core.Expense) core.Expense {
	e.Items = append([]core.InvoiceItem(nil), e.Items...)
	return e
}
