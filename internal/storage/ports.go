// Package storage owns the ledger collections: funds, expenses, orders, the
// settings singleton and the audit journal. The derivation engine never
// touches persistence; it reads snapshots loaded through the Store port.
package storage

import (
	"context"
	"errors"
	"time"

	"sunduq/internal/core"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Snapshot is the full persisted state, used by backup restore. Restore is
// all-or-nothing: either every collection is replaced or none is.
type Snapshot struct {
	Settings core.Settings
	Orders   []core.Order
	Expenses []core.Expense
	Funds    []core.FundTransaction
}

// AuditEntry records one ledger mutation in the audit journal.
type AuditEntry struct {
	Entity   string
	Action   string
	RecordID string
	Detail   string
	At       time.Time
}

// Store is the persistence port. Collections load in creation order, which
// the normalizer relies on as its deterministic tiebreak. Every mutation is
// an independent atomic operation; there are no cross-record transactions
// except RestoreAll.
type Store interface {
	LoadFunds(ctx context.Context) ([]core.FundTransaction, error)
	AddFund(ctx context.Context, f core.FundTransaction) error

	LoadExpenses(ctx context.Context) ([]core.Expense, error)
	AddExpense(ctx context.Context, e core.Expense) error
	// UpdateExpense replaces the stored record wholesale, keyed by ID.
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	LoadOrders(ctx context.Context) ([]core.Order, error)
	ReplaceOrders(ctx context.Context, orders []core.Order) error

	// LoadSettings degrades to core.DefaultSettings when nothing is
	// persisted or the persisted document is unreadable; it never fails the
	// caller for corruption.
	LoadSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error

	RestoreAll(ctx context.Context, snap Snapshot) error

	AppendAudit(ctx context.Context, entry AuditEntry) error

	Close() error
}
