// Package services orchestrates ledger operations across the store, the
// event broker and the derivation engine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sunduq/internal/amqp"
	"sunduq/internal/backup"
	"sunduq/internal/core"
	"sunduq/internal/storage"
)

// LedgerService owns every mutation and derivation of the fund ledger. The
// store is the single source of truth; event publishing is best-effort and
// never fails a mutation.
type LedgerService struct {
	store  storage.Store
	events *amqp.Client
}

func NewLedgerService(store storage.Store, events *amqp.Client) *LedgerService {
	return &LedgerService{store: store, events: events}
}

// Funds lists fund receipts in creation order.
func (s *LedgerService) Funds(ctx context.Context) ([]core.FundTransaction, error) {
	return s.store.LoadFunds(ctx)
}

// AddFund validates and persists a fund receipt, assigning an ID when the
// caller did not.
func (s *LedgerService) AddFund(ctx context.Context, f core.FundTransaction) (core.FundTransaction, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := f.Validate(); err != nil {
		return core.FundTransaction{}, fmt.Errorf("validate fund: %w", err)
	}
	if err := s.store.AddFund(ctx, f); err != nil {
		return core.FundTransaction{}, fmt.Errorf("save fund: %w", err)
	}
	s.publishEvent(ctx, amqp.EntityFund, amqp.ActionCreated, f.ID, f.Source)
	return f, nil
}

// Expenses lists expenses in creation order.
func (s *LedgerService) Expenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.LoadExpenses(ctx)
}

// CreateExpense persists a new expense. Itemized purchases get their amount
// from the item totals, and expenses without a document number are stamped
// with the next free number for their type.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Type == core.TypePurchase && len(e.Items) > 0 {
		e.Amount = e.ItemsTotal()
	}
	if e.DocumentNumber == "" {
		existing, err := s.store.LoadExpenses(ctx)
		if err != nil {
			return core.Expense{}, fmt.Errorf("load expenses for numbering: %w", err)
		}
		e.DocumentNumber = core.NextDocumentNumber(existing, e.Type)
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	if err := s.store.AddExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.publishEvent(ctx, amqp.EntityExpense, amqp.ActionCreated, e.ID, e.DocumentNumber)
	return e, nil
}

// UpdateExpense replaces an existing expense. The document number is kept
// exactly as stored; edits never renumber.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Type == core.TypePurchase && len(e.Items) > 0 {
		e.Amount = e.ItemsTotal()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.publishEvent(ctx, amqp.EntityExpense, amqp.ActionUpdated, e.ID, e.DocumentNumber)
	return e, nil
}

// DeleteExpense removes an expense. Freed document numbers are never reused
// unless the deleted number was the highest for its type.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publishEvent(ctx, amqp.EntityExpense, amqp.ActionDeleted, id, "")
	return nil
}

// NextDocumentNumber previews the number the next expense of the given type
// would receive.
func (s *LedgerService) NextDocumentNumber(ctx context.Context, t core.ExpenseType) (string, error) {
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}
	return core.NextDocumentNumber(expenses, t), nil
}

// Transactions derives the unified, filtered transaction sequence.
func (s *LedgerService) Transactions(ctx context.Context, q core.Query) ([]core.UnifiedTransaction, error) {
	funds, expenses, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	return core.Filter(core.Normalize(funds, expenses), q), nil
}

// TransactionGroups derives the filtered sequence grouped by date for display.
func (s *LedgerService) TransactionGroups(ctx context.Context, q core.Query) ([]core.DateGroup, error) {
	transactions, err := s.Transactions(ctx, q)
	if err != nil {
		return nil, err
	}
	return core.GroupByDate(transactions), nil
}

// Summary computes per-currency balances over the whole ledger.
func (s *LedgerService) Summary(ctx context.Context) ([]core.BalanceSummary, error) {
	funds, expenses, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	return []core.BalanceSummary{
		core.Summarize(funds, expenses, core.CurrencyYER),
		core.Summarize(funds, expenses, core.CurrencySAR),
	}, nil
}

// Report aggregates the filtered transaction set.
func (s *LedgerService) Report(ctx context.Context, q core.Query) (core.Report, error) {
	transactions, err := s.Transactions(ctx, q)
	if err != nil {
		return core.Report{}, err
	}
	return core.BuildReport(transactions), nil
}

// ExportCSV renders the filtered transaction set as a spreadsheet-ready file.
func (s *LedgerService) ExportCSV(ctx context.Context, q core.Query) (string, []byte, error) {
	transactions, err := s.Transactions(ctx, q)
	if err != nil {
		return "", nil, err
	}
	return core.CSVFilename(q.Start, q.End), core.ExportCSV(transactions), nil
}

// Orders lists procurement requests.
func (s *LedgerService) Orders(ctx context.Context) ([]core.Order, error) {
	return s.store.LoadOrders(ctx)
}

// ReplaceOrders validates and stores the full order list.
func (s *LedgerService) ReplaceOrders(ctx context.Context, orders []core.Order) error {
	for i := range orders {
		if orders[i].ID == "" {
			orders[i].ID = uuid.NewString()
		}
		if err := orders[i].Validate(); err != nil {
			return fmt.Errorf("validate order %s: %w", orders[i].ID, err)
		}
	}
	if err := s.store.ReplaceOrders(ctx, orders); err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	return nil
}

// Settings loads the organization settings.
func (s *LedgerService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.LoadSettings(ctx)
}

// SaveSettings replaces the organization settings wholesale.
func (s *LedgerService) SaveSettings(ctx context.Context, settings core.Settings) error {
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.publishEvent(ctx, amqp.EntitySettings, amqp.ActionUpdated, "", "")
	return nil
}

// Backup exports the whole persisted state as one JSON document.
func (s *LedgerService) Backup(ctx context.Context) (string, []byte, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	data, err := backup.Export(snap, now)
	if err != nil {
		return "", nil, err
	}
	return backup.Filename(now), data, nil
}

// Restore validates an uploaded backup and replaces all state with its
// contents. An invalid document leaves the store untouched.
func (s *LedgerService) Restore(ctx context.Context, data []byte) error {
	doc, err := backup.Parse(data)
	if err != nil {
		return err
	}
	if err := s.store.RestoreAll(ctx, doc.Snapshot()); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	s.publishEvent(ctx, amqp.EntityLedger, amqp.ActionRestored, "", doc.Timestamp)
	return nil
}

func (s *LedgerService) loadLedger(ctx context.Context) ([]core.FundTransaction, []core.Expense, error) {
	funds, err := s.store.LoadFunds(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load funds: %w", err)
	}
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load expenses: %w", err)
	}
	return funds, expenses, nil
}

func (s *LedgerService) snapshot(ctx context.Context) (storage.Snapshot, error) {
	funds, expenses, err := s.loadLedger(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	orders, err := s.store.LoadOrders(ctx)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load orders: %w", err)
	}
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	return storage.Snapshot{Settings: settings, Orders: orders, Expenses: expenses, Funds: funds}, nil
}

func (s *LedgerService) publishEvent(ctx context.Context, entity, action, recordID, detail string) {
	if s.events == nil {
		return
	}
	event := amqp.NewLedgerEvent(entity, action, recordID, detail)
	if err := s.events.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", entity, "action", action, "record_id", recordID, "error", err)
		// The mutation already committed locally; losing the event only
		// delays the audit trail.
	}
}

// Close releases the store and the broker connection.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
