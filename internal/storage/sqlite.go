package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sunduq/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Store on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// One writer at a time keeps every mutation, including document-number
	// assignment, serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) LoadFunds(ctx context.Context) ([]core.FundTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, currency, amount_cents, source, date, notes FROM funds ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query funds: %w", err)
	}
	defer rows.Close()

	var funds []core.FundTransaction
	for rows.Next() {
		var f core.FundTransaction
		if err := rows.Scan(&f.ID, &f.Currency, &f.Amount.Cents, &f.Source, &f.Date, &f.Notes); err != nil {
			return nil, fmt.Errorf("scan fund: %w", err)
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

func (r *SQLiteRepository) AddFund(ctx context.Context, f core.FundTransaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO funds (id, currency, amount_cents, source, date, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Currency, f.Amount.Cents, f.Source, f.Date, f.Notes)
	if err != nil {
		return fmt.Errorf("insert fund: %w", err)
	}

	slog.InfoContext(ctx, "Fund receipt saved",
		"id", f.ID,
		"currency", f.Currency,
		"amount_cents", f.Amount.Cents,
		"source", f.Source)
	return nil
}

func (r *SQLiteRepository) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, currency, amount_cents, category, beneficiary, date, notes,
		        document_number, receipt_image, voucher_sub_category
		 FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Type, &e.Currency, &e.Amount.Cents, &e.Category,
			&e.Beneficiary, &e.Date, &e.Notes, &e.DocumentNumber, &e.ReceiptImage,
			&e.VoucherSubCategory); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT expense_id, item_id, name, quantity, unit_price_cents
		 FROM expense_items ORDER BY expense_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query expense items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var expenseID string
		var it core.InvoiceItem
		if err := itemRows.Scan(&expenseID, &it.ID, &it.Name, &it.Quantity, &it.UnitPrice.Cents); err != nil {
			return nil, fmt.Errorf("scan expense item: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Items = append(expenses[i].Items, it)
		}
	}
	return expenses, itemRows.Err()
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpense(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"type", e.Type,
		"currency", e.Currency,
		"amount_cents", e.Amount.Cents,
		"document_number", e.DocumentNumber,
		"items", len(e.Items))
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET type = ?, currency = ?, amount_cents = ?, category = ?,
		        beneficiary = ?, date = ?, notes = ?, document_number = ?,
		        receipt_image = ?, voucher_sub_category = ?
		 WHERE id = ?`,
		e.Type, e.Currency, e.Amount.Cents, e.Category, e.Beneficiary, e.Date,
		e.Notes, e.DocumentNumber, e.ReceiptImage, e.VoucherSubCategory, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_items WHERE expense_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear expense items: %w", err)
	}
	if err := insertItems(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expense update: %w", err)
	}

	slog.InfoContext(ctx, "Expense replaced",
		"id", e.ID,
		"document_number", e.DocumentNumber)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) LoadOrders(ctx context.Context) ([]core.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_number, title, category, amount_cents, date, status, requester
		 FROM orders ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []core.Order
	for rows.Next() {
		var o core.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Title, &o.Category,
			&o.Amount.Cents, &o.Date, &o.Status, &o.Requester); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *SQLiteRepository) ReplaceOrders(ctx context.Context, orders []core.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceOrders(ctx, tx, orders); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) LoadSettings(ctx context.Context) (core.Settings, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM settings WHERE id = 1`).Scan(&document)
	if err == sql.ErrNoRows {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.DefaultSettings(), fmt.Errorf("query settings: %w", err)
	}

	var s core.Settings
	if err := json.Unmarshal([]byte(document), &s); err != nil {
		// Corrupt settings never fail the accounting flow.
		slog.WarnContext(ctx, "Persisted settings unreadable, using defaults", "error", err)
		return core.DefaultSettings(), nil
	}
	return s, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	document, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (id, document) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document`,
		string(document))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings replaced")
	return nil
}

// RestoreAll replaces every collection in one transaction. Either the whole
// backup lands or the current state stays untouched.
func (r *SQLiteRepository) RestoreAll(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expense_items", "expenses", "funds"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, f := range snap.Funds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO funds (id, currency, amount_cents, source, date, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			f.ID, f.Currency, f.Amount.Cents, f.Source, f.Date, f.Notes); err != nil {
			return fmt.Errorf("restore fund %s: %w", f.ID, err)
		}
	}
	for _, e := range snap.Expenses {
		if err := insertExpense(ctx, tx, e); err != nil {
			return fmt.Errorf("restore expense %s: %w", e.ID, err)
		}
	}
	if err := replaceOrders(ctx, tx, snap.Orders); err != nil {
		return err
	}

	document, err := json.Marshal(snap.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, document) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document`,
		string(document)); err != nil {
		return fmt.Errorf("restore settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	slog.InfoContext(ctx, "Backup restored",
		"funds", len(snap.Funds),
		"expenses", len(snap.Expenses),
		"orders", len(snap.Orders))
	return nil
}

func (r *SQLiteRepository) AppendAudit(ctx context.Context, entry AuditEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (entity, action, record_id, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Entity, entry.Action, entry.RecordID, entry.Detail, at)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, e core.Expense) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, type, currency, amount_cents, category, beneficiary,
		        date, notes, document_number, receipt_image, voucher_sub_category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, e.Currency, e.Amount.Cents, e.Category, e.Beneficiary,
		e.Date, e.Notes, e.DocumentNumber, e.ReceiptImage, e.VoucherSubCategory)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return insertItems(ctx, tx, e)
}

func insertItems(ctx context.Context, tx *sql.Tx, e core.Expense) error {
	for i, it := range e.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_items (expense_id, position, item_id, name, quantity, unit_price_cents)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, it.ID, it.Name, it.Quantity, it.UnitPrice.Cents); err != nil {
			return fmt.Errorf("insert expense item %d: %w", i, err)
		}
	}
	return nil
}

func replaceOrders(ctx context.Context, tx *sql.Tx, orders []core.Order) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	for _, o := range orders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (id, order_number, title, category, amount_cents, date, status, requester)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.OrderNumber, o.Title, o.Category, o.Amount.Cents, o.Date, o.Status, o.Requester); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return nil
}
