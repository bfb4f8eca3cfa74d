package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sunduq/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	fund := core.FundTransaction{
		ID: "f1", Currency: core.CurrencyYER, Amount: core.Money{Cents: 500000_00},
		Source: "قيادة المنطقة", Date: "2024-01-01", Notes: "دفعة أولى",
	}
	if err := repo.AddFund(ctx, fund); err != nil {
		t.Fatal(err)
	}

	expense := core.Expense{
		ID: "e1", Type: core.TypePurchase, Currency: core.CurrencyYER,
		Amount: core.Money{Cents: 4800_00}, Category: core.CategoryFuel,
		Beneficiary: "قسم الصيانة", Date: "2024-01-05", DocumentNumber: "0001",
		Items: []core.InvoiceItem{
			{ID: "i1", Name: "ديزل", Quantity: 3, UnitPrice: core.Money{Cents: 1500_00}},
			{ID: "i2", Name: "زيت", Quantity: 1.5, UnitPrice: core.Money{Cents: 200_00}},
		},
	}
	if err := repo.AddExpense(ctx, expense); err != nil {
		t.Fatal(err)
	}

	funds, err := repo.LoadFunds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(funds) != 1 || funds[0] != fund {
		t.Errorf("funds = %+v", funds)
	}

	expenses, err := repo.LoadExpenses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expenses = %+v", expenses)
	}
	got := expenses[0]
	if got.ID != "e1" || got.Amount.Cents != 4800_00 || len(got.Items) != 2 {
		t.Errorf("expense = %+v", got)
	}
	if got.Items[0].Name != "ديزل" || got.Items[1].Quantity != 1.5 {
		t.Errorf("items = %+v", got.Items)
	}
}

func TestSQLiteUpdateAndDeleteExpense(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	e := core.Expense{
		ID: "e1", Type: core.TypeVoucher, Currency: core.CurrencyYER,
		Amount: core.Money{Cents: 100_00}, Beneficiary: "x", Date: "2024-01-01",
		DocumentNumber: "0001", VoucherSubCategory: core.VoucherExpense,
	}
	if err := repo.AddExpense(ctx, e); err != nil {
		t.Fatal(err)
	}

	e.Beneficiary = "y"
	e.Items = []core.InvoiceItem{{ID: "i1", Name: "n", Quantity: 1, UnitPrice: core.Money{Cents: 100_00}}}
	if err := repo.UpdateExpense(ctx, e); err != nil {
		t.Fatal(err)
	}

	expenses, _ := repo.LoadExpenses(ctx)
	if expenses[0].Beneficiary != "y" || len(expenses[0].Items) != 1 {
		t.Errorf("after update: %+v", expenses[0])
	}
	if expenses[0].DocumentNumber != "0001" {
		t.Error("document number must survive the edit verbatim")
	}

	if err := repo.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteExpense(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing err = %v", err)
	}

	// Items must go with the expense.
	expenses, _ = repo.LoadExpenses(ctx)
	if len(expenses) != 0 {
		t.Errorf("expenses after delete = %+v", expenses)
	}
}

func TestSQLiteSettingsAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	s, err := repo.LoadSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != core.DefaultSettings() {
		t.Errorf("fresh settings = %+v, want defaults", s)
	}

	s.UnitName = "صندوق الكتيبة"
	if err := repo.SaveSettings(ctx, s); err != nil {
		t.Fatal(err)
	}

	snap := Snapshot{
		Settings: s,
		Funds: []core.FundTransaction{
			{ID: "rf", Currency: core.CurrencySAR, Amount: core.Money{Cents: 9_00}, Source: "s", Date: "2024-03-01"},
		},
		Expenses: []core.Expense{
			{ID: "re", Type: core.TypeVoucher, Currency: core.CurrencySAR, Amount: core.Money{Cents: 1_00}, Beneficiary: "b", Date: "2024-03-02"},
		},
		Orders: []core.Order{
			{ID: "ro", Title: "طلب", Date: "2024-03-03", Status: core.StatusPending},
		},
	}
	if err := repo.RestoreAll(ctx, snap); err != nil {
		t.Fatal(err)
	}

	funds, _ := repo.LoadFunds(ctx)
	expenses, _ := repo.LoadExpenses(ctx)
	orders, _ := repo.LoadOrders(ctx)
	if len(funds) != 1 || len(expenses) != 1 || len(orders) != 1 {
		t.Errorf("after restore: funds=%d expenses=%d orders=%d", len(funds), len(expenses), len(orders))
	}
	restored, _ := repo.LoadSettings(ctx)
	if restored.UnitName != "صندوق الكتيبة" {
		t.Errorf("restored settings = %+v", restored)
	}
}

func TestSQLiteAudit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	err := repo.AppendAudit(ctx, AuditEntry{Entity: "expense", Action: "created", RecordID: "e1"})
	if err != nil {
		t.Fatal(err)
	}
}
