package backup

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sunduq/internal/core"
	"sunduq/internal/storage"
)

func TestExportShape(t *testing.T) {
	snap := storage.Snapshot{
		Settings: core.DefaultSettings(),
		Funds: []core.FundTransaction{
			{ID: "f1", Currency: core.CurrencyYER, Amount: core.Money{Cents: 100_00}, Source: "s", Date: "2024-01-01"},
		},
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	data, err := Export(snap, now)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"version", "timestamp", "settings", "orders", "expenses", "funds"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
	if string(doc["version"]) != "1" {
		t.Errorf("version = %s", doc["version"])
	}
	if string(doc["expenses"]) != "[]" {
		t.Errorf("empty expenses must serialize as [], got %s", doc["expenses"])
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	snap := storage.Snapshot{
		Settings: core.DefaultSettings(),
		Funds: []core.FundTransaction{
			{ID: "f1", Currency: core.CurrencyYER, Amount: core.Money{Cents: 500000_00}, Source: "قيادة المنطقة", Date: "2024-01-01"},
		},
		Expenses: []core.Expense{
			{ID: "e1", Type: core.TypePurchase, Currency: core.CurrencyYER, Amount: core.Money{Cents: 4800_00},
				Category: core.CategoryFuel, Beneficiary: "قسم الصيانة", Date: "2024-01-05", DocumentNumber: "0001",
				Items: []core.InvoiceItem{{ID: "i1", Name: "ديزل", Quantity: 3, UnitPrice: core.Money{Cents: 1600_00}}}},
		},
		Orders: []core.Order{
			{ID: "o1", Title: "طلب", Date: "2024-01-02", Status: core.StatusPending},
		},
	}

	data, err := Export(snap, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	restored := doc.Snapshot()

	if len(restored.Funds) != 1 || restored.Funds[0].Amount.Cents != 500000_00 {
		t.Errorf("funds = %+v", restored.Funds)
	}
	if len(restored.Expenses) != 1 || len(restored.Expenses[0].Items) != 1 {
		t.Errorf("expenses = %+v", restored.Expenses)
	}
	if len(restored.Orders) != 1 || restored.Orders[0].Status != core.StatusPending {
		t.Errorf("orders = %+v", restored.Orders)
	}
	if restored.Settings.MinistryName == "" {
		t.Error("settings lost in round trip")
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"missing funds", `{"version":1,"expenses":[]}`},
		{"missing expenses", `{"version":1,"funds":[]}`},
		{"null collections", `{"version":1,"expenses":null,"funds":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Errorf("Parse err = %v, want ErrInvalidBackup", err)
			}
		})
	}
}

func TestParseAcceptsEmptyCollections(t *testing.T) {
	doc, err := Parse([]byte(`{"version":1,"expenses":[],"funds":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	snap := doc.Snapshot()
	if snap.Settings != core.DefaultSettings() {
		t.Error("absent settings must fall back to defaults")
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	if got := Filename(now); got != "backup_brigade_fund_2024-06-01.json" {
		t.Errorf("filename = %q", got)
	}
}
