package core

import "testing"

func TestNextDocumentNumber(t *testing.T) {
	tests := []struct {
		name     string
		expenses []Expense
		typ      ExpenseType
		want     string
	}{
		{
			name:     "empty collection starts at 0001",
			expenses: nil,
			typ:      TypeVoucher,
			want:     "0001",
		},
		{
			name: "increments the running maximum",
			expenses: []Expense{
				{Type: TypeVoucher, DocumentNumber: "0001"},
				{Type: TypeVoucher, DocumentNumber: "0007"},
				{Type: TypeVoucher, DocumentNumber: "0003"},
			},
			typ:  TypeVoucher,
			want: "0008",
		},
		{
			name: "types number independently",
			expenses: []Expense{
				{Type: TypeVoucher, DocumentNumber: "0042"},
			},
			typ:  TypePurchase,
			want: "0001",
		},
		{
			name: "unparsable numbers do not participate",
			expenses: []Expense{
				{Type: TypePurchase, DocumentNumber: "INV-9"},
				{Type: TypePurchase, DocumentNumber: ""},
				{Type: TypePurchase, DocumentNumber: "0002"},
			},
			typ:  TypePurchase,
			want: "0003",
		},
		{
			name: "only unparsable numbers fall back to the floor",
			expenses: []Expense{
				{Type: TypeVoucher, DocumentNumber: "legacy"},
			},
			typ:  TypeVoucher,
			want: "0001",
		},
		{
			name: "four digits is a minimum width, not a cap",
			expenses: []Expense{
				{Type: TypeVoucher, DocumentNumber: "12344"},
			},
			typ:  TypeVoucher,
			want: "12345",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDocumentNumber(tt.expenses, tt.typ); got != tt.want {
				t.Errorf("NextDocumentNumber = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextDocumentNumberExceedsAllParsed(t *testing.T) {
	expenses := []Expense{
		{Type: TypeVoucher, DocumentNumber: "0005"},
		{Type: TypeVoucher, DocumentNumber: "0009"},
		{Type: TypeVoucher, DocumentNumber: "junk"},
		{Type: TypePurchase, DocumentNumber: "0100"},
	}
	next := NextDocumentNumber(expenses, TypeVoucher)
	if next != "0010" {
		t.Fatalf("NextDocumentNumber = %q, want 0010", next)
	}
}
