package core

import "sort"

// CategoryType tags a unified transaction with its origin.
type CategoryType string

const (
	CategoryFund         CategoryType = "FUND"
	CategoryPurchaseType CategoryType = "PURCHASE"
	CategoryVoucherType  CategoryType = "VOUCHER"
)

// Display style classifiers, derived purely from the category type and, for
// vouchers, the sub-category.
const (
	StyleFund           = "fund"
	StylePurchase       = "purchase"
	StyleVoucherExpense = "voucher-expense"
	StyleVoucherLoan    = "voucher-loan"
)

// UnifiedTransaction is the read-only projection that merges funds and
// expenses into one sortable, filterable view record. Exactly one of Fund
// and Expense is set; the promoted fields mirror the underlying record so
// filtering and display never reach into the variant.
type UnifiedTransaction struct {
	CategoryType   CategoryType `json:"categoryType"`
	Title          string       `json:"title"`
	Sign           int          `json:"sign"`
	Style          string       `json:"style"`
	ID             string       `json:"id"`
	Currency       Currency     `json:"currency"`
	Amount         Money        `json:"amount"`
	Date           Date         `json:"date"`
	Notes          string       `json:"notes,omitempty"`
	DocumentNumber string       `json:"documentNumber,omitempty"`

	Fund    *FundTransaction `json:"fund,omitempty"`
	Expense *Expense         `json:"expense,omitempty"`
}

// SignedAmount applies the inflow/outflow sign to the amount.
func (t UnifiedTransaction) SignedAmount() Money {
	if t.Sign < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// UnifyFund projects a fund receipt into the unified view.
func UnifyFund(f FundTransaction) UnifiedTransaction {
	fc := f
	return UnifiedTransaction{
		CategoryType: CategoryFund,
		Title:        f.Source,
		Sign:         1,
		Style:        StyleFund,
		ID:           f.ID,
		Currency:     f.Currency,
		Amount:       f.Amount,
		Date:         f.Date,
		Notes:        f.Notes,
		Fund:         &fc,
	}
}

// UnifyExpense projects an expense into the unified view.
func UnifyExpense(e Expense) UnifiedTransaction {
	ec := e
	style := StylePurchase
	if e.Type == TypeVoucher {
		if e.VoucherSubCategory == VoucherLoan {
			style = StyleVoucherLoan
		} else {
			style = StyleVoucherExpense
		}
	}
	return UnifiedTransaction{
		CategoryType:   CategoryType(e.Type),
		Title:          e.Beneficiary,
		Sign:           -1,
		Style:          style,
		ID:             e.ID,
		Currency:       e.Currency,
		Amount:         e.Amount,
		Date:           e.Date,
		Notes:          e.Notes,
		DocumentNumber: e.DocumentNumber,
		Expense:        &ec,
	}
}

// Normalize merges the two collections into one sequence sorted by date
// descending. The sort is stable: records sharing a date keep their input
// order (funds first, then expenses, each in creation order), which makes
// the ordering deterministic. Every input record maps to exactly one output
// record.
func Normalize(funds []FundTransaction, expenses []Expense) []UnifiedTransaction {
	out := make([]UnifiedTransaction, 0, len(funds)+len(expenses))
	for _, f := range funds {
		out = append(out, UnifyFund(f))
	}
	for _, e := range expenses {
		out = append(out, UnifyExpense(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
