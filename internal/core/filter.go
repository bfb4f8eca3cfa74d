package core

import "strings"

// TypeFilter selects transactions by category type. The two voucher modes
// discriminate by sub-category; FilterVoucher matches both.
type TypeFilter string

const (
	FilterAll            TypeFilter = ""
	FilterFund           TypeFilter = "FUND"
	FilterPurchase       TypeFilter = "PURCHASE"
	FilterVoucher        TypeFilter = "VOUCHER"
	FilterVoucherExpense TypeFilter = "VOUCHER_EXPENSE"
	FilterVoucherLoan    TypeFilter = "VOUCHER_LOAN"
)

// Query describes one archive search / report request. All set predicates
// combine with AND; zero values mean "no constraint". Date bounds are
// inclusive; an empty Start means from the beginning of time, an empty End
// means through the latest record.
type Query struct {
	Search   string
	Type     TypeFilter
	Currency Currency
	Start    Date
	End      Date
}

// Matches reports whether one transaction satisfies every active predicate.
func (q Query) Matches(t UnifiedTransaction) bool {
	return q.matchesSearch(t) && q.matchesType(t) && q.matchesCurrency(t) && q.matchesDate(t)
}

// The search term matches case-insensitively against the title, the notes,
// the document number and the decimal form of the amount. Any one field
// matching is enough.
func (q Query) matchesSearch(t UnifiedTransaction) bool {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes), term) {
		return true
	}
	if t.DocumentNumber != "" && strings.Contains(t.DocumentNumber, term) {
		return true
	}
	return strings.Contains(t.Amount.Decimal(), term)
}

func (q Query) matchesType(t UnifiedTransaction) bool {
	switch q.Type {
	case FilterAll:
		return true
	case FilterVoucherExpense:
		return t.Expense != nil && t.Expense.Type == TypeVoucher &&
			t.Expense.VoucherSubCategory != VoucherLoan
	case FilterVoucherLoan:
		return t.Expense != nil && t.Expense.Type == TypeVoucher &&
			t.Expense.VoucherSubCategory == VoucherLoan
	default:
		return t.CategoryType == CategoryType(q.Type)
	}
}

func (q Query) matchesCurrency(t UnifiedTransaction) bool {
	return q.Currency == "" || t.Currency == q.Currency
}

func (q Query) matchesDate(t UnifiedTransaction) bool {
	if !q.Start.IsZero() && t.Date.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && t.Date.After(q.End) {
		return false
	}
	return true
}

// Filter returns the subsequence of transactions matching the query,
// preserving order. An empty result is a valid state, not an error.
func Filter(transactions []UnifiedTransaction, q Query) []UnifiedTransaction {
	out := make([]UnifiedTransaction, 0, len(transactions))
	for _, t := range transactions {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// DateGroup is one display group of transactions sharing an exact date.
type DateGroup struct {
	Date  Date                 `json:"date"`
	Items []UnifiedTransaction `json:"items"`
}

// GroupByDate splits an already-sorted sequence into groups by exact date
// string equality, preserving order across and within groups.
func GroupByDate(transactions []UnifiedTransaction) []DateGroup {
	var groups []DateGroup
	for _, t := range transactions {
		if n := len(groups); n > 0 && groups[n-1].Date == t.Date {
			groups[n-1].Items = append(groups[n-1].Items, t)
			continue
		}
		groups = append(groups, DateGroup{Date: t.Date, Items: []UnifiedTransaction{t}})
	}
	return groups
}
