package core

// BalanceSummary holds the per-currency dashboard figures.
type BalanceSummary struct {
	Currency Currency `json:"currency"`
	Received Money    `json:"received"`
	Spent    Money    `json:"spent"`
	Balance  Money    `json:"balance"`
}

// TotalReceived sums fund amounts for one currency. Records in any other
// currency, including unknown codes, simply do not match.
func TotalReceived(funds []FundTransaction, c Currency) Money {
	var total int64
	for _, f := range funds {
		if f.Currency == c {
			total += f.Amount.Cents
		}
	}
	return Money{Cents: total}
}

// TotalSpent sums expense amounts for one currency.
func TotalSpent(expenses []Expense, c Currency) Money {
	var total int64
	for _, e := range expenses {
		if e.Currency == c {
			total += e.Amount.Cents
		}
	}
	return Money{Cents: total}
}

// Balance is received minus spent for one currency. A negative balance is a
// deficit, not an error, and is returned as-is.
func Balance(funds []FundTransaction, expenses []Expense, c Currency) Money {
	return Money{Cents: TotalReceived(funds, c).Cents - TotalSpent(expenses, c).Cents}
}

// Summarize computes the full dashboard summary for one currency.
func Summarize(funds []FundTransaction, expenses []Expense, c Currency) BalanceSummary {
	received := TotalReceived(funds, c)
	spent := TotalSpent(expenses, c)
	return BalanceSummary{
		Currency: c,
		Received: received,
		Spent:    spent,
		Balance:  Money{Cents: received.Cents - spent.Cents},
	}
}
