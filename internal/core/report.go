package core

import (
	"math"
	"sort"
)

type (
	// CurrencyTotals carries both the gross figures and the signed net for
	// one currency over a filtered set.
	CurrencyTotals struct {
		Received Money `json:"received"`
		Spent    Money `json:"spent"`
		Net      Money `json:"net"`
	}

	// CategoryShare is one slice of the expense-by-category breakdown.
	// Percent is the share of total filtered expense amount, rounded to the
	// nearest whole percent.
	CategoryShare struct {
		Category Category `json:"category"`
		Label    string   `json:"label"`
		Amount   Money    `json:"amount"`
		Percent  int      `json:"percent"`
	}

	// BeneficiaryTotal is one row of the expense-by-beneficiary breakdown.
	BeneficiaryTotal struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// Report holds the aggregate statistics computed over a filtered
	// transaction set. Aggregates always describe the filtered result, never
	// the full ledger.
	Report struct {
		Count         int                         `json:"count"`
		ByCurrency    map[Currency]CurrencyTotals `json:"byCurrency"`
		Categories    []CategoryShare             `json:"categories"`
		Beneficiaries []BeneficiaryTotal          `json:"beneficiaries"`
	}
)

// BuildReport computes the aggregates for a filtered transaction sequence.
// Only known currencies contribute to the per-currency totals; only
// categories and beneficiaries with nonzero expense totals are reported.
func BuildReport(transactions []UnifiedTransaction) Report {
	r := Report{
		Count:      len(transactions),
		ByCurrency: make(map[Currency]CurrencyTotals),
	}

	categoryTotals := make(map[Category]int64)
	beneficiaryTotals := make(map[string]int64)
	var expenseTotal int64

	for _, t := range transactions {
		if t.Currency.Known() {
			ct := r.ByCurrency[t.Currency]
			if t.Sign > 0 {
				ct.Received.Cents += t.Amount.Cents
			} else {
				ct.Spent.Cents += t.Amount.Cents
			}
			ct.Net.Cents = ct.Received.Cents - ct.Spent.Cents
			r.ByCurrency[t.Currency] = ct
		}

		if t.Expense == nil {
			continue
		}
		expenseTotal += t.Amount.Cents
		categoryTotals[t.Expense.Category] += t.Amount.Cents
		beneficiaryTotals[bucketBeneficiary(t.Expense.Beneficiary)] += t.Amount.Cents
	}

	for _, c := range Categories {
		amount := categoryTotals[c]
		if amount == 0 {
			continue
		}
		r.Categories = append(r.Categories, CategoryShare{
			Category: c,
			Label:    c.Label(),
			Amount:   Money{Cents: amount},
			Percent:  percentOf(amount, expenseTotal),
		})
	}

	for _, name := range append(append([]string(nil), KnownBeneficiaries...), OtherBeneficiary) {
		amount := beneficiaryTotals[name]
		if amount == 0 {
			continue
		}
		r.Beneficiaries = append(r.Beneficiaries, BeneficiaryTotal{
			Name:   name,
			Amount: Money{Cents: amount},
		})
	}
	sort.SliceStable(r.Beneficiaries, func(i, j int) bool {
		return r.Beneficiaries[i].Amount.Cents > r.Beneficiaries[j].Amount.Cents
	})

	return r
}

func bucketBeneficiary(name string) string {
	for _, known := range KnownBeneficiaries {
		if name == known {
			return known
		}
	}
	return OtherBeneficiary
}

func percentOf(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
