package core

import (
	"fmt"
	"strconv"
)

// NextDocumentNumber returns the next sequential document number for the
// given expense type as a zero-padded decimal string. Vouchers and purchases
// number independently. Existing numbers that do not parse as base-10
// integers do not participate in the scan; with no parsable predecessor the
// sequence starts at "0001". Four digits is a minimum width, not a cap.
//
// Two creations racing before either persists can compute the same number.
// The service layer serializes creations through a single writer, which
// closes that race here; the computation itself makes no reservation.
func NextDocumentNumber(expenses []Expense, t ExpenseType) string {
	var max int64
	for _, e := range expenses {
		if e.Type != t {
			continue
		}
		n, err := strconv.ParseInt(e.DocumentNumber, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%04d", max+1)
}
