package domain

import "errors"

// ErrOutstandingBalance blocks deletion of a party whose money position is
// not fully settled.
var ErrOutstandingBalance = errors.New("cannot delete: outstanding balance must be settled first")

// CanDelete reports whether a party with the given outstanding balance may be
// deleted. Any non-zero balance blocks deletion, including negative balances
// (overpayments), which still represent money owed in one direction. The
// comparison is exact: no epsilon, no rounding.
func CanDelete(outstanding float64) bool {
	return outstanding == 0
}
