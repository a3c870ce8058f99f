package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an Expense.
type ExpenseStatus string

// Expense lifecycle states.
const (
	StatusDraft           ExpenseStatus = "draft"
	StatusPendingApproval ExpenseStatus = "pending_approval"
	StatusApproved        ExpenseStatus = "approved"
	StatusRejected        ExpenseStatus = "rejected"
	StatusPartiallyPaid   ExpenseStatus = "partially_paid"
	StatusPaid            ExpenseStatus = "paid"
)

var expenseStatuses = map[ExpenseStatus]bool{
	StatusDraft:           true,
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusRejected:        true,
	StatusPartiallyPaid:   true,
	StatusPaid:            true,
}

// statusSeparators matches runs of spaces and hyphens in caller-supplied
// status values ("Pending Approval", "partially-paid").
var statusSeparators = regexp.MustCompile(`[\s-]+`)

// ParseExpenseStatus normalizes a caller-supplied status value and checks it
// against the known states. Values are lowercased and runs of spaces or
// hyphens collapse to a single underscore. Unknown values are an error;
// they must never be stored.
func ParseExpenseStatus(raw string) (ExpenseStatus, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = statusSeparators.ReplaceAllString(s, "_")
	status := ExpenseStatus(s)
	if !expenseStatuses[status] {
		return "", fmt.Errorf("unknown expense status %q", raw)
	}
	return status, nil
}

// Valid reports whether the status is one of the defined states.
func (s ExpenseStatus) Valid() bool {
	return expenseStatuses[s]
}

// Approvable reports whether an approve transition is legal from this state.
func (s ExpenseStatus) Approvable() bool {
	return s == StatusPendingApproval || s == StatusRejected
}

// Rejectable reports whether a reject transition is legal from this state.
// The no-payments precondition is checked separately by the service.
func (s ExpenseStatus) Rejectable() bool {
	return s == StatusPendingApproval || s == StatusApproved || s == StatusPartiallyPaid
}

// Reconcilable reports whether the automatic payment-driven recompute applies
// to this state. Expenses still awaiting approval (or rejected, or draft)
// never auto-transition.
func (s ExpenseStatus) Reconcilable() bool {
	return s == StatusApproved || s == StatusPartiallyPaid || s == StatusPaid
}

// DeriveStatus computes the payment-driven status for an expense of the given
// amount with the given total paid. It is a pure function of its inputs:
//
//	totalPaid <= 0            -> approved
//	0 < totalPaid < amount    -> partially_paid
//	totalPaid >= amount       -> paid
func DeriveStatus(totalPaid, amount decimal.Decimal) ExpenseStatus {
	switch {
	case !totalPaid.IsPositive():
		return StatusApproved
	case totalPaid.LessThan(amount):
		return StatusPartiallyPaid
	default:
		return StatusPaid
	}
}
