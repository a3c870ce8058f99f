// Package models defines the domain entities for the school finance service.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assumed when none is supplied.
const DefaultCurrency = "NGN"

// School is a tenant. Its lifecycle is managed outside this service;
// expenses and payments carry its id for multi-tenant scoping only.
type School struct {
	ID        int64
	Name      string
	ShortCode string
	CreatedAt time.Time
}

// Expense is a school's recorded obligation to pay money. It moves through
// an approval lifecycle and accumulates payments until fully settled.
type Expense struct {
	ID          int64
	SchoolID    int64
	SessionID   *int64
	TermID      *int64
	Title       string
	Description string
	Type        ExpenseType
	Amount      decimal.Decimal
	Currency    string
	Month       string // YYYY-MM
	ExpenseDate time.Time
	Status      ExpenseStatus
	Notes       string
	Attachments []string
	CreatedBy   int64
	UpdatedBy   *int64
	ApprovedBy  *int64
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentBreakdown is informational detail attached to a payment.
// It is never reconciled arithmetically against AmountPaid.
type PaymentBreakdown struct {
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
}

// ExpensePayment is one disbursement event against an Expense,
// evidenced by a receipt.
type ExpensePayment struct {
	ID              int64
	ExpenseID       int64
	SchoolID        int64 // denormalized from the expense for query efficiency
	PayeeType       PayeeType
	PayeeID         *int64
	PayeeName       string
	PaymentDate     time.Time
	AmountPaid      decimal.Decimal
	Currency        string
	Method          PaymentMethod
	TransactionRef  string
	PeriodCovered   string
	ReceiptURL      string
	ReceiptPublicID string // storage handle the receipt can be deleted by
	Notes           string
	Breakdown       PaymentBreakdown
	RecordedBy      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Balance returns amount minus totalPaid, clamped at zero.
func Balance(amount, totalPaid decimal.Decimal) decimal.Decimal {
	b := amount.Sub(totalPaid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}
