package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/models"
)

// paymentColumns is the canonical column list scanned by payment queries.
const paymentColumns = `id, expense_id, school_id, payee_type, payee_id, payee_name,
	payment_date, amount_paid, currency, payment_method, transaction_ref,
	period_covered, receipt_url, receipt_public_id, notes, breakdown_allowances,
	breakdown_deductions, recorded_by, created_at, updated_at`

// PaymentFilter narrows payment listings. SchoolID is the tenant scope and
// is always required; the rest are optional.
type PaymentFilter struct {
	SchoolID  int64
	ExpenseID *int64
	PayeeType *models.PayeeType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// PaymentRepository handles expense payment database operations.
type PaymentRepository struct {
	db database.PGXDB
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db database.PGXDB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create adds a new expense payment.
func (r *PaymentRepository) Create(ctx context.Context, p *models.ExpensePayment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expense_payments (expense_id, school_id, payee_type, payee_id, payee_name,
			payment_date, amount_paid, currency, payment_method, transaction_ref,
			period_covered, receipt_url, receipt_public_id, notes, breakdown_allowances,
			breakdown_deductions, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`, p.ExpenseID, p.SchoolID, p.PayeeType, p.PayeeID, p.PayeeName,
		p.PaymentDate, p.AmountPaid, p.Currency, p.Method, p.TransactionRef,
		p.PeriodCovered, p.ReceiptURL, p.ReceiptPublicID, p.Notes, p.Breakdown.Allowances,
		p.Breakdown.Deductions, p.RecordedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.ExpensePayment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM expense_payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// Update modifies an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, p *models.ExpensePayment) error {
	_, err := r.db.Exec(ctx, `
		UPDATE expense_payments SET
			payee_type = $2,
			payee_id = $3,
			payee_name = $4,
			payment_date = $5,
			amount_paid = $6,
			currency = $7,
			payment_method = $8,
			period_covered = $9,
			receipt_url = $10,
			receipt_public_id = $11,
			notes = $12,
			breakdown_allowances = $13,
			breakdown_deductions = $14,
			updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.PayeeType, p.PayeeID, p.PayeeName, p.PaymentDate, p.AmountPaid,
		p.Currency, p.Method, p.PeriodCovered, p.ReceiptURL, p.ReceiptPublicID,
		p.Notes, p.Breakdown.Allowances, p.Breakdown.Deductions)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// Delete removes a payment by ID.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expense_payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

// SumByExpense returns the total amount paid across all payments for an
// expense. Returns zero for an expense with no payments.
func (r *PaymentRepository) SumByExpense(ctx context.Context, expenseID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0) FROM expense_payments WHERE expense_id = $1
	`, expenseID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// CountByExpense returns how many payments exist against an expense.
func (r *PaymentRepository) CountByExpense(ctx context.Context, expenseID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM expense_payments WHERE expense_id = $1
	`, expenseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// TotalsByExpenses returns the paid total per expense for a set of expense
// IDs. Expenses with no payments are absent from the result.
func (r *PaymentRepository) TotalsByExpenses(ctx context.Context, expenseIDs []int64) (map[int64]decimal.Decimal, error) {
	totals := make(map[int64]decimal.Decimal, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return totals, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT expense_id, COALESCE(SUM(amount_paid), 0)
		FROM expense_payments
		WHERE expense_id = ANY($1)
		GROUP BY expense_id
	`, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("failed to scan payment total: %w", err)
		}
		totals[id] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment totals: %w", err)
	}
	return totals, nil
}

// List retrieves payments matching the filter, newest payment date first.
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.ExpensePayment, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + paymentColumns + ` FROM expense_payments WHERE school_id = $1`)
	args := []any{filter.SchoolID}

	if filter.ExpenseID != nil {
		args = append(args, *filter.ExpenseID)
		fmt.Fprintf(&sb, " AND expense_id = $%d", len(args))
	}
	if filter.PayeeType != nil {
		args = append(args, *filter.PayeeType)
		fmt.Fprintf(&sb, " AND payee_type = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		fmt.Fprintf(&sb, " AND payment_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		fmt.Fprintf(&sb, " AND payment_date < $%d", len(args))
	}

	sb.WriteString(" ORDER BY payment_date DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.ExpensePayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

// scanPayment scans a single payment row.
func scanPayment(row interface{ Scan(dest ...any) error }) (*models.ExpensePayment, error) {
	var p models.ExpensePayment
	err := row.Scan(
		&p.ID, &p.ExpenseID, &p.SchoolID, &p.PayeeType, &p.PayeeID, &p.PayeeName,
		&p.PaymentDate, &p.AmountPaid, &p.Currency, &p.Method, &p.TransactionRef,
		&p.PeriodCovered, &p.ReceiptURL, &p.ReceiptPublicID, &p.Notes,
		&p.Breakdown.Allowances, &p.Breakdown.Deductions, &p.RecordedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
