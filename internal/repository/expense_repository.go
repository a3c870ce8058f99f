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

// expenseColumns is the canonical column list scanned by expense queries.
const expenseColumns = `id, school_id, session_id, term_id, title, description, expense_type,
	amount, currency, month, expense_date, status, notes, attachments,
	created_by, updated_by, approved_by, approved_at, created_at, updated_at`

// ExpenseFilter narrows expense listings. SchoolID is the tenant scope and
// is always required; the rest are optional.
type ExpenseFilter struct {
	SchoolID int64
	Status   *models.ExpenseStatus
	Type     *models.ExpenseType
	Month    string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	// New expenses always enter the approval queue.
	if expense.Status == "" {
		expense.Status = models.StatusPendingApproval
	}
	if expense.Attachments == nil {
		expense.Attachments = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (school_id, session_id, term_id, title, description, expense_type,
			amount, currency, month, expense_date, status, notes, attachments, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, expense.SchoolID, expense.SessionID, expense.TermID, expense.Title, expense.Description,
		expense.Type, expense.Amount, expense.Currency, expense.Month, expense.ExpenseDate,
		expense.Status, expense.Notes, expense.Attachments, expense.CreatedBy,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	row := r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	exp, err := scanExpense(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return exp, nil
}

// GetByIDForUpdate retrieves an expense by ID and takes a row lock on it.
// Must be called inside a transaction; it serializes concurrent payment
// mutations against the same expense.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Expense, error) {
	row := r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1 FOR UPDATE`, id)
	exp, err := scanExpense(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense for update: %w", err)
	}
	return exp, nil
}

// Update modifies an existing expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	if expense.Attachments == nil {
		expense.Attachments = []string{}
	}
	_, err := r.db.Exec(ctx, `
		UPDATE expenses SET
			session_id = $2,
			term_id = $3,
			title = $4,
			description = $5,
			expense_type = $6,
			amount = $7,
			currency = $8,
			month = $9,
			expense_date = $10,
			status = $11,
			notes = $12,
			attachments = $13,
			updated_by = $14,
			approved_by = $15,
			approved_at = $16,
			updated_at = NOW()
		WHERE id = $1
	`, expense.ID, expense.SessionID, expense.TermID, expense.Title, expense.Description,
		expense.Type, expense.Amount, expense.Currency, expense.Month, expense.ExpenseDate,
		expense.Status, expense.Notes, expense.Attachments, expense.UpdatedBy,
		expense.ApprovedBy, expense.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// UpdateStatus writes only the status column. Used by reconciliation, which
// must not clobber concurrent edits to other fields.
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id int64, status models.ExpenseStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE expenses SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	return nil
}

// Delete removes an expense by ID.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// List retrieves expenses matching the filter, newest expense date first.
func (r *ExpenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE school_id = $1`)
	args := []any{filter.SchoolID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		fmt.Fprintf(&sb, " AND expense_type = $%d", len(args))
	}
	if filter.Month != "" {
		args = append(args, filter.Month)
		fmt.Fprintf(&sb, " AND month = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		fmt.Fprintf(&sb, " AND expense_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		fmt.Fprintf(&sb, " AND expense_date < $%d", len(args))
	}

	sb.WriteString(" ORDER BY expense_date DESC, id DESC")
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
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// MonthTypeTotal is one (month, type) aggregation bucket.
type MonthTypeTotal struct {
	Month string
	Type  models.ExpenseType
	Total decimal.Decimal
	Count int64
}

// SummaryByMonthAndType aggregates expense amounts grouped by month and
// type, months descending. The service layer regroups the rows per month.
func (r *ExpenseRepository) SummaryByMonthAndType(ctx context.Context, filter ExpenseFilter) ([]MonthTypeTotal, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT month, expense_type, COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses WHERE school_id = $1`)
	args := []any{filter.SchoolID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		fmt.Fprintf(&sb, " AND expense_type = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		fmt.Fprintf(&sb, " AND expense_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		fmt.Fprintf(&sb, " AND expense_date < $%d", len(args))
	}
	sb.WriteString(" GROUP BY month, expense_type ORDER BY month DESC, expense_type ASC")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense summary: %w", err)
	}
	defer rows.Close()

	var totals []MonthTypeTotal
	for rows.Next() {
		var t MonthTypeTotal
		if err := rows.Scan(&t.Month, &t.Type, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return totals, nil
}

// scanExpense scans a single expense row.
func scanExpense(row interface{ Scan(dest ...any) error }) (*models.Expense, error) {
	var exp models.Expense
	err := row.Scan(
		&exp.ID, &exp.SchoolID, &exp.SessionID, &exp.TermID, &exp.Title, &exp.Description,
		&exp.Type, &exp.Amount, &exp.Currency, &exp.Month, &exp.ExpenseDate, &exp.Status,
		&exp.Notes, &exp.Attachments, &exp.CreatedBy, &exp.UpdatedBy, &exp.ApprovedBy,
		&exp.ApprovedAt, &exp.CreatedAt, &exp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}
