package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/logger"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
)

// defaultListLimit caps unpaginated listing requests.
const defaultListLimit = 50

// ExpenseService orchestrates the expense approval lifecycle.
type ExpenseService struct {
	db              database.DB
	renderer        DocumentRenderer
	defaultCurrency string
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(db database.DB, renderer DocumentRenderer, defaultCurrency string) *ExpenseService {
	if defaultCurrency == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &ExpenseService{db: db, renderer: renderer, defaultCurrency: defaultCurrency}
}

// CreateExpenseInput carries the fields accepted when recording a new
// expense.
type CreateExpenseInput struct {
	SchoolID    int64 // optional when the actor has an assigned school
	SessionID   *int64
	TermID      *int64
	Title       string
	Description string
	Type        models.ExpenseType
	Amount      decimal.Decimal
	Currency    string
	Month       string
	ExpenseDate time.Time // zero value defaults to now
	Notes       string
	Attachments []string
}

// UpdateExpenseInput is a partial update; nil fields are left unchanged.
// Only the whitelisted fields below are mutable after creation.
type UpdateExpenseInput struct {
	SessionID   *int64
	TermID      *int64
	Title       *string
	Description *string
	Type        *models.ExpenseType
	Amount      *decimal.Decimal
	Currency    *string
	Month       *string
	ExpenseDate *time.Time
	Notes       *string
	Attachments []string
}

// Create records a new expense in pending_approval.
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput, actor Actor) (*models.Expense, error) {
	schoolID, err := resolveSchool(input.SchoolID, actor)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if !input.Type.Valid() {
		return nil, NewValidationError("type", fmt.Sprintf("unknown expense type %q", input.Type))
	}
	if !models.ValidAmount(input.Amount) {
		return nil, NewValidationError("amount", "amount must be greater than zero")
	}
	if !models.ValidMonth(input.Month) {
		return nil, NewValidationError("month", "month must be in YYYY-MM format")
	}

	schools := repository.NewSchoolRepository(s.db)
	exists, err := schools.Exists(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewValidationError("schoolId", "school not found")
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	expense := &models.Expense{
		SchoolID:    schoolID,
		SessionID:   input.SessionID,
		TermID:      input.TermID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Amount:      input.Amount,
		Currency:    models.NormalizeCurrency(currency),
		Month:       input.Month,
		ExpenseDate: expenseDate,
		Status:      models.StatusPendingApproval,
		Notes:       input.Notes,
		Attachments: input.Attachments,
		CreatedBy:   actor.ID,
	}

	expenses := repository.NewExpenseRepository(s.db)
	if err := expenses.Create(ctx, expense); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("expense_id", expense.ID).
		Int64("school_id", expense.SchoolID).
		Str("type", string(expense.Type)).
		Msg("expense created")
	return expense, nil
}

// Update applies a whitelisted partial update and reconciles the status
// afterwards, so an amount correction can flip partially_paid and paid in
// either direction. Runs under the expense row lock.
func (s *ExpenseService) Update(ctx context.Context, id int64, input UpdateExpenseInput, actor Actor) (*models.Expense, error) {
	if input.Amount != nil && !models.ValidAmount(*input.Amount) {
		return nil, NewValidationError("amount", "amount must be greater than zero")
	}
	if input.Month != nil && !models.ValidMonth(*input.Month) {
		return nil, NewValidationError("month", "month must be in YYYY-MM format")
	}
	if input.Type != nil && !input.Type.Valid() {
		return nil, NewValidationError("type", fmt.Sprintf("unknown expense type %q", *input.Type))
	}
	if input.Title != nil && *input.Title == "" {
		return nil, NewValidationError("title", "title cannot be empty")
	}

	var expense *models.Expense
	err := withTx(ctx, s.db, func(tx database.PGXDB) error {
		expenses := repository.NewExpenseRepository(tx)

		var err error
		expense, err = expenses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		if err := guardSchool(actor, expense.SchoolID); err != nil {
			return err
		}

		applyExpensePatch(expense, input)
		expense.UpdatedBy = &actor.ID

		if err := expenses.Update(ctx, expense); err != nil {
			return err
		}

		_, err = reconcileExpense(ctx, tx, expense)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete hard-deletes an expense. Expenses with recorded payments cannot be
// deleted.
func (s *ExpenseService) Delete(ctx context.Context, id int64, actor Actor) error {
	return withTx(ctx, s.db, func(tx database.PGXDB) error {
		expenses := repository.NewExpenseRepository(tx)
		payments := repository.NewPaymentRepository(tx)

		expense, err := expenses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		if err := guardSchool(actor, expense.SchoolID); err != nil {
			return err
		}

		count, err := payments.CountByExpense(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDeleteWithPayments
		}

		return expenses.Delete(ctx, id)
	})
}

// Approve moves an expense to approved, recording the approver and the
// approval time. Legal only from pending_approval or rejected.
func (s *ExpenseService) Approve(ctx context.Context, id int64, actor Actor) (*models.Expense, error) {
	var expense *models.Expense
	err := withTx(ctx, s.db, func(tx database.PGXDB) error {
		expenses := repository.NewExpenseRepository(tx)

		var err error
		expense, err = expenses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		if err := guardSchool(actor, expense.SchoolID); err != nil {
			return err
		}
		if !expense.Status.Approvable() {
			return ErrNotPendingApproval
		}

		now := time.Now()
		expense.Status = models.StatusApproved
		expense.ApprovedBy = &actor.ID
		expense.ApprovedAt = &now
		expense.UpdatedBy = &actor.ID

		return expenses.Update(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("expense_id", expense.ID).
		Int64("approved_by", actor.ID).
		Msg("expense approved")
	return expense, nil
}

// Reject moves an expense to rejected, clearing any approval metadata.
// Illegal once payments exist against the expense.
func (s *ExpenseService) Reject(ctx context.Context, id int64, reason string, actor Actor) (*models.Expense, error) {
	var expense *models.Expense
	err := withTx(ctx, s.db, func(tx database.PGXDB) error {
		expenses := repository.NewExpenseRepository(tx)
		payments := repository.NewPaymentRepository(tx)

		var err error
		expense, err = expenses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		if err := guardSchool(actor, expense.SchoolID); err != nil {
			return err
		}

		count, err := payments.CountByExpense(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRejectWithPayments
		}
		if !expense.Status.Rejectable() {
			return ErrNotRejectable
		}

		expense.Status = models.StatusRejected
		expense.ApprovedBy = nil
		expense.ApprovedAt = nil
		expense.UpdatedBy = &actor.ID
		if reason != "" {
			if expense.Notes != "" {
				expense.Notes += "\n"
			}
			expense.Notes += "Rejected: " + reason
		}

		return expenses.Update(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int64("expense_id", expense.ID).
		Int64("rejected_by", actor.ID).
		Msg("expense rejected")
	return expense, nil
}

// Get retrieves a single expense.
func (s *ExpenseService) Get(ctx context.Context, id int64, actor Actor) (*models.Expense, error) {
	expenses := repository.NewExpenseRepository(s.db)
	expense, err := expenses.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if err := guardSchool(actor, expense.SchoolID); err != nil {
		return nil, err
	}
	return expense, nil
}

// List retrieves expenses matching the filter. The filter's school scope is
// required and must agree with the actor's assigned school.
func (s *ExpenseService) List(ctx context.Context, filter repository.ExpenseFilter, actor Actor) ([]models.Expense, error) {
	if filter.SchoolID == 0 {
		return nil, NewValidationError("schoolId", "school scope is required")
	}
	if err := guardSchool(actor, filter.SchoolID); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	expenses := repository.NewExpenseRepository(s.db)
	return expenses.List(ctx, filter)
}

// Reconcile recomputes an expense's status from its payments under the row
// lock. It is idempotent: with no intervening payment change the second
// call performs no write and returns the same result.
func (s *ExpenseService) Reconcile(ctx context.Context, id int64) (ReconcileResult, error) {
	var result ReconcileResult
	err := withTx(ctx, s.db, func(tx database.PGXDB) error {
		expenses := repository.NewExpenseRepository(tx)
		expense, err := expenses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		result, err = reconcileExpense(ctx, tx, expense)
		return err
	})
	return result, err
}

// resolveSchool determines which school a create operation targets:
// the explicit school if given, otherwise the actor's assigned school.
// An explicit school that conflicts with the actor's assignment is a
// cross-school violation.
func resolveSchool(explicit int64, actor Actor) (int64, error) {
	if explicit != 0 {
		if err := guardSchool(actor, explicit); err != nil {
			return 0, err
		}
		return explicit, nil
	}
	if actor.SchoolID != 0 {
		return actor.SchoolID, nil
	}
	return 0, NewValidationError("schoolId", "school is required")
}

// applyExpensePatch copies the non-nil whitelisted fields onto the expense.
func applyExpensePatch(expense *models.Expense, input UpdateExpenseInput) {
	if input.SessionID != nil {
		expense.SessionID = input.SessionID
	}
	if input.TermID != nil {
		expense.TermID = input.TermID
	}
	if input.Title != nil {
		expense.Title = *input.Title
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Type != nil {
		expense.Type = *input.Type
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Currency != nil {
		expense.Currency = models.NormalizeCurrency(*input.Currency)
	}
	if input.Month != nil {
		expense.Month = *input.Month
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = *input.ExpenseDate
	}
	if input.Notes != nil {
		expense.Notes = *input.Notes
	}
	if input.Attachments != nil {
		expense.Attachments = input.Attachments
	}
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func withTx(ctx context.Context, db database.DB, fn func(tx database.PGXDB) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// asNotFound translates a missing-row error into the service taxonomy.
func asNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
