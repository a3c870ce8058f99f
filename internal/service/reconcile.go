package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
)

// ReconcileResult is the outcome of recomputing an expense's status from
// the sum of its payments.
type ReconcileResult struct {
	TotalPaid decimal.Decimal
	Status    models.ExpenseStatus
	// Changed reports whether the status was actually rewritten.
	Changed bool
}

// Balance returns the remaining unpaid amount for the reconciled expense,
// clamped at zero.
func (r ReconcileResult) Balance(amount decimal.Decimal) decimal.Decimal {
	return models.Balance(amount, r.TotalPaid)
}

// reconcileExpense recomputes the payment-driven status of an expense and
// persists it only when it changed. The caller must hold the expense row
// lock in db, so the sum it reads cannot move under it.
//
// The recompute only applies to expenses already past approval; an expense
// still pending approval, rejected, or in draft keeps its status no matter
// what payments exist.
func reconcileExpense(ctx context.Context, db database.PGXDB, exp *models.Expense) (ReconcileResult, error) {
	payments := repository.NewPaymentRepository(db)

	total, err := payments.SumByExpense(ctx, exp.ID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile expense %d: %w", exp.ID, err)
	}

	result := ReconcileResult{TotalPaid: total, Status: exp.Status}
	if !exp.Status.Reconcilable() {
		return result, nil
	}

	next := models.DeriveStatus(total, exp.Amount)
	if next == exp.Status {
		return result, nil
	}

	expenses := repository.NewExpenseRepository(db)
	if err := expenses.UpdateStatus(ctx, exp.ID, next); err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile expense %d: %w", exp.ID, err)
	}
	exp.Status = next
	result.Status = next
	result.Changed = true
	return result, nil
}
