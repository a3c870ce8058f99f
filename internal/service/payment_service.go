package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/logger"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
)

// receiptFolder is the object-storage folder receipts are uploaded into.
const receiptFolder = "expense-receipts"

// PaymentService orchestrates disbursement records against approved
// expenses: balance checks, receipt uploads and status reconciliation.
type PaymentService struct {
	db       database.DB
	uploader ReceiptUploader

	// deleteReplacedReceipts enables best-effort cleanup of the previous
	// receipt artifact after a replacement upload. Off by default so old
	// receipts remain available for audit.
	deleteReplacedReceipts bool
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(db database.DB, uploader ReceiptUploader, deleteReplacedReceipts bool) *PaymentService {
	return &PaymentService{db: db, uploader: uploader, deleteReplacedReceipts: deleteReplacedReceipts}
}

// CreatePaymentInput carries the fields accepted when recording a payment.
type CreatePaymentInput struct {
	PayeeType      models.PayeeType
	PayeeID        *int64
	PayeeName      string
	PaymentDate    time.Time // zero value defaults to now
	AmountPaid     decimal.Decimal
	Currency       string
	Method         models.PaymentMethod
	TransactionRef string // auto-generated when empty
	PeriodCovered  string
	ReceiptPath    string // local temp file; uploaded before the record is persisted
	Notes          string
	Breakdown      models.PaymentBreakdown
}

// UpdatePaymentInput is a partial update; nil fields are left unchanged.
type UpdatePaymentInput struct {
	PayeeType     *models.PayeeType
	PayeeID       *int64
	PayeeName     *string
	PaymentDate   *time.Time
	AmountPaid    *decimal.Decimal
	Currency      *string
	Method        *models.PaymentMethod
	PeriodCovered *string
	ReceiptPath   string // non-empty replaces the receipt
	Notes         *string
	Breakdown     *models.PaymentBreakdown
}

// PaymentResult couples a payment with the parent expense's recomputed
// totals.
type PaymentResult struct {
	Payment   *models.ExpensePayment
	TotalPaid decimal.Decimal
	Balance   decimal.Decimal
}

// Create records a payment against an approved expense. The receipt is
// uploaded first; the record is only persisted once a secure URL exists,
// and the uploaded artifact is removed again if persistence fails. The
// balance check and the insert run under the expense row lock, so two
// concurrent payments cannot both pass against a stale total.
func (s *PaymentService) Create(ctx context.Context, expenseID int64, input CreatePaymentInput, actor Actor) (*PaymentResult, error) {
	// The staged temp file is removed no matter where this method exits,
	// including validation and guard failures before the upload.
	if input.ReceiptPath != "" {
		defer s.removeTempFile(input.ReceiptPath)
	}

	if !models.ValidAmount(input.AmountPaid) {
		return nil, NewValidationError("amountPaid", "amount paid must be greater than zero")
	}
	if _, err := models.ParsePayeeType(string(input.PayeeType)); err != nil {
		return nil, NewValidationError("payeeType", err.Error())
	}
	if _, err := models.ParsePaymentMethod(string(input.Method)); err != nil {
		return nil, NewValidationError("paymentMethod", err.Error())
	}
	if input.ReceiptPath == "" {
		return nil, NewValidationError("receipt", "a receipt is required for every payment")
	}

	// Fast-fail before the upload; every check is repeated under the lock.
	expenses := repository.NewExpenseRepository(s.db)
	expense, err := expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if err := guardSchool(actor, expense.SchoolID); err != nil {
		return nil, err
	}
	if err := payableStatus(expense.Status); err != nil {
		return nil, err
	}

	txRef := input.TransactionRef
	if txRef == "" {
		txRef = generateTransactionRef()
	}

	publicID := receiptFolder + "/" + txRef
	receiptURL, err := s.uploader.Upload(ctx, input.ReceiptPath, "auto", receiptFolder, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	currency := input.Currency
	if currency == "" {
		currency = expense.Currency
	}

	payment := &models.ExpensePayment{
		ExpenseID:       expenseID,
		SchoolID:        expense.SchoolID,
		PayeeType:       input.PayeeType,
		PayeeID:         input.PayeeID,
		PayeeName:       input.PayeeName,
		PaymentDate:     paymentDate,
		AmountPaid:      input.AmountPaid,
		Currency:        models.NormalizeCurrency(currency),
		Method:          input.Method,
		TransactionRef:  txRef,
		PeriodCovered:   input.PeriodCovered,
		ReceiptURL:      receiptURL,
		ReceiptPublicID: publicID,
		Notes:           input.Notes,
		Breakdown:       input.Breakdown,
		RecordedBy:      actor.ID,
	}

	var result ReconcileResult
	err = withTx(ctx, s.db, func(tx database.PGXDB) error {
		txExpenses := repository.NewExpenseRepository(tx)
		txPayments := repository.NewPaymentRepository(tx)

		locked, err := txExpenses.GetByIDForUpdate(ctx, expenseID)
		if err != nil {
			return asNotFound(err)
		}
		if err := payableStatus(locked.Status); err != nil {
			return err
		}
		// The locked row is authoritative; the pre-upload read may be stale.
		expense = locked

		total, err := txPayments.SumByExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if total.Add(payment.AmountPaid).GreaterThan(locked.Amount) {
			return ErrOverPayment
		}

		if err := txPayments.Create(ctx, payment); err != nil {
			return err
		}

		result, err = reconcileExpense(ctx, tx, locked)
		return err
	})
	if err != nil {
		// The record was not persisted; drop the now-orphaned artifact.
		s.cleanupArtifact(ctx, publicID)
		return nil, err
	}

	logger.Log.Info().
		Int64("payment_id", payment.ID).
		Int64("expense_id", expenseID).
		Str("transaction_ref", txRef).
		Str("status", string(result.Status)).
		Msg("payment recorded")

	return &PaymentResult{
		Payment:   payment,
		TotalPaid: result.TotalPaid,
		Balance:   result.Balance(expense.Amount),
	}, nil
}

// Update applies a partial update to a payment, re-checking the balance
// invariant against the revised total and reconciling afterwards.
func (s *PaymentService) Update(ctx context.Context, id int64, input UpdatePaymentInput, actor Actor) (*PaymentResult, error) {
	if input.ReceiptPath != "" {
		defer s.removeTempFile(input.ReceiptPath)
	}

	if input.AmountPaid != nil && !models.ValidAmount(*input.AmountPaid) {
		return nil, NewValidationError("amountPaid", "amount paid must be greater than zero")
	}
	if input.PayeeType != nil {
		if _, err := models.ParsePayeeType(string(*input.PayeeType)); err != nil {
			return nil, NewValidationError("payeeType", err.Error())
		}
	}
	if input.Method != nil {
		if _, err := models.ParsePaymentMethod(string(*input.Method)); err != nil {
			return nil, NewValidationError("paymentMethod", err.Error())
		}
	}

	payments := repository.NewPaymentRepository(s.db)
	existing, err := payments.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if err := guardSchool(actor, existing.SchoolID); err != nil {
		return nil, err
	}

	// Replacement receipt is uploaded before the transaction so the row
	// lock is never held across a network call.
	var newReceiptURL, newPublicID string
	if input.ReceiptPath != "" {
		newPublicID = receiptFolder + "/" + existing.TransactionRef + "-" + shortToken()
		newReceiptURL, err = s.uploader.Upload(ctx, input.ReceiptPath, "auto", receiptFolder, newPublicID)
		if err != nil {
			return nil, fmt.Errorf("failed to upload receipt: %w", err)
		}
	}

	var payment *models.ExpensePayment
	var expense *models.Expense
	var result ReconcileResult
	err = withTx(ctx, s.db, func(tx database.PGXDB) error {
		txExpenses := repository.NewExpenseRepository(tx)
		txPayments := repository.NewPaymentRepository(tx)

		var err error
		expense, err = txExpenses.GetByIDForUpdate(ctx, existing.ExpenseID)
		if err != nil {
			return asNotFound(err)
		}

		// Re-read under the expense lock; every payment mutation holds it.
		payment, err = txPayments.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err)
		}

		previousAmount := payment.AmountPaid
		applyPaymentPatch(payment, input)
		if newReceiptURL != "" {
			payment.ReceiptURL = newReceiptURL
			payment.ReceiptPublicID = newPublicID
		}

		total, err := txPayments.SumByExpense(ctx, payment.ExpenseID)
		if err != nil {
			return err
		}
		revised := total.Sub(previousAmount).Add(payment.AmountPaid)
		if revised.GreaterThan(expense.Amount) {
			return ErrOverPayment
		}

		if err := txPayments.Update(ctx, payment); err != nil {
			return err
		}

		result, err = reconcileExpense(ctx, tx, expense)
		return err
	})
	if err != nil {
		if newPublicID != "" {
			s.cleanupArtifact(ctx, newPublicID)
		}
		return nil, err
	}

	if newReceiptURL != "" && s.deleteReplacedReceipts && existing.ReceiptPublicID != "" {
		// Old receipts are retained unless cleanup is enabled; failures are
		// logged, never returned.
		if err := s.uploader.Delete(ctx, existing.ReceiptPublicID); err != nil {
			logger.Log.Warn().Err(err).
				Int64("payment_id", id).
				Msg("failed to delete replaced receipt")
		}
	}

	return &PaymentResult{
		Payment:   payment,
		TotalPaid: result.TotalPaid,
		Balance:   result.Balance(expense.Amount),
	}, nil
}

// Delete removes a payment and reconciles the parent expense. This is the
// path that can move a paid expense back to partially_paid or approved.
func (s *PaymentService) Delete(ctx context.Context, id int64, actor Actor) error {
	return withTx(ctx, s.db, func(tx database.PGXDB) error {
		txExpenses := repository.NewExpenseRepository(tx)
		txPayments := repository.NewPaymentRepository(tx)

		payment, err := txPayments.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err)
		}
		if err := guardSchool(actor, payment.SchoolID); err != nil {
			return err
		}

		expense, err := txExpenses.GetByIDForUpdate(ctx, payment.ExpenseID)
		if err != nil {
			return asNotFound(err)
		}

		if err := txPayments.Delete(ctx, id); err != nil {
			return err
		}

		_, err = reconcileExpense(ctx, tx, expense)
		return err
	})
}

// Get retrieves a single payment.
func (s *PaymentService) Get(ctx context.Context, id int64, actor Actor) (*models.ExpensePayment, error) {
	payments := repository.NewPaymentRepository(s.db)
	payment, err := payments.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err)
	}
	if err := guardSchool(actor, payment.SchoolID); err != nil {
		return nil, err
	}
	return payment, nil
}

// List retrieves payments matching the filter. The filter's school scope is
// required and must agree with the actor's assigned school.
func (s *PaymentService) List(ctx context.Context, filter repository.PaymentFilter, actor Actor) ([]models.ExpensePayment, error) {
	if filter.SchoolID == 0 {
		return nil, NewValidationError("schoolId", "school scope is required")
	}
	if err := guardSchool(actor, filter.SchoolID); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	payments := repository.NewPaymentRepository(s.db)
	return payments.List(ctx, filter)
}

// CalculateAmountPaid sums all payments recorded against an expense.
// Returns zero for an expense with no payments.
func (s *PaymentService) CalculateAmountPaid(ctx context.Context, expenseID int64) (decimal.Decimal, error) {
	payments := repository.NewPaymentRepository(s.db)
	return payments.SumByExpense(ctx, expenseID)
}

// payableStatus checks that an expense can accept payments.
func payableStatus(status models.ExpenseStatus) error {
	if status != models.StatusApproved && status != models.StatusPartiallyPaid {
		return ErrExpenseNotPayable
	}
	return nil
}

// applyPaymentPatch copies the non-nil fields onto the payment.
func applyPaymentPatch(payment *models.ExpensePayment, input UpdatePaymentInput) {
	if input.PayeeType != nil {
		payment.PayeeType = *input.PayeeType
	}
	if input.PayeeID != nil {
		payment.PayeeID = input.PayeeID
	}
	if input.PayeeName != nil {
		payment.PayeeName = *input.PayeeName
	}
	if input.PaymentDate != nil {
		payment.PaymentDate = *input.PaymentDate
	}
	if input.AmountPaid != nil {
		payment.AmountPaid = *input.AmountPaid
	}
	if input.Currency != nil {
		payment.Currency = models.NormalizeCurrency(*input.Currency)
	}
	if input.Method != nil {
		payment.Method = *input.Method
	}
	if input.PeriodCovered != nil {
		payment.PeriodCovered = *input.PeriodCovered
	}
	if input.Notes != nil {
		payment.Notes = *input.Notes
	}
	if input.Breakdown != nil {
		payment.Breakdown = *input.Breakdown
	}
}

// cleanupArtifact removes an uploaded receipt after the surrounding
// operation failed. Best effort; the primary error is never masked.
func (s *PaymentService) cleanupArtifact(ctx context.Context, publicID string) {
	if err := s.uploader.Delete(ctx, publicID); err != nil {
		logger.Log.Warn().Err(err).Str("public_id", publicID).Msg("failed to clean up uploaded receipt")
	}
}

// removeTempFile deletes the caller's local temp file in all paths.
func (s *PaymentService) removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Str("path", path).Msg("failed to remove temp receipt file")
	}
}

// generateTransactionRef creates a reference like EXP-3F2A9C41D07B.
func generateTransactionRef() string {
	return "EXP-" + shortToken()
}

// shortToken returns 12 uppercase hex characters of randomness.
func shortToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
}
