package service_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
	"gitlab.com/adigun/schoolfin/internal/service"
	"gitlab.com/adigun/schoolfin/internal/service/mocks"
)

// fixture wires the services against a rolled-back test transaction with
// two schools and school-bound actors.
type fixture struct {
	ctx      context.Context
	db       database.DB
	expenses *service.ExpenseService
	payments *service.PaymentService
	uploader *mocks.MockUploader
	renderer *mocks.MockRenderer

	school      *models.School
	otherSchool *models.School

	bursar    service.Actor // finance role at school
	principal service.Actor // approval role at school
	outsider  service.Actor // bound to otherSchool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tx := database.TestTx(t)
	ctx := context.Background()

	schools := repository.NewSchoolRepository(tx)
	school := &models.School{Name: "Unity College", ShortCode: "UC-" + uuid.NewString()[:8]}
	require.NoError(t, schools.Create(ctx, school))
	otherSchool := &models.School{Name: "Harmony Academy", ShortCode: "HA-" + uuid.NewString()[:8]}
	require.NoError(t, schools.Create(ctx, otherSchool))

	uploader := mocks.NewMockUploader()
	renderer := mocks.NewMockRenderer()

	return &fixture{
		ctx:         ctx,
		db:          tx,
		expenses:    service.NewExpenseService(tx, renderer, "NGN"),
		payments:    service.NewPaymentService(tx, uploader, false),
		uploader:    uploader,
		renderer:    renderer,
		school:      school,
		otherSchool: otherSchool,
		bursar:      service.Actor{ID: 101, SchoolID: school.ID},
		principal:   service.Actor{ID: 202, SchoolID: school.ID},
		outsider:    service.Actor{ID: 303, SchoolID: otherSchool.ID},
	}
}

// createExpense records a pending expense for the fixture school.
func (f *fixture) createExpense(t *testing.T, amount int64) *models.Expense {
	t.Helper()

	expense, err := f.expenses.Create(f.ctx, service.CreateExpenseInput{
		Title:  "Library books",
		Type:   models.TypeAcademicResources,
		Amount: decimal.NewFromInt(amount),
		Month:  "2025-09",
	}, f.bursar)
	require.NoError(t, err)
	return expense
}

// approvedExpense records an expense and approves it.
func (f *fixture) approvedExpense(t *testing.T, amount int64) *models.Expense {
	t.Helper()

	expense := f.createExpense(t, amount)
	approved, err := f.expenses.Approve(f.ctx, expense.ID, f.principal)
	require.NoError(t, err)
	return approved
}

// receiptFile writes a throwaway receipt the payment service can upload
// and then remove.
func receiptFile(t *testing.T) string {
	t.Helper()

	file, err := os.CreateTemp(t.TempDir(), "receipt-*.pdf")
	require.NoError(t, err)
	_, err = file.WriteString("receipt bytes")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	return file.Name()
}

// paymentInput builds a valid payment input for the given amount.
func paymentInput(t *testing.T, amount int64) service.CreatePaymentInput {
	t.Helper()

	return service.CreatePaymentInput{
		PayeeType:   models.PayeeVendor,
		PayeeName:   "Lantern Books Ltd",
		AmountPaid:  decimal.NewFromInt(amount),
		Method:      models.MethodBankTransfer,
		ReceiptPath: receiptFile(t),
	}
}
