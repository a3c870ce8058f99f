package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/models"
)

// ReceiptUploader stores receipt files in external object storage.
// Implementations live outside this service.
type ReceiptUploader interface {
	// Upload pushes a local file to object storage and returns its secure
	// URL. publicID identifies the stored artifact for later deletion.
	Upload(ctx context.Context, localPath, resourceType, folder, publicID string) (string, error)

	// Delete removes a previously uploaded artifact.
	Delete(ctx context.Context, publicID string) error
}

// ExpenseReportRow is one expense line in a rendered report.
type ExpenseReportRow struct {
	Expense   models.Expense
	TotalPaid decimal.Decimal
	Balance   decimal.Decimal
}

// ExpenseReport is the fully computed input handed to the document
// renderer. The renderer only formats; all numbers are computed here.
type ExpenseReport struct {
	School      models.School
	Rows        []ExpenseReportRow
	TotalAmount decimal.Decimal
	TotalPaid   decimal.Decimal
	TotalUnpaid decimal.Decimal
	ByType      map[models.ExpenseType]decimal.Decimal
}

// DocumentRenderer turns a computed expense report into a downloadable
// document. Implementations live outside this service.
type DocumentRenderer interface {
	RenderExpenseReport(ctx context.Context, report ExpenseReport) ([]byte, error)
}
