package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/repository"
)

// TypeTotal is the per-category slice of a month's spending.
type TypeTotal struct {
	Type  models.ExpenseType
	Total decimal.Decimal
	Count int64
}

// MonthSummary groups a month's expenses with a per-type breakdown.
type MonthSummary struct {
	Month      string
	MonthTotal decimal.Decimal
	Count      int64
	ByType     []TypeTotal
}

// Summary aggregates expenses by month and type: first grouped by
// (month, type) in the database, then regrouped per month with a nested
// breakdown and a month total. Months are ordered descending.
func (s *ExpenseService) Summary(ctx context.Context, filter repository.ExpenseFilter, actor Actor) ([]MonthSummary, error) {
	if filter.SchoolID == 0 {
		return nil, NewValidationError("schoolId", "school scope is required")
	}
	if err := guardSchool(actor, filter.SchoolID); err != nil {
		return nil, err
	}

	expenses := repository.NewExpenseRepository(s.db)
	rows, err := expenses.SummaryByMonthAndType(ctx, filter)
	if err != nil {
		return nil, err
	}

	var summaries []MonthSummary
	for _, row := range rows {
		if len(summaries) == 0 || summaries[len(summaries)-1].Month != row.Month {
			summaries = append(summaries, MonthSummary{Month: row.Month})
		}
		m := &summaries[len(summaries)-1]
		m.ByType = append(m.ByType, TypeTotal{Type: row.Type, Total: row.Total, Count: row.Count})
		m.MonthTotal = m.MonthTotal.Add(row.Total)
		m.Count += row.Count
	}
	return summaries, nil
}

// ExportPDF renders the filtered expenses into a downloadable document.
// The summary footer numbers (total, paid, unpaid, per-type) are computed
// here; the renderer only formats. Fails with ErrNotFound when the filter
// matches no expenses.
func (s *ExpenseService) ExportPDF(ctx context.Context, filter repository.ExpenseFilter, actor Actor) ([]byte, error) {
	if filter.SchoolID == 0 {
		return nil, NewValidationError("schoolId", "school scope is required")
	}
	if err := guardSchool(actor, filter.SchoolID); err != nil {
		return nil, err
	}

	expenses := repository.NewExpenseRepository(s.db)
	// Export covers the whole filtered set, not a page of it.
	filter.Limit = 0
	filter.Offset = 0
	list, err := expenses.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}

	schools := repository.NewSchoolRepository(s.db)
	school, err := schools.GetByID(ctx, filter.SchoolID)
	if err != nil {
		return nil, asNotFound(err)
	}

	ids := make([]int64, len(list))
	for i, exp := range list {
		ids[i] = exp.ID
	}
	payments := repository.NewPaymentRepository(s.db)
	paidTotals, err := payments.TotalsByExpenses(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := ExpenseReport{
		School: *school,
		ByType: make(map[models.ExpenseType]decimal.Decimal),
	}
	for _, exp := range list {
		paid := paidTotals[exp.ID]
		report.Rows = append(report.Rows, ExpenseReportRow{
			Expense:   exp,
			TotalPaid: paid,
			Balance:   models.Balance(exp.Amount, paid),
		})
		report.TotalAmount = report.TotalAmount.Add(exp.Amount)
		report.TotalPaid = report.TotalPaid.Add(paid)
		report.ByType[exp.Type] = report.ByType[exp.Type].Add(exp.Amount)
	}
	report.TotalUnpaid = models.Balance(report.TotalAmount, report.TotalPaid)

	return s.renderer.RenderExpenseReport(ctx, report)
}
