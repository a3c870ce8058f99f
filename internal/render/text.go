// Package render provides a plain-text expense report renderer for
// development. Production deployments inject the real document-generation
// service instead.
package render

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/adigun/schoolfin/internal/service"
)

// Compile-time check.
var _ service.DocumentRenderer = (*TextRenderer)(nil)

// TextRenderer formats an expense report as a plain-text table.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// RenderExpenseReport formats the already-computed report rows and footer.
func (r *TextRenderer) RenderExpenseReport(_ context.Context, report service.ExpenseReport) ([]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Expense Report: %s (%s)\n\n", report.School.Name, report.School.ShortCode)

	for _, row := range report.Rows {
		fmt.Fprintf(&sb, "%-10s %-24s %-22s %12s %12s %12s  %s\n",
			row.Expense.Month,
			truncate(row.Expense.Title, 24),
			row.Expense.Type,
			row.Expense.Amount.StringFixed(2),
			row.TotalPaid.StringFixed(2),
			row.Balance.StringFixed(2),
			row.Expense.Status,
		)
	}

	fmt.Fprintf(&sb, "\nTotal:  %s\nPaid:   %s\nUnpaid: %s\n",
		report.TotalAmount.StringFixed(2),
		report.TotalPaid.StringFixed(2),
		report.TotalUnpaid.StringFixed(2),
	)
	for expenseType, total := range report.ByType {
		fmt.Fprintf(&sb, "  %-22s %s\n", expenseType, total.StringFixed(2))
	}

	return []byte(sb.String()), nil
}

// truncate shortens s to at most n characters, counting runes so a cut
// never lands inside a multibyte sequence.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
