package render

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/adigun/schoolfin/internal/models"
	"gitlab.com/adigun/schoolfin/internal/service"
)

func TestTextRenderer_RenderExpenseReport(t *testing.T) {
	t.Parallel()

	report := service.ExpenseReport{
		School: models.School{Name: "Unity College", ShortCode: "UC"},
		Rows: []service.ExpenseReportRow{
			{
				Expense: models.Expense{
					Month:  "2025-09",
					Title:  "Library books",
					Type:   models.TypeAcademicResources,
					Amount: decimal.NewFromInt(100000),
					Status: models.StatusPartiallyPaid,
				},
				TotalPaid: decimal.NewFromInt(40000),
				Balance:   decimal.NewFromInt(60000),
			},
		},
		TotalAmount: decimal.NewFromInt(100000),
		TotalPaid:   decimal.NewFromInt(40000),
		TotalUnpaid: decimal.NewFromInt(60000),
		ByType: map[models.ExpenseType]decimal.Decimal{
			models.TypeAcademicResources: decimal.NewFromInt(100000),
		},
	}

	out, err := NewTextRenderer().RenderExpenseReport(context.Background(), report)
	require.NoError(t, err)

	text := string(out)
	require.Contains(t, text, "Expense Report: Unity College (UC)")
	require.Contains(t, text, "Library books")
	require.Contains(t, text, "40000.00")
	require.Contains(t, text, "Unpaid: 60000.00")
	require.True(t, utf8.ValidString(text))
}

func TestTextRenderer_MultibyteTitles(t *testing.T) {
	t.Parallel()

	// A long title full of multibyte runes must not be cut mid-sequence.
	title := strings.Repeat("Kénø ", 10)
	report := service.ExpenseReport{
		School: models.School{Name: "Unity College", ShortCode: "UC"},
		Rows: []service.ExpenseReportRow{
			{
				Expense: models.Expense{
					Month:  "2025-09",
					Title:  title,
					Type:   models.TypeOthers,
					Amount: decimal.NewFromInt(1000),
					Status: models.StatusApproved,
				},
				TotalPaid: decimal.Zero,
				Balance:   decimal.NewFromInt(1000),
			},
		},
		TotalAmount: decimal.NewFromInt(1000),
		TotalUnpaid: decimal.NewFromInt(1000),
	}

	out, err := NewTextRenderer().RenderExpenseReport(context.Background(), report)
	require.NoError(t, err)
	require.True(t, utf8.ValidString(string(out)))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("short strings pass through", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "Chalk", truncate("Chalk", 24))
	})

	t.Run("long strings are shortened with an ellipsis", func(t *testing.T) {
		t.Parallel()
		got := truncate("Science laboratory reagent restock", 24)
		require.Len(t, []rune(got), 24)
		require.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		t.Parallel()
		got := truncate(strings.Repeat("é", 30), 24)
		require.True(t, utf8.ValidString(got))
		require.Len(t, []rune(got), 24)
		require.Equal(t, strings.Repeat("é", 21)+"...", got)
	})
}
