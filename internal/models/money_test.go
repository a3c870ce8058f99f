package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidMonth(t *testing.T) {
	t.Parallel()

	valid := []string{"2025-01", "2025-12", "1999-06"}
	for _, m := range valid {
		require.True(t, ValidMonth(m), "month %q", m)
	}

	invalid := []string{"", "2025-13", "2025-00", "2025-1", "25-01", "2025/01", "2025-01-15", "January 2025"}
	for _, m := range invalid {
		require.False(t, ValidMonth(m), "month %q", m)
	}
}

func TestValidAmount(t *testing.T) {
	t.Parallel()

	require.True(t, ValidAmount(decimal.NewFromFloat(0.01)))
	require.True(t, ValidAmount(decimal.NewFromInt(150000)))
	require.False(t, ValidAmount(decimal.Zero))
	require.False(t, ValidAmount(decimal.NewFromInt(-5)))
}

func TestNormalizeCurrency(t *testing.T) {
	t.Parallel()

	require.Equal(t, "NGN", NormalizeCurrency(""))
	require.Equal(t, "NGN", NormalizeCurrency("  "))
	require.Equal(t, "NGN", NormalizeCurrency("ngn"))
	require.Equal(t, "USD", NormalizeCurrency(" usd "))
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	t.Run("parses positive amounts", func(t *testing.T) {
		t.Parallel()
		d, err := ParseAmount("75000.50")
		require.NoError(t, err)
		require.True(t, d.Equal(decimal.NewFromFloat(75000.50)))
	})

	t.Run("rejects zero, negative and malformed", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"0", "-10", "", "abc", "1,000"} {
			_, err := ParseAmount(raw)
			require.Error(t, err, "input %q", raw)
		}
	})
}
