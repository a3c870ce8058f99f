package models

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseExpenseStatus(t *testing.T) {
	t.Parallel()

	t.Run("accepts canonical values", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"draft", "pending_approval", "approved", "rejected", "partially_paid", "paid"} {
			status, err := ParseExpenseStatus(raw)
			require.NoError(t, err)
			require.Equal(t, ExpenseStatus(raw), status)
		}
	})

	t.Run("normalizes casing and separators", func(t *testing.T) {
		t.Parallel()
		cases := map[string]ExpenseStatus{
			"Pending Approval":  StatusPendingApproval,
			"PENDING-APPROVAL":  StatusPendingApproval,
			"  paid  ":          StatusPaid,
			"Partially   Paid":  StatusPartiallyPaid,
			"partially--paid":   StatusPartiallyPaid,
			"pending -approval": StatusPendingApproval,
		}
		for raw, want := range cases {
			status, err := ParseExpenseStatus(raw)
			require.NoError(t, err, "input %q", raw)
			require.Equal(t, want, status, "input %q", raw)
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"", "unknown", "pending approval extra", "approved!"} {
			_, err := ParseExpenseStatus(raw)
			require.Error(t, err, "input %q", raw)
		}
	})
}

func TestParseExpenseStatus_NormalizationIsIdempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SampledFrom([]ExpenseStatus{
			StatusDraft, StatusPendingApproval, StatusApproved,
			StatusRejected, StatusPartiallyPaid, StatusPaid,
		}).Draw(t, "base")

		// Mangle the canonical value the way sloppy callers do.
		mangled := string(base)
		if rapid.Bool().Draw(t, "upper") {
			mangled = strings.ToUpper(mangled)
		}
		sep := rapid.SampledFrom([]string{" ", "-", "  ", " - "}).Draw(t, "sep")
		mangled = strings.ReplaceAll(mangled, "_", sep)

		got, err := ParseExpenseStatus(mangled)
		if err != nil {
			t.Fatalf("normalization of %q failed: %v", mangled, err)
		}
		if got != base {
			t.Fatalf("normalization of %q: got %q, want %q", mangled, got, base)
		}
	})
}

func TestExpenseStatus_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("approvable only from pending_approval and rejected", func(t *testing.T) {
		t.Parallel()
		require.True(t, StatusPendingApproval.Approvable())
		require.True(t, StatusRejected.Approvable())
		require.False(t, StatusApproved.Approvable())
		require.False(t, StatusPartiallyPaid.Approvable())
		require.False(t, StatusPaid.Approvable())
		require.False(t, StatusDraft.Approvable())
	})

	t.Run("rejectable from pending_approval, approved and partially_paid", func(t *testing.T) {
		t.Parallel()
		require.True(t, StatusPendingApproval.Rejectable())
		require.True(t, StatusApproved.Rejectable())
		require.True(t, StatusPartiallyPaid.Rejectable())
		require.False(t, StatusPaid.Rejectable())
		require.False(t, StatusRejected.Rejectable())
		require.False(t, StatusDraft.Rejectable())
	})

	t.Run("reconcilable only past approval", func(t *testing.T) {
		t.Parallel()
		require.True(t, StatusApproved.Reconcilable())
		require.True(t, StatusPartiallyPaid.Reconcilable())
		require.True(t, StatusPaid.Reconcilable())
		require.False(t, StatusDraft.Reconcilable())
		require.False(t, StatusPendingApproval.Reconcilable())
		require.False(t, StatusRejected.Reconcilable())
	})
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	amount := decimal.NewFromInt(50000)

	t.Run("zero paid is approved", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, StatusApproved, DeriveStatus(decimal.Zero, amount))
	})

	t.Run("partial payment is partially_paid", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, StatusPartiallyPaid, DeriveStatus(decimal.NewFromInt(25000), amount))
	})

	t.Run("exact payment is paid", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, StatusPaid, DeriveStatus(decimal.NewFromInt(50000), amount))
	})

	t.Run("excess payment is still paid", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, StatusPaid, DeriveStatus(decimal.NewFromInt(60000), amount))
	})

	t.Run("negative total is approved", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, StatusApproved, DeriveStatus(decimal.NewFromInt(-1), amount))
	})
}

func TestDeriveStatus_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		amount := decimal.NewFromInt(rapid.Int64Range(1, 1_000_000).Draw(t, "amount"))
		total := decimal.NewFromInt(rapid.Int64Range(-1000, 2_000_000).Draw(t, "total"))

		status := DeriveStatus(total, amount)

		switch {
		case !total.IsPositive():
			if status != StatusApproved {
				t.Fatalf("total %s amount %s: got %q, want approved", total, amount, status)
			}
		case total.LessThan(amount):
			if status != StatusPartiallyPaid {
				t.Fatalf("total %s amount %s: got %q, want partially_paid", total, amount, status)
			}
		default:
			if status != StatusPaid {
				t.Fatalf("total %s amount %s: got %q, want paid", total, amount, status)
			}
		}
	})
}

func TestBalance(t *testing.T) {
	t.Parallel()

	t.Run("remaining amount", func(t *testing.T) {
		t.Parallel()
		b := Balance(decimal.NewFromInt(100), decimal.NewFromInt(40))
		require.True(t, b.Equal(decimal.NewFromInt(60)))
	})

	t.Run("clamped at zero on overshoot", func(t *testing.T) {
		t.Parallel()
		b := Balance(decimal.NewFromInt(100), decimal.NewFromInt(140))
		require.True(t, b.IsZero())
	})
}
