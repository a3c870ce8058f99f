package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseExpenseType(t *testing.T) {
	t.Parallel()

	t.Run("accepts all defined categories", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{
			"StaffSalary", "StaffAllowance", "VendorService", "Consumables",
			"FacilitiesMaintenance", "AcademicResources", "StudentActivities",
			"Transportation", "Technology", "Administrative", "Utilities",
			"CapitalProject", "Others",
		} {
			parsed, err := ParseExpenseType(raw)
			require.NoError(t, err)
			require.Equal(t, ExpenseType(raw), parsed)
			require.True(t, parsed.Valid())
		}
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"", "staffsalary", "Salaries", "Other"} {
			_, err := ParseExpenseType(raw)
			require.Error(t, err, "input %q", raw)
		}
	})
}

func TestParsePayeeType(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"Staff", "Vendor", "Other"} {
		parsed, err := ParsePayeeType(raw)
		require.NoError(t, err)
		require.Equal(t, PayeeType(raw), parsed)
	}

	for _, raw := range []string{"", "staff", "Others", "Teacher"} {
		_, err := ParsePayeeType(raw)
		require.Error(t, err, "input %q", raw)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"bank_transfer", "cash", "cheque", "mobile_money", "other"} {
		parsed, err := ParsePaymentMethod(raw)
		require.NoError(t, err)
		require.Equal(t, PaymentMethod(raw), parsed)
	}

	for _, raw := range []string{"", "Bank Transfer", "card", "transfer"} {
		_, err := ParsePaymentMethod(raw)
		require.Error(t, err, "input %q", raw)
	}
}
