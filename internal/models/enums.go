package models

import "fmt"

// ExpenseType categorizes what an expense was incurred for.
type ExpenseType string

// Expense categories.
const (
	TypeStaffSalary           ExpenseType = "StaffSalary"
	TypeStaffAllowance        ExpenseType = "StaffAllowance"
	TypeVendorService         ExpenseType = "VendorService"
	TypeConsumables           ExpenseType = "Consumables"
	TypeFacilitiesMaintenance ExpenseType = "FacilitiesMaintenance"
	TypeAcademicResources     ExpenseType = "AcademicResources"
	TypeStudentActivities     ExpenseType = "StudentActivities"
	TypeTransportation        ExpenseType = "Transportation"
	TypeTechnology            ExpenseType = "Technology"
	TypeAdministrative        ExpenseType = "Administrative"
	TypeUtilities             ExpenseType = "Utilities"
	TypeCapitalProject        ExpenseType = "CapitalProject"
	TypeOthers                ExpenseType = "Others"
)

var expenseTypes = map[ExpenseType]bool{
	TypeStaffSalary:           true,
	TypeStaffAllowance:        true,
	TypeVendorService:         true,
	TypeConsumables:           true,
	TypeFacilitiesMaintenance: true,
	TypeAcademicResources:     true,
	TypeStudentActivities:     true,
	TypeTransportation:        true,
	TypeTechnology:            true,
	TypeAdministrative:        true,
	TypeUtilities:             true,
	TypeCapitalProject:        true,
	TypeOthers:                true,
}

// ParseExpenseType validates a caller-supplied expense category.
func ParseExpenseType(raw string) (ExpenseType, error) {
	t := ExpenseType(raw)
	if !expenseTypes[t] {
		return "", fmt.Errorf("unknown expense type %q", raw)
	}
	return t, nil
}

// Valid reports whether the type is one of the defined categories.
func (t ExpenseType) Valid() bool {
	return expenseTypes[t]
}

// PayeeType says who a payment went to.
type PayeeType string

// Payee kinds.
const (
	PayeeStaff  PayeeType = "Staff"
	PayeeVendor PayeeType = "Vendor"
	PayeeOther  PayeeType = "Other"
)

// ParsePayeeType validates a caller-supplied payee type.
func ParsePayeeType(raw string) (PayeeType, error) {
	switch t := PayeeType(raw); t {
	case PayeeStaff, PayeeVendor, PayeeOther:
		return t, nil
	default:
		return "", fmt.Errorf("unknown payee type %q", raw)
	}
}

// PaymentMethod says how a payment was made.
type PaymentMethod string

// Payment methods.
const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodOther        PaymentMethod = "other"
)

// ParsePaymentMethod validates a caller-supplied payment method.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case MethodBankTransfer, MethodCash, MethodCheque, MethodMobileMoney, MethodOther:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}
