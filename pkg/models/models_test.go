package models

import "testing"

func TestLoanStatusTerminal(t *testing.T) {
	for _, s := range []LoanStatus{LoanStatusRejected, LoanStatusPaid} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []LoanStatus{LoanStatusPending, LoanStatusApproved} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if LoanStatus("Closed").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestEnumValid(t *testing.T) {
	if !TransactionTypeIncome.Valid() || !TransactionTypeExpense.Valid() || TransactionType("Refund").Valid() {
		t.Error("transaction type validation is wrong")
	}
	if !TransactionMethodCash.Valid() || !TransactionMethodBank.Valid() || TransactionMethod("Card").Valid() {
		t.Error("transaction method validation is wrong")
	}
}
