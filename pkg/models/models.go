package models

import (
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	}
	return false
}

type TransactionMethod string

const (
	TransactionMethodCash TransactionMethod = "Cash"
	TransactionMethodBank TransactionMethod = "Bank"
)

func (m TransactionMethod) Valid() bool {
	switch m {
	case TransactionMethodCash, TransactionMethodBank:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "Pending"
	LoanStatusApproved LoanStatus = "Approved"
	LoanStatusRejected LoanStatus = "Rejected"
	LoanStatusPaid     LoanStatus = "Paid"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusPaid:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s LoanStatus) Terminal() bool {
	switch s {
	case LoanStatusRejected, LoanStatusPaid:
		return true
	case LoanStatusPending, LoanStatusApproved:
		return false
	}
	return false
}

// Categories the ledger writes on generated transactions.
const (
	CategoryContribution     = "Contribution"
	CategoryLoanDisbursement = "Loan Disbursement"
	CategoryLoanRepayment    = "Loan Repayment"
	CategoryProgrammeExpense = "Programme Expense"
)

type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EmployeeID  string `json:"employee_id"`
	JoiningDate Date   `json:"joining_date"`
	Designation string `json:"designation"`
	NIC         string `json:"nic"`
	DOB         Date   `json:"dob"`
	Address     string `json:"address"`
	ContactNo   string `json:"contact_no"`
	Remark      string `json:"remark,omitempty"`
}

type Transaction struct {
	ID          string            `json:"id"`
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	Type        TransactionType   `json:"type"`
	Method      TransactionMethod `json:"method"`
	Amount      decimal.Decimal   `json:"amount"`
	Category    string            `json:"category"` // e.g. Contribution, Loan Disbursement, Programme Expense
}

type Loan struct {
	ID                string          `json:"id"`
	MemberID          string          `json:"member_id"`
	ApplicationDate   Date            `json:"application_date"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Status            LoanStatus      `json:"status"`
	RepaymentAmount   decimal.Decimal `json:"repayment_amount"` // Amount plus interest, fixed at application
	RepaymentsMade    decimal.Decimal `json:"repayments_made"`
	RepaymentSchedule string          `json:"repayment_schedule,omitempty"`
}

type Repayment struct {
	ID            string          `json:"id"`
	LoanID        string          `json:"loan_id"`
	Date          Date            `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

type Contribution struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	Date          Date            `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

type Programme struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	StartDate Date            `json:"start_date"`
	EndDate   Date            `json:"end_date"`
}
