package ledger

import (
	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
)

// Fixtures returns the seed data the society starts from on every boot.
func Fixtures() State {
	d := models.MustParseDate
	amt := decimal.NewFromInt

	return State{
		Members: []models.Member{
			{ID: "mem-1", Name: "Alice Johnson", EmployeeID: "EMP101", JoiningDate: d("2022-01-15"), Designation: "Software Engineer", NIC: "12345-6789012-3", DOB: d("1990-05-20"), Address: "123 Main St, Anytown", ContactNo: "555-0101", Remark: "Team lead for Project X"},
			{ID: "mem-2", Name: "Bob Williams", EmployeeID: "EMP102", JoiningDate: d("2022-02-20"), Designation: "Project Manager", NIC: "23456-7890123-4", DOB: d("1985-11-15"), Address: "456 Oak Ave, Anytown", ContactNo: "555-0102"},
			{ID: "mem-3", Name: "Charlie Brown", EmployeeID: "EMP103", JoiningDate: d("2022-03-10"), Designation: "QA Analyst", NIC: "34567-8901234-5", DOB: d("1992-08-30"), Address: "789 Pine Ln, Anytown", ContactNo: "555-0103", Remark: "Joined recently"},
		},
		Transactions: []models.Transaction{
			{ID: "trn-1", Date: d("2024-07-01"), Description: "Contribution from Alice Johnson", Type: models.TransactionTypeIncome, Method: models.TransactionMethodBank, Amount: amt(100), Category: models.CategoryContribution},
			{ID: "trn-2", Date: d("2024-07-01"), Description: "Contribution from Bob Williams", Type: models.TransactionTypeIncome, Method: models.TransactionMethodBank, Amount: amt(100), Category: models.CategoryContribution},
			{ID: "trn-3", Date: d("2024-07-05"), Description: "Office Supplies", Type: models.TransactionTypeExpense, Method: models.TransactionMethodCash, Amount: amt(50), Category: "Admin"},
			{ID: "trn-4", Date: d("2024-07-10"), Description: "Loan Disbursed to Charlie Brown", Type: models.TransactionTypeExpense, Method: models.TransactionMethodBank, Amount: amt(1000), Category: models.CategoryLoanDisbursement},
			{ID: "trn-5", Date: d("2024-07-20"), Description: "Loan Repayment from Charlie Brown", Type: models.TransactionTypeIncome, Method: models.TransactionMethodBank, Amount: amt(100), Category: models.CategoryLoanRepayment},
			{ID: "trn-6", Date: d("2024-08-01"), Description: "Expense for programme: Annual Picnic", Type: models.TransactionTypeExpense, Method: models.TransactionMethodBank, Amount: amt(500), Category: models.CategoryProgrammeExpense},
		},
		Loans: []models.Loan{
			{ID: "loan-1", MemberID: "mem-3", ApplicationDate: d("2024-07-08"), Amount: amt(1000), Reason: "Medical Emergency", Status: models.LoanStatusApproved, RepaymentAmount: amt(1100), RepaymentsMade: amt(100), RepaymentSchedule: "11 monthly installments of $100"},
			{ID: "loan-2", MemberID: "mem-1", ApplicationDate: d("2024-07-15"), Amount: amt(500), Reason: "Education Fees", Status: models.LoanStatusPending, RepaymentAmount: amt(550), RepaymentsMade: decimal.Zero, RepaymentSchedule: "5 monthly installments"},
		},
		Programmes: []models.Programme{
			{ID: "prog-1", Name: "Annual Picnic", Budget: amt(500), StartDate: d("2024-08-01"), EndDate: d("2024-08-01")},
		},
		Contributions: []models.Contribution{
			{ID: "con-1", MemberID: "mem-1", Date: d("2024-07-01"), Amount: amt(100), TransactionID: "trn-1"},
			{ID: "con-2", MemberID: "mem-2", Date: d("2024-07-01"), Amount: amt(100), TransactionID: "trn-2"},
		},
		Repayments: []models.Repayment{
			{ID: "rep-1", LoanID: "loan-1", Date: d("2024-07-20"), Amount: amt(100), TransactionID: "trn-5"},
		},
	}
}
