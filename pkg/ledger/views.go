package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the dashboard headline figures.
type Summary struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpense       decimal.Decimal `json:"total_expense"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	OutstandingLoans   decimal.Decimal `json:"outstanding_loans"`
	PendingLoans       int             `json:"pending_loans"`
}

func Summarize(s State) Summary {
	income, expense := totals(s.Transactions)
	return Summary{
		Balance:            income.Sub(expense),
		TotalIncome:        income,
		TotalExpense:       expense,
		TotalContributions: TotalContributions(s),
		OutstandingLoans:   OutstandingLoans(s),
		PendingLoans:       PendingLoanCount(s),
	}
}

// NetBalance is total income minus total expense over the whole cash book.
func NetBalance(s State) decimal.Decimal {
	income, expense := totals(s.Transactions)
	return income.Sub(expense)
}

// OutstandingLoans sums the principal of approved, not yet paid, loans.
func OutstandingLoans(s State) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.Loans {
		if l.Status == models.LoanStatusApproved {
			sum = sum.Add(l.Amount)
		}
	}
	return sum
}

func PendingLoanCount(s State) int {
	n := 0
	for _, l := range s.Loans {
		if l.Status == models.LoanStatusPending {
			n++
		}
	}
	return n
}

func TotalContributions(s State) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range s.Transactions {
		if t.Category == models.CategoryContribution {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

func totals(txs []models.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case models.TransactionTypeIncome:
			income = income.Add(t.Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

// MonthlyReport is the cash book for one calendar month.
type MonthlyReport struct {
	Month        models.YearMonth     `json:"month"`
	Income       decimal.Decimal      `json:"income"`
	Expense      decimal.Decimal      `json:"expense"`
	Net          decimal.Decimal      `json:"net"`
	Transactions []models.Transaction `json:"transactions"`
}

func Report(s State, month models.YearMonth) MonthlyReport {
	filtered := make([]models.Transaction, 0)
	for _, t := range s.Transactions {
		if t.Date.InMonth(month) {
			filtered = append(filtered, t)
		}
	}
	income, expense := totals(filtered)
	return MonthlyReport{
		Month:        month,
		Income:       income,
		Expense:      expense,
		Net:          income.Sub(expense),
		Transactions: filtered,
	}
}

// MonthTotals is one bar pair of the dashboard chart.
type MonthTotals struct {
	Month   models.YearMonth `json:"month"`
	Label   string           `json:"label"`
	Income  decimal.Decimal  `json:"income"`
	Expense decimal.Decimal  `json:"expense"`
}

// MonthlySeries groups the cash book by calendar month, oldest first.
func MonthlySeries(s State) []MonthTotals {
	byMonth := make(map[models.YearMonth]*MonthTotals)
	for _, t := range s.Transactions {
		if t.Date.IsZero() {
			continue
		}
		m := models.MonthOf(t.Date)
		mt, ok := byMonth[m]
		if !ok {
			mt = &MonthTotals{Month: m, Label: m.Label(), Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[m] = mt
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			mt.Income = mt.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			mt.Expense = mt.Expense.Add(t.Amount)
		}
	}

	series := make([]MonthTotals, 0, len(byMonth))
	for _, mt := range byMonth {
		series = append(series, *mt)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}

// LoanProgress describes how far a loan has been repaid.
type LoanProgress struct {
	LoanID      string          `json:"loan_id"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentPaid decimal.Decimal `json:"percent_paid"`
}

func Progress(loan models.Loan) LoanProgress {
	remaining := loan.RepaymentAmount.Sub(loan.RepaymentsMade)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	percent := decimal.Zero
	if loan.RepaymentAmount.IsPositive() {
		percent = loan.RepaymentsMade.Div(loan.RepaymentAmount).Mul(hundred).Round(2)
		if percent.GreaterThan(hundred) {
			percent = hundred
		}
	}
	return LoanProgress{LoanID: loan.ID, Remaining: remaining, PercentPaid: percent}
}

// LoansByStatus filters loans for the loan list. An empty status matches every loan.
func LoansByStatus(s State, status models.LoanStatus) []models.Loan {
	out := make([]models.Loan, 0, len(s.Loans))
	for _, l := range s.Loans {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

func RepaymentsForLoan(s State, loanID string) []models.Repayment {
	out := make([]models.Repayment, 0)
	for _, r := range s.Repayments {
		if r.LoanID == loanID {
			out = append(out, r)
		}
	}
	return out
}

func ContributionsForMember(s State, memberID string) []models.Contribution {
	out := make([]models.Contribution, 0)
	for _, c := range s.Contributions {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	return out
}

// TransactionsNewestFirst returns the cash book latest date first. Entries on the same
// day keep the order they were recorded in.
func TransactionsNewestFirst(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date.Time) })
	return out
}

func ContributionsNewestFirst(cs []models.Contribution) []models.Contribution {
	out := make([]models.Contribution, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date.Time) })
	return out
}

// SummaryText renders the summary as the plain-text brief given to the advisor.
func SummaryText(sum Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Total Balance: $%s\n", sum.Balance.StringFixed(2))
	fmt.Fprintf(&b, "- Total Income: $%s\n", sum.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "- Total Expense: $%s\n", sum.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "- Total Contributions this period: $%s\n", sum.TotalContributions.StringFixed(2))
	fmt.Fprintf(&b, "- Total Outstanding Loans: $%s\n", sum.OutstandingLoans.StringFixed(2))
	fmt.Fprintf(&b, "- Number of pending loan applications: %d\n", sum.PendingLoans)
	return b.String()
}
