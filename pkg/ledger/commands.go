package ledger

import (
	"fmt"
	"strings"

	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
)

type CommandKind string

const (
	KindAddMember        CommandKind = "add_member"
	KindAddTransaction   CommandKind = "add_transaction"
	KindAddLoan          CommandKind = "add_loan"
	KindUpdateLoanStatus CommandKind = "update_loan_status"
	KindAddRepayment     CommandKind = "add_repayment"
	KindAddContribution  CommandKind = "add_contribution"
	KindAddProgramme     CommandKind = "add_programme"
)

// Command is one business event submitted to the ledger. The set is closed: only the
// types in this file implement it.
type Command interface {
	Kind() CommandKind
	// Validate checks presence and positivity of the payload. It does not look at state.
	Validate() error
	command()
}

type AddMember struct {
	Name        string      `json:"name"`
	EmployeeID  string      `json:"employee_id"`
	JoiningDate models.Date `json:"joining_date"`
	Designation string      `json:"designation"`
	NIC         string      `json:"nic"`
	DOB         models.Date `json:"dob"`
	Address     string      `json:"address"`
	ContactNo   string      `json:"contact_no"`
	Remark      string      `json:"remark,omitempty"`
}

type AddTransaction struct {
	Date        models.Date              `json:"date"`
	Description string                   `json:"description"`
	Type        models.TransactionType   `json:"type"`
	Method      models.TransactionMethod `json:"method"`
	Amount      decimal.Decimal          `json:"amount"`
	Category    string                   `json:"category"`
}

// AddLoan applies for a new loan. ApplicationDate defaults to today.
type AddLoan struct {
	MemberID          string          `json:"member_id"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	RepaymentSchedule string          `json:"repayment_schedule,omitempty"`
	ApplicationDate   models.Date     `json:"application_date,omitempty"`
}

type UpdateLoanStatus struct {
	LoanID string            `json:"loan_id"`
	Status models.LoanStatus `json:"status"`
}

type AddRepayment struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   models.Date     `json:"date"`
}

type AddContribution struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     models.Date     `json:"date"`
}

type AddProgramme struct {
	Name      string          `json:"name"`
	Budget    decimal.Decimal `json:"budget"`
	StartDate models.Date     `json:"start_date"`
	EndDate   models.Date     `json:"end_date"`
}

func (AddMember) Kind() CommandKind        { return KindAddMember }
func (AddTransaction) Kind() CommandKind   { return KindAddTransaction }
func (AddLoan) Kind() CommandKind          { return KindAddLoan }
func (UpdateLoanStatus) Kind() CommandKind { return KindUpdateLoanStatus }
func (AddRepayment) Kind() CommandKind     { return KindAddRepayment }
func (AddContribution) Kind() CommandKind  { return KindAddContribution }
func (AddProgramme) Kind() CommandKind     { return KindAddProgramme }

func (AddMember) command()        {}
func (AddTransaction) command()   {}
func (AddLoan) command()          {}
func (UpdateLoanStatus) command() {}
func (AddRepayment) command()     {}
func (AddContribution) command()  {}
func (AddProgramme) command()     {}

func (c AddMember) Validate() error {
	if blank(c.Name) {
		return invalid("name is required")
	}
	if blank(c.EmployeeID) {
		return invalid("employee id is required")
	}
	if c.JoiningDate.IsZero() {
		return invalid("joining date is required")
	}
	return nil
}

func (c AddTransaction) Validate() error {
	if c.Date.IsZero() {
		return invalid("date is required")
	}
	if blank(c.Description) {
		return invalid("description is required")
	}
	if !c.Type.Valid() {
		return invalid(fmt.Sprintf("unknown transaction type %q", c.Type))
	}
	if !c.Method.Valid() {
		return invalid(fmt.Sprintf("unknown transaction method %q", c.Method))
	}
	if blank(c.Category) {
		return invalid("category is required")
	}
	return positive(c.Amount)
}

func (c AddLoan) Validate() error {
	if blank(c.MemberID) {
		return invalid("member id is required")
	}
	if blank(c.Reason) {
		return invalid("reason is required")
	}
	return positive(c.Amount)
}

func (c UpdateLoanStatus) Validate() error {
	if blank(c.LoanID) {
		return invalid("loan id is required")
	}
	if !c.Status.Valid() {
		return invalid(fmt.Sprintf("unknown loan status %q", c.Status))
	}
	return nil
}

func (c AddRepayment) Validate() error {
	if blank(c.LoanID) {
		return invalid("loan id is required")
	}
	if c.Date.IsZero() {
		return invalid("date is required")
	}
	return positive(c.Amount)
}

func (c AddContribution) Validate() error {
	if blank(c.MemberID) {
		return invalid("member id is required")
	}
	if c.Date.IsZero() {
		return invalid("date is required")
	}
	return positive(c.Amount)
}

func (c AddProgramme) Validate() error {
	if blank(c.Name) {
		return invalid("name is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return invalid("start and end dates are required")
	}
	if c.EndDate.Before(c.StartDate.Time) {
		return invalid("end date must not be before start date")
	}
	return positive(c.Budget)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func positive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("amount must be positive")
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, reason)
}
