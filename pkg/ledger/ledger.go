package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
)

// InterestRate is the flat interest added to every loan when it is applied for.
var InterestRate = decimal.RequireFromString("0.10")

var (
	ErrInvalidCommand    = errors.New("invalid command")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrMemberNotFound    = errors.New("member not found")
	ErrLoanNotFound      = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan status transition")
	ErrLoanNotRepayable  = errors.New("loan is not open for repayment")
	ErrDuplicateID       = errors.New("duplicate id")
)

// RejectionError reports a command that was not applied. The state is unchanged.
type RejectionError struct {
	Kind CommandKind
	Err  error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Kind, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Result is what an applied command produced.
type Result struct {
	State State
	// RecordID is the id of the record the command created or updated.
	RecordID string
	// TransactionID is the id of the ledger entry appended by the command, if any.
	TransactionID string
}

// Ledger handles the business rules for members, loans and the cash book. It holds no
// state of its own; Apply is a pure function of its arguments plus the injected id
// generator and clock.
type Ledger struct {
	ids   IDGenerator
	clock func() time.Time
}

type Option func(*Ledger)

func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// NewLedger creates a Ledger using UUID ids and the wall clock unless overridden.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		ids:   UUIDGenerator{},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply runs cmd against s. On success the returned Result carries the next state; on
// failure the error is a *RejectionError and s is left as it was.
func (l *Ledger) Apply(s State, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{State: s}, ErrUnknownCommand
	}
	if err := cmd.Validate(); err != nil {
		return Result{State: s}, &RejectionError{Kind: cmd.Kind(), Err: err}
	}

	var (
		res Result
		err error
	)
	switch c := cmd.(type) {
	case AddMember:
		res, err = l.addMember(s, c)
	case AddTransaction:
		res, err = l.addTransaction(s, c)
	case AddLoan:
		res, err = l.addLoan(s, c)
	case UpdateLoanStatus:
		res, err = l.updateLoanStatus(s, c)
	case AddRepayment:
		res, err = l.addRepayment(s, c)
	case AddContribution:
		res, err = l.addContribution(s, c)
	case AddProgramme:
		res, err = l.addProgramme(s, c)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	if err != nil {
		return Result{State: s}, &RejectionError{Kind: cmd.Kind(), Err: err}
	}
	return res, nil
}

func (l *Ledger) newID(s State, prefix string) (string, error) {
	id := l.ids.NewID(prefix)
	if s.hasID(prefix, id) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return id, nil
}

func (l *Ledger) today() models.Date {
	return models.DateOf(l.clock())
}

func (l *Ledger) addMember(s State, c AddMember) (Result, error) {
	id, err := l.newID(s, PrefixMember)
	if err != nil {
		return Result{}, err
	}
	next := s.Clone()
	next.Members = append(next.Members, models.Member{
		ID:          id,
		Name:        c.Name,
		EmployeeID:  c.EmployeeID,
		JoiningDate: c.JoiningDate,
		Designation: c.Designation,
		NIC:         c.NIC,
		DOB:         c.DOB,
		Address:     c.Address,
		ContactNo:   c.ContactNo,
		Remark:      c.Remark,
	})
	return Result{State: next, RecordID: id}, nil
}

func (l *Ledger) addTransaction(s State, c AddTransaction) (Result, error) {
	id, err := l.newID(s, PrefixTransaction)
	if err != nil {
		return Result{}, err
	}
	next := s.Clone()
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          id,
		Date:        c.Date,
		Description: c.Description,
		Type:        c.Type,
		Method:      c.Method,
		Amount:      c.Amount,
		Category:    c.Category,
	})
	return Result{State: next, RecordID: id, TransactionID: id}, nil
}

func (l *Ledger) addLoan(s State, c AddLoan) (Result, error) {
	if _, ok := s.Member(c.MemberID); !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrMemberNotFound, c.MemberID)
	}
	id, err := l.newID(s, PrefixLoan)
	if err != nil {
		return Result{}, err
	}
	applied := c.ApplicationDate
	if applied.IsZero() {
		applied = l.today()
	}

	next := s.Clone()
	next.Loans = append(next.Loans, models.Loan{
		ID:                id,
		MemberID:          c.MemberID,
		ApplicationDate:   applied,
		Amount:            c.Amount,
		Reason:            c.Reason,
		Status:            models.LoanStatusPending,
		RepaymentAmount:   RepaymentAmount(c.Amount),
		RepaymentsMade:    decimal.Zero,
		RepaymentSchedule: c.RepaymentSchedule,
	})
	return Result{State: next, RecordID: id}, nil
}

// RepaymentAmount is principal plus the flat interest.
func RepaymentAmount(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(decimal.NewFromInt(1).Add(InterestRate))
}

// canTransition encodes the manual part of the loan state machine. Approved -> Paid is
// reachable only through a repayment.
func canTransition(from, to models.LoanStatus) bool {
	switch {
	case from.Terminal():
		return false
	case from == models.LoanStatusPending:
		return to == models.LoanStatusApproved || to == models.LoanStatusRejected
	}
	return false
}

func (l *Ledger) updateLoanStatus(s State, c UpdateLoanStatus) (Result, error) {
	i := s.loanIndex(c.LoanID)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrLoanNotFound, c.LoanID)
	}
	loan := s.Loans[i]
	if !canTransition(loan.Status, c.Status) {
		return Result{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, loan.Status, c.Status)
	}

	next := s.Clone()
	loan.Status = c.Status
	next.Loans[i] = loan
	res := Result{State: next, RecordID: loan.ID}

	switch c.Status {
	case models.LoanStatusApproved:
		txID, err := l.newID(s, PrefixTransaction)
		if err != nil {
			return Result{}, err
		}
		next.Transactions = append(next.Transactions, models.Transaction{
			ID:          txID,
			Date:        l.today(),
			Description: "Loan Disbursed to " + s.memberName(loan.MemberID),
			Type:        models.TransactionTypeExpense,
			Method:      models.TransactionMethodBank,
			Amount:      loan.Amount,
			Category:    models.CategoryLoanDisbursement,
		})
		res.State = next
		res.TransactionID = txID
	case models.LoanStatusRejected, models.LoanStatusPending, models.LoanStatusPaid:
		// no ledger entry
	}
	return res, nil
}

func (l *Ledger) addRepayment(s State, c AddRepayment) (Result, error) {
	i := s.loanIndex(c.LoanID)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrLoanNotFound, c.LoanID)
	}
	loan := s.Loans[i]
	if loan.Status.Terminal() {
		return Result{}, fmt.Errorf("%w: %s is closed (%s)", ErrLoanNotRepayable, loan.ID, loan.Status)
	}
	if loan.Status != models.LoanStatusApproved {
		return Result{}, fmt.Errorf("%w: %s is not approved yet", ErrLoanNotRepayable, loan.ID)
	}
	txID, err := l.newID(s, PrefixTransaction)
	if err != nil {
		return Result{}, err
	}
	repID, err := l.newID(s, PrefixRepayment)
	if err != nil {
		return Result{}, err
	}

	next := s.Clone()
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          txID,
		Date:        c.Date,
		Description: "Loan Repayment from " + s.memberName(loan.MemberID),
		Type:        models.TransactionTypeIncome,
		Method:      models.TransactionMethodBank,
		Amount:      c.Amount,
		Category:    models.CategoryLoanRepayment,
	})
	next.Repayments = append(next.Repayments, models.Repayment{
		ID:            repID,
		LoanID:        loan.ID,
		Date:          c.Date,
		Amount:        c.Amount,
		TransactionID: txID,
	})

	loan.RepaymentsMade = loan.RepaymentsMade.Add(c.Amount)
	if loan.RepaymentsMade.GreaterThanOrEqual(loan.RepaymentAmount) {
		loan.Status = models.LoanStatusPaid
	}
	next.Loans[i] = loan

	return Result{State: next, RecordID: repID, TransactionID: txID}, nil
}

func (l *Ledger) addContribution(s State, c AddContribution) (Result, error) {
	member, ok := s.Member(c.MemberID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrMemberNotFound, c.MemberID)
	}
	txID, err := l.newID(s, PrefixTransaction)
	if err != nil {
		return Result{}, err
	}
	conID, err := l.newID(s, PrefixContribution)
	if err != nil {
		return Result{}, err
	}

	next := s.Clone()
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          txID,
		Date:        c.Date,
		Description: "Contribution from " + member.Name,
		Type:        models.TransactionTypeIncome,
		Method:      models.TransactionMethodBank,
		Amount:      c.Amount,
		Category:    models.CategoryContribution,
	})
	next.Contributions = append(next.Contributions, models.Contribution{
		ID:            conID,
		MemberID:      member.ID,
		Date:          c.Date,
		Amount:        c.Amount,
		TransactionID: txID,
	})
	return Result{State: next, RecordID: conID, TransactionID: txID}, nil
}

func (l *Ledger) addProgramme(s State, c AddProgramme) (Result, error) {
	progID, err := l.newID(s, PrefixProgramme)
	if err != nil {
		return Result{}, err
	}
	txID, err := l.newID(s, PrefixTransaction)
	if err != nil {
		return Result{}, err
	}

	next := s.Clone()
	next.Programmes = append(next.Programmes, models.Programme{
		ID:        progID,
		Name:      c.Name,
		Budget:    c.Budget,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	})
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          txID,
		Date:        c.StartDate,
		Description: "Expense for programme: " + c.Name,
		Type:        models.TransactionTypeExpense,
		Method:      models.TransactionMethodBank,
		Amount:      c.Budget,
		Category:    models.CategoryProgrammeExpense,
	})
	return Result{State: next, RecordID: progID, TransactionID: txID}, nil
}
