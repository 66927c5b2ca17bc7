package ledger

import (
	"github.com/mcclellann/welfare/pkg/models"
)

// State is the complete set of ledger collections. Handlers treat a State as a value:
// they never modify the slices they are given and always return a fresh copy.
type State struct {
	Members       []models.Member       `json:"members"`
	Transactions  []models.Transaction  `json:"transactions"`
	Loans         []models.Loan         `json:"loans"`
	Programmes    []models.Programme    `json:"programmes"`
	Contributions []models.Contribution `json:"contributions"`
	Repayments    []models.Repayment    `json:"repayments"`
}

// Clone returns a copy of s that shares no backing arrays with it.
func (s State) Clone() State {
	return State{
		Members:       append([]models.Member(nil), s.Members...),
		Transactions:  append([]models.Transaction(nil), s.Transactions...),
		Loans:         append([]models.Loan(nil), s.Loans...),
		Programmes:    append([]models.Programme(nil), s.Programmes...),
		Contributions: append([]models.Contribution(nil), s.Contributions...),
		Repayments:    append([]models.Repayment(nil), s.Repayments...),
	}
}

func (s State) Member(id string) (models.Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

func (s State) Loan(id string) (models.Loan, bool) {
	i := s.loanIndex(id)
	if i < 0 {
		return models.Loan{}, false
	}
	return s.Loans[i], true
}

func (s State) Transaction(id string) (models.Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

func (s State) loanIndex(id string) int {
	for i, l := range s.Loans {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// memberName is used in generated ledger descriptions.
func (s State) memberName(id string) string {
	if m, ok := s.Member(id); ok && m.Name != "" {
		return m.Name
	}
	return "member"
}

// hasID reports whether id is already taken in the collection identified by prefix.
func (s State) hasID(prefix, id string) bool {
	switch prefix {
	case PrefixMember:
		_, ok := s.Member(id)
		return ok
	case PrefixTransaction:
		_, ok := s.Transaction(id)
		return ok
	case PrefixLoan:
		return s.loanIndex(id) >= 0
	case PrefixRepayment:
		for _, r := range s.Repayments {
			if r.ID == id {
				return true
			}
		}
	case PrefixContribution:
		for _, c := range s.Contributions {
			if c.ID == id {
				return true
			}
		}
	case PrefixProgramme:
		for _, p := range s.Programmes {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}
