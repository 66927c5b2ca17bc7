package ledger

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Id prefixes, one per collection.
const (
	PrefixMember       = "mem"
	PrefixTransaction  = "trn"
	PrefixLoan         = "loan"
	PrefixRepayment    = "rep"
	PrefixContribution = "con"
	PrefixProgramme    = "prog"
)

// IDGenerator hands out record identifiers. Implementations must never return the same
// value twice for the same prefix.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator produces ids like "trn-1b4e28ba-2fa1-11d2-883f-0016d3cca427".
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Sequence is a monotonic counter shared by all prefixes.
type Sequence struct {
	next atomic.Uint64
}

// NewSequence returns a Sequence whose first id ends in start.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

func (s *Sequence) NewID(prefix string) string {
	n := s.next.Add(1) - 1
	return prefix + "-" + strconv.FormatUint(n, 10)
}
