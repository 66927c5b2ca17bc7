package store

import (
	"context"
	"sync"

	"github.com/mcclellann/welfare/pkg/events"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/logger"
)

// Store holds the live ledger state and is the only place it changes. Commands are
// serialized: each one runs to completion before the next is accepted.
type Store struct {
	mu     sync.Mutex
	state  ledger.State
	ledger *ledger.Ledger

	// seq numbers applied commands for outgoing events. Guarded by mu.
	seq uint64

	publisher events.Publisher
	observer  Observer
	log       *logger.Logger
}

type Option func(*Store)

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l.WithComponent(logger.ComponentStore) }
}

// New creates a Store starting from initial.
func New(l *ledger.Ledger, initial ledger.State, opts ...Option) *Store {
	s := &Store{
		state:     initial.Clone(),
		ledger:    l,
		publisher: events.NopPublisher{},
		observer:  nopObserver{},
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.observer.SetBalance(ledger.NetBalance(s.state).InexactFloat64())
	return s
}

// Dispatch applies cmd to the current state. A rejected command leaves the state as it
// was and returns the ledger's *RejectionError. Metrics are updated before the lock is
// released so the balance gauge always matches the latest state.
func (s *Store) Dispatch(ctx context.Context, cmd ledger.Command) (ledger.Result, error) {
	kind := "unknown"
	if cmd != nil {
		kind = string(cmd.Kind())
	}

	s.mu.Lock()
	res, err := s.ledger.Apply(s.state, cmd)
	s.observer.ObserveCommand(kind, err)
	if err != nil {
		s.mu.Unlock()
		s.log.WarnContext(ctx, "Command rejected", commandFields(kind, cmd).WithError(err).ToSlice()...)
		return res, err
	}
	s.state = res.State
	s.observer.SetBalance(ledger.NetBalance(res.State).InexactFloat64())
	s.seq++
	event := events.NewEvent(kind, res.RecordID, res.TransactionID)
	event.Sequence = s.seq
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Command applied", commandFields(kind, cmd).
		With(logger.FieldRecordID, res.RecordID).
		With(logger.FieldTransactionID, res.TransactionID).
		With(logger.FieldSequence, event.Sequence).
		ToSlice()...)

	if perr := s.publisher.Publish(ctx, event); perr != nil {
		s.log.ErrorContext(ctx, "Failed to publish ledger event", commandFields(kind, cmd).
			With(logger.FieldRecordID, res.RecordID).
			With(logger.FieldSequence, event.Sequence).
			WithError(perr).
			ToSlice()...)
	}
	return res, nil
}

// commandFields picks the identifying parts of a command for logs.
func commandFields(kind string, cmd ledger.Command) logger.Fields {
	f := logger.NewFields().With(logger.FieldCommand, kind)
	switch c := cmd.(type) {
	case ledger.AddTransaction:
		f.With(logger.FieldAmount, c.Amount.String())
	case ledger.AddLoan:
		f.With(logger.FieldMemberID, c.MemberID).With(logger.FieldAmount, c.Amount.String())
	case ledger.UpdateLoanStatus:
		f.With(logger.FieldLoanID, c.LoanID).With(logger.FieldStatus, string(c.Status))
	case ledger.AddRepayment:
		f.With(logger.FieldLoanID, c.LoanID).With(logger.FieldAmount, c.Amount.String())
	case ledger.AddContribution:
		f.With(logger.FieldMemberID, c.MemberID).With(logger.FieldAmount, c.Amount.String())
	case ledger.AddProgramme:
		f.With(logger.FieldAmount, c.Budget.String())
	}
	return f
}

// Snapshot returns a copy of the current state that callers may keep.
func (s *Store) Snapshot() ledger.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Export writes the current state through e.
func (s *Store) Export(ctx context.Context, e Exporter) error {
	snap := s.Snapshot()
	if err := e.SaveSnapshot(ctx, snap); err != nil {
		s.log.ErrorContext(ctx, "Snapshot export failed", logger.FieldError, err.Error())
		return err
	}
	s.log.InfoContext(ctx, "Snapshot exported", "transactions", len(snap.Transactions), "loans", len(snap.Loans))
	return nil
}
