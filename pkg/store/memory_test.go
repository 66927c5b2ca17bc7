package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mcclellann/welfare/pkg/events"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/logger"
	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	balance  float64
}

func (r *recordingObserver) ObserveCommand(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	key := kind + ":ok"
	if err != nil {
		key = kind + ":rejected"
	}
	r.outcomes[key]++
}

func (r *recordingObserver) SetBalance(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balance = v
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestStore(opts ...Option) *Store {
	l := ledger.NewLedger(
		ledger.WithIDGenerator(ledger.NewSequence(100)),
		ledger.WithClock(func() time.Time { return time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC) }),
	)
	return New(l, ledger.Fixtures(), opts...)
}

func TestStore_DispatchApplied(t *testing.T) {
	obs := &recordingObserver{}
	pub := &recordingPublisher{}
	s := newTestStore(WithObserver(obs), WithPublisher(pub))
	assert.Equal(t, -1250.0, obs.balance)

	res, err := s.Dispatch(context.Background(), ledger.AddContribution{
		MemberID: "mem-3", Amount: decimal.NewFromInt(250), Date: models.MustParseDate("2024-09-01"),
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Len(t, snap.Contributions, 3)
	assert.Equal(t, res.TransactionID, snap.Contributions[2].TransactionID)
	assert.Equal(t, 1, obs.outcomes["add_contribution:ok"])
	assert.Equal(t, -1000.0, obs.balance)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "add_contribution", pub.events[0].Command)
	assert.Equal(t, res.RecordID, pub.events[0].RecordID)
	assert.Equal(t, res.TransactionID, pub.events[0].TransactionID)
}

func TestStore_DispatchRejected(t *testing.T) {
	obs := &recordingObserver{}
	pub := &recordingPublisher{}
	s := newTestStore(WithObserver(obs), WithPublisher(pub))
	before := s.Snapshot()

	_, err := s.Dispatch(context.Background(), ledger.AddRepayment{
		LoanID: "loan-404", Amount: decimal.NewFromInt(1), Date: models.MustParseDate("2024-09-01"),
	})
	require.ErrorIs(t, err, ledger.ErrLoanNotFound)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 1, obs.outcomes["add_repayment:rejected"])
	assert.Empty(t, pub.events)
}

func TestStore_PublishFailureKeepsState(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := newTestStore(WithPublisher(pub))

	_, err := s.Dispatch(context.Background(), ledger.UpdateLoanStatus{LoanID: "loan-2", Status: models.LoanStatusApproved})
	require.NoError(t, err)

	loan, ok := s.Snapshot().Loan("loan-2")
	require.True(t, ok)
	assert.Equal(t, models.LoanStatusApproved, loan.Status)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := newTestStore()
	snap := s.Snapshot()
	snap.Members[0].Name = "Mallory"
	snap.Loans = nil

	fresh := s.Snapshot()
	assert.Equal(t, "Alice Johnson", fresh.Members[0].Name)
	assert.Len(t, fresh.Loans, 2)
}

func TestStore_ConcurrentRepaymentsSerialize(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Dispatch(context.Background(), ledger.AddRepayment{
				LoanID: "loan-1", Amount: decimal.NewFromInt(10), Date: models.MustParseDate("2024-09-01"),
			})
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	loan, _ := snap.Loan("loan-1")
	assert.True(t, decimal.NewFromInt(300).Equal(loan.RepaymentsMade), "got %s", loan.RepaymentsMade)
	assert.Len(t, snap.Repayments, 21)
}

type failingExporter struct{ calls int }

func (f *failingExporter) SaveSnapshot(context.Context, ledger.State) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingExporter) Close() error { return nil }

func TestStore_ExportError(t *testing.T) {
	s := newTestStore()
	e := &failingExporter{}
	require.EqualError(t, s.Export(context.Background(), e), "disk full")
	assert.Equal(t, 1, e.calls)
}

// slowObserver stalls the first balance update that follows a dispatch.
type slowObserver struct {
	mu      sync.Mutex
	calls   int
	balance float64
	stalled chan struct{}
}

func (o *slowObserver) ObserveCommand(string, error) {}

func (o *slowObserver) SetBalance(v float64) {
	o.mu.Lock()
	o.calls++
	n := o.calls
	o.mu.Unlock()
	if n == 2 {
		close(o.stalled)
		time.Sleep(100 * time.Millisecond)
	}
	o.mu.Lock()
	o.balance = v
	o.mu.Unlock()
}

func TestStore_BalanceGaugeFollowsLastCommand(t *testing.T) {
	obs := &slowObserver{stalled: make(chan struct{})}
	s := newTestStore(WithObserver(obs))
	contribute := func(amount int64) error {
		_, err := s.Dispatch(context.Background(), ledger.AddContribution{
			MemberID: "mem-1", Amount: decimal.NewFromInt(amount), Date: models.MustParseDate("2024-09-01"),
		})
		return err
	}

	first := make(chan error, 1)
	go func() { first <- contribute(10) }()
	<-obs.stalled
	require.NoError(t, contribute(500))
	require.NoError(t, <-first)

	want := ledger.NetBalance(s.Snapshot()).InexactFloat64()
	assert.Equal(t, -740.0, want)
	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, want, obs.balance)
}

func TestStore_EventSequenceMatchesApplyOrder(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestStore(WithPublisher(pub))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Dispatch(context.Background(), ledger.AddContribution{
				MemberID: "mem-2", Amount: decimal.NewFromInt(5), Date: models.MustParseDate("2024-09-01"),
			})
		}()
	}
	wg.Wait()

	require.Len(t, pub.events, 20)
	sort.Slice(pub.events, func(i, j int) bool { return pub.events[i].Sequence < pub.events[j].Sequence })

	applied := s.Snapshot().Transactions[6:]
	for i, e := range pub.events {
		assert.Equal(t, uint64(i+1), e.Sequence)
		assert.Equal(t, applied[i].ID, e.TransactionID)
	}
}

func TestStore_DispatchLogsCommandFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
	s := newTestStore(WithLogger(log))

	_, err := s.Dispatch(context.Background(), ledger.AddRepayment{
		LoanID: "loan-1", Amount: decimal.NewFromInt(40), Date: models.MustParseDate("2024-09-01"),
	})
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Command applied", record["msg"])
	assert.Equal(t, logger.ComponentStore, record[logger.FieldComponent])
	assert.Equal(t, "add_repayment", record[logger.FieldCommand])
	assert.Equal(t, "loan-1", record[logger.FieldLoanID])
	assert.Equal(t, "40", record[logger.FieldAmount])
	assert.Equal(t, 1.0, record[logger.FieldSequence])

	buf.Reset()
	_, err = s.Dispatch(context.Background(), ledger.AddContribution{
		MemberID: "mem-404", Amount: decimal.NewFromInt(1), Date: models.MustParseDate("2024-09-01"),
	})
	require.Error(t, err)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Command rejected", record["msg"])
	assert.Equal(t, "mem-404", record[logger.FieldMemberID])
	assert.Contains(t, record[logger.FieldError], "member not found")
}
