package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "welfare.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SaveSnapshot(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, ledger.Fixtures()))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"members": 3, "transactions": 6, "loans": 2,
		"repayments": 1, "contributions": 2, "programmes": 1,
	}, counts)

	txs, err := s.transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 6)
	assert.Equal(t, "trn-1", txs[0].ID)
	assert.Equal(t, "2024-07-01", txs[0].Date.String())
	assert.Equal(t, models.TransactionTypeIncome, txs[0].Type)
	assert.Equal(t, "trn-6", txs[5].ID)
	assert.True(t, decimal.NewFromInt(500).Equal(txs[5].Amount))
}

func TestSQLiteStore_LoansByStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, ledger.Fixtures()))

	all, err := s.loans(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.loans(ctx, models.LoanStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "loan-2", pending[0].ID)
	assert.True(t, decimal.NewFromInt(550).Equal(pending[0].RepaymentAmount))
	assert.Equal(t, "2024-07-15", pending[0].ApplicationDate.String())
}

func TestSQLiteStore_SnapshotReplacesPrevious(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, ledger.Fixtures()))

	smaller := ledger.Fixtures()
	smaller.Transactions = smaller.Transactions[:2]
	smaller.Loans = nil
	smaller.Repayments = nil
	smaller.Programmes = nil
	require.NoError(t, s.SaveSnapshot(ctx, smaller))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["transactions"])
	assert.Equal(t, 0, counts["loans"])
	assert.Equal(t, 3, counts["members"])
}

func TestSQLiteStore_DecimalPrecision(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	st := ledger.State{Transactions: []models.Transaction{{
		ID: "trn-1", Date: models.MustParseDate("2024-07-01"), Description: "Interest",
		Type: models.TransactionTypeIncome, Method: models.TransactionMethodBank,
		Amount: decimal.RequireFromString("1234.5678"),
	}}}
	require.NoError(t, s.SaveSnapshot(ctx, st))

	txs, err := s.transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "1234.5678", txs[0].Amount.String())
}

func TestSQLiteStore_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "welfare.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(context.Background(), ledger.Fixtures()))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, counts["transactions"])
}

func TestStore_ExportToSQLite(t *testing.T) {
	db := newTestSQLite(t)
	s := newTestStore()

	_, err := s.Dispatch(context.Background(), ledger.UpdateLoanStatus{LoanID: "loan-2", Status: models.LoanStatusApproved})
	require.NoError(t, err)
	require.NoError(t, s.Export(context.Background(), db))

	approved, err := db.loans(context.Background(), models.LoanStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	counts, err := db.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts["transactions"])
}
