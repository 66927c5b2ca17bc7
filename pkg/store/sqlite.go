package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore writes ledger snapshots to a SQLite file. Each SaveSnapshot replaces
// the previous contents, so the file always mirrors one point in time.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the export database and brings its schema up to date.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := runMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func runMigrations(path string) error {
	migrateDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite3.WithInstance(migrateDB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Child tables first so foreign keys hold while clearing.
var snapshotTables = []string{"repayments", "contributions", "programmes", "loans", "transactions", "members"}

// SaveSnapshot replaces every row with the contents of s inside one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, st ledger.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range snapshotTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, m := range st.Members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, name, employee_id, joining_date, designation, nic, dob, address, contact_no, remark)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.EmployeeID, m.JoiningDate.String(), m.Designation, m.NIC, m.DOB.String(), m.Address, m.ContactNo, m.Remark,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member %s: %w", m.ID, err)
		}
	}
	for _, t := range st.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, date, description, type, method, amount, category)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date.String(), t.Description, string(t.Type), string(t.Method), t.Amount, t.Category,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}
	for _, l := range st.Loans {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, member_id, amount, repayment_amount, repayments_made, reason, repayment_schedule, status, application_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.MemberID, l.Amount, l.RepaymentAmount, l.RepaymentsMade, l.Reason, l.RepaymentSchedule, string(l.Status), l.ApplicationDate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert loan %s: %w", l.ID, err)
		}
	}
	for _, r := range st.Repayments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO repayments (id, loan_id, amount, date, transaction_id) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.LoanID, r.Amount, r.Date.String(), r.TransactionID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert repayment %s: %w", r.ID, err)
		}
	}
	for _, c := range st.Contributions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (id, member_id, amount, date, transaction_id) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.MemberID, c.Amount, c.Date.String(), c.TransactionID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contribution %s: %w", c.ID, err)
		}
	}
	for _, p := range st.Programmes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO programmes (id, name, budget, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Budget, p.StartDate.String(), p.EndDate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert programme %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Counts reports the number of rows per table in the last snapshot.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(snapshotTables))
	for _, table := range snapshotTables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// transactions reads the exported cash book back, ordered by date. The service never
// reads an export; this is for verifying what was written.
func (s *SQLiteStore) transactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, description, type, method, amount, category FROM transactions ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var date, typ, method string
		if err := rows.Scan(&t.ID, &date, &t.Description, &typ, &method, &t.Amount, &t.Category); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		if t.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.Type = models.TransactionType(typ)
		t.Method = models.TransactionMethod(method)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// loans reads exported loans back, optionally restricted to one status.
func (s *SQLiteStore) loans(ctx context.Context, status models.LoanStatus) ([]models.Loan, error) {
	query := `SELECT id, member_id, amount, repayment_amount, repayments_made, reason, repayment_schedule, status, application_date FROM loans`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		var l models.Loan
		var st, applied string
		if err := rows.Scan(&l.ID, &l.MemberID, &l.Amount, &l.RepaymentAmount, &l.RepaymentsMade, &l.Reason, &l.RepaymentSchedule, &st, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		if l.ApplicationDate, err = models.ParseDate(applied); err != nil {
			return nil, fmt.Errorf("loan %s: %w", l.ID, err)
		}
		l.Status = models.LoanStatus(st)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
