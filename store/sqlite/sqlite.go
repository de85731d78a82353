/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements revenue.TargetStore and cases.PaymentLedger using SQLite.
  store/postgres carries the same schema for PostgreSQL.

KEY TABLES:
  revenue_targets: One row per (law_firm_id, year, department_id).
                   department_id is '' for the firm-wide target so the
                   unique index treats it as a real key value (NULLs would
                   never collide).
  case_payments:   Payments produced by credit and legal cases.

ATOMIC UPSERT:
  UpsertTarget is one INSERT ... ON CONFLICT DO UPDATE statement, so two
  writers racing on one key can never create two rows.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking;
  SQLite allows a single writer at a time.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the writer.

USAGE:
  store, err := sqlite.New("./data/revenue.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ revenue.TargetStore = (*Store)(nil)
	_ cases.PaymentLedger = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS revenue_targets (
		id TEXT PRIMARY KEY,
		law_firm_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		department_id TEXT NOT NULL DEFAULT '',
		yearly_target INTEGER NOT NULL CHECK (yearly_target > 0),
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_revenue_targets_key
		ON revenue_targets(law_firm_id, year, department_id);

	CREATE TABLE IF NOT EXISTS case_payments (
		id TEXT PRIMARY KEY,
		case_type TEXT NOT NULL,
		case_id TEXT NOT NULL,
		law_firm_id TEXT NOT NULL,
		department_id TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL,
		purpose TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at TEXT NOT NULL
	);

	-- Aggregation hot path: firm + status + date range, optionally department
	CREATE INDEX IF NOT EXISTS idx_case_payments_firm_paid
		ON case_payments(law_firm_id, case_type, status, paid_at);
	CREATE INDEX IF NOT EXISTS idx_case_payments_firm_dept_paid
		ON case_payments(law_firm_id, department_id, paid_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TARGET STORE (revenue.TargetStore interface)
// =============================================================================

const targetColumns = `id, law_firm_id, year, department_id, yearly_target, created_by, created_at, updated_at`

// UpsertTarget inserts the target or updates the existing row for its key.
func (s *Store) UpsertTarget(ctx context.Context, t revenue.RevenueTarget) (revenue.RevenueTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO revenue_targets (` + targetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(law_firm_id, year, department_id) DO UPDATE SET
			yearly_target = excluded.yearly_target,
			updated_at = excluded.updated_at
		RETURNING ` + targetColumns

	row := s.db.QueryRowContext(ctx, query,
		string(t.ID),
		string(t.LawFirmID),
		t.Year,
		string(t.DepartmentID),
		int64(t.YearlyTarget),
		string(t.CreatedBy),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	stored, err := scanTarget(row)
	if err != nil {
		if isUniqueConstraintError(err) {
			return revenue.RevenueTarget{}, &revenue.ConflictError{Key: t.Key()}
		}
		return revenue.RevenueTarget{}, fmt.Errorf("failed to upsert target: %w", err)
	}
	return stored, nil
}

func (s *Store) GetTarget(ctx context.Context, lawFirmID revenue.LawFirmID, id revenue.TargetID) (*revenue.RevenueTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + targetColumns + ` FROM revenue_targets WHERE law_firm_id = ? AND id = ?`
	return s.queryOne(ctx, query, string(lawFirmID), string(id))
}

func (s *Store) FindTarget(ctx context.Context, key revenue.TargetKey) (*revenue.RevenueTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + targetColumns + ` FROM revenue_targets
		WHERE law_firm_id = ? AND year = ? AND department_id = ?`
	return s.queryOne(ctx, query, string(key.LawFirmID), key.Year, string(key.DepartmentID))
}

func (s *Store) ListTargets(ctx context.Context, lawFirmID revenue.LawFirmID, year int) ([]revenue.RevenueTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + targetColumns + ` FROM revenue_targets
		WHERE law_firm_id = ? AND year = ?
		ORDER BY department_id ASC`

	rows, err := s.db.QueryContext(ctx, query, string(lawFirmID), year)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []revenue.RevenueTarget
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *Store) DeleteTarget(ctx context.Context, lawFirmID revenue.LawFirmID, id revenue.TargetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM revenue_targets WHERE law_firm_id = ? AND id = ?`, string(lawFirmID), string(id))
	if err != nil {
		return fmt.Errorf("failed to delete target: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &revenue.NotFoundError{Kind: "target", ID: string(id)}
	}
	return nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*revenue.RevenueTarget, error) {
	t, err := scanTarget(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}
	return &t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner) (revenue.RevenueTarget, error) {
	var t revenue.RevenueTarget
	var id, firm, dept, createdBy, createdAt, updatedAt string
	var yearly int64
	if err := row.Scan(&id, &firm, &t.Year, &dept, &yearly, &createdBy, &createdAt, &updatedAt); err != nil {
		return revenue.RevenueTarget{}, err
	}
	t.ID = revenue.TargetID(id)
	t.LawFirmID = revenue.LawFirmID(firm)
	t.DepartmentID = revenue.DepartmentID(dept)
	t.YearlyTarget = revenue.Money(yearly)
	t.CreatedBy = revenue.UserID(createdBy)
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return t, nil
}

// =============================================================================
// CASE PAYMENTS (cases.PaymentLedger interface)
// =============================================================================

func (s *Store) SaveCasePayment(ctx context.Context, p cases.CasePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO case_payments
		(id, case_type, case_id, law_firm_id, department_id, amount, purpose, status, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		string(p.CaseType),
		p.CaseID,
		string(p.LawFirmID),
		string(p.DepartmentID),
		int64(p.Amount),
		string(p.Purpose),
		string(p.Status),
		formatTime(p.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save case payment: %w", err)
	}
	return nil
}

// ListCasePayments returns completed payments in [filter.From, filter.To).
// paid_at is stored as fixed-width UTC RFC3339 so text comparison is
// chronological.
func (s *Store) ListCasePayments(ctx context.Context, caseType cases.CaseType, lawFirmID revenue.LawFirmID, f revenue.PaymentFilter) ([]revenue.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := []string{"law_firm_id = ?", "case_type = ?", "status = ?", "paid_at >= ?", "paid_at < ?"}
	args := []any{string(lawFirmID), string(caseType), string(revenue.PaymentCompleted), formatTime(f.From), formatTime(f.To)}
	if !f.DepartmentID.IsFirmWide() {
		where = append(where, "department_id = ?")
		args = append(args, string(f.DepartmentID))
	}

	query := `SELECT id, law_firm_id, department_id, amount, purpose, status, paid_at
		FROM case_payments WHERE ` + strings.Join(where, " AND ") + ` ORDER BY paid_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list case payments: %w", err)
	}
	defer rows.Close()

	var out []revenue.Payment
	for rows.Next() {
		var p revenue.Payment
		var firm, dept, purpose, status, paidAt string
		var amount int64
		if err := rows.Scan(&p.ID, &firm, &dept, &amount, &purpose, &status, &paidAt); err != nil {
			return nil, err
		}
		p.LawFirmID = revenue.LawFirmID(firm)
		p.DepartmentID = revenue.DepartmentID(dept)
		p.Amount = revenue.Money(amount)
		p.Purpose = revenue.PaymentPurpose(purpose)
		p.Status = revenue.PaymentStatus(status)
		p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reset deletes all data. Only used by demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM case_payments; DELETE FROM revenue_targets;`)
	return err
}

// Helper functions

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
