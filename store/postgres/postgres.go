// Package postgres implements revenue.TargetStore and cases.PaymentLedger on
// PostgreSQL through a pgx connection pool.
//
// The schema mirrors store/sqlite: the firm-wide target is stored with
// department_id = '' so the unique key (law_firm_id, year, department_id)
// covers it, and UpsertTarget is a single INSERT ... ON CONFLICT statement.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
)

type Store struct {
	pool *pgxpool.Pool
}

var (
	_ revenue.TargetStore = (*Store)(nil)
	_ cases.PaymentLedger = (*Store)(nil)
)

// New connects to databaseURL, pings, and applies the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS revenue_targets (
		id TEXT PRIMARY KEY,
		law_firm_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		department_id TEXT NOT NULL DEFAULT '',
		yearly_target BIGINT NOT NULL CHECK (yearly_target > 0),
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_revenue_targets_key
		ON revenue_targets(law_firm_id, year, department_id);

	CREATE TABLE IF NOT EXISTS case_payments (
		id TEXT PRIMARY KEY,
		case_type TEXT NOT NULL,
		case_id TEXT NOT NULL,
		law_firm_id TEXT NOT NULL,
		department_id TEXT NOT NULL DEFAULT '',
		amount BIGINT NOT NULL,
		purpose TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_case_payments_firm_paid
		ON case_payments(law_firm_id, case_type, status, paid_at);
	CREATE INDEX IF NOT EXISTS idx_case_payments_firm_dept_paid
		ON case_payments(law_firm_id, department_id, paid_at);
	`)
	return err
}

const targetColumns = `id, law_firm_id, year, department_id, yearly_target, created_by, created_at, updated_at`

func (s *Store) UpsertTarget(ctx context.Context, t revenue.RevenueTarget) (revenue.RevenueTarget, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO revenue_targets (`+targetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (law_firm_id, year, department_id) DO UPDATE SET
			yearly_target = EXCLUDED.yearly_target,
			updated_at = EXCLUDED.updated_at
		RETURNING `+targetColumns,
		string(t.ID), string(t.LawFirmID), t.Year, string(t.DepartmentID),
		int64(t.YearlyTarget), string(t.CreatedBy), t.CreatedAt, t.UpdatedAt,
	)
	stored, err := scanTarget(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return revenue.RevenueTarget{}, &revenue.ConflictError{Key: t.Key()}
		}
		return revenue.RevenueTarget{}, fmt.Errorf("upsert target: %w", err)
	}
	return stored, nil
}

func (s *Store) GetTarget(ctx context.Context, lawFirmID revenue.LawFirmID, id revenue.TargetID) (*revenue.RevenueTarget, error) {
	return s.queryOne(ctx, `SELECT `+targetColumns+` FROM revenue_targets
		WHERE law_firm_id = $1 AND id = $2`, string(lawFirmID), string(id))
}

func (s *Store) FindTarget(ctx context.Context, key revenue.TargetKey) (*revenue.RevenueTarget, error) {
	return s.queryOne(ctx, `SELECT `+targetColumns+` FROM revenue_targets
		WHERE law_firm_id = $1 AND year = $2 AND department_id = $3`,
		string(key.LawFirmID), key.Year, string(key.DepartmentID))
}

func (s *Store) ListTargets(ctx context.Context, lawFirmID revenue.LawFirmID, year int) ([]revenue.RevenueTarget, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+targetColumns+` FROM revenue_targets
		WHERE law_firm_id = $1 AND year = $2
		ORDER BY department_id ASC`, string(lawFirmID), year)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
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
	tag, err := s.pool.Exec(ctx, `DELETE FROM revenue_targets WHERE law_firm_id = $1 AND id = $2`,
		string(lawFirmID), string(id))
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &revenue.NotFoundError{Kind: "target", ID: string(id)}
	}
	return nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*revenue.RevenueTarget, error) {
	t, err := scanTarget(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get target: %w", err)
	}
	return &t, nil
}

func scanTarget(row pgx.Row) (revenue.RevenueTarget, error) {
	var (
		t                         revenue.RevenueTarget
		id, firm, dept, createdBy string
		yearly                    int64
		createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &firm, &t.Year, &dept, &yearly, &createdBy, &createdAt, &updatedAt); err != nil {
		return revenue.RevenueTarget{}, err
	}
	t.ID = revenue.TargetID(id)
	t.LawFirmID = revenue.LawFirmID(firm)
	t.DepartmentID = revenue.DepartmentID(dept)
	t.YearlyTarget = revenue.Money(yearly)
	t.CreatedBy = revenue.UserID(createdBy)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

// =============================================================================
// CASE PAYMENTS
// =============================================================================

func (s *Store) SaveCasePayment(ctx context.Context, p cases.CasePayment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO case_payments
		(id, case_type, case_id, law_firm_id, department_id, amount, purpose, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, string(p.CaseType), p.CaseID, string(p.LawFirmID), string(p.DepartmentID),
		int64(p.Amount), string(p.Purpose), string(p.Status), p.PaidAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save case payment: %w", err)
	}
	return nil
}

func (s *Store) ListCasePayments(ctx context.Context, caseType cases.CaseType, lawFirmID revenue.LawFirmID, f revenue.PaymentFilter) ([]revenue.Payment, error) {
	where := []string{"law_firm_id = $1", "case_type = $2", "status = $3", "paid_at >= $4", "paid_at < $5"}
	args := []any{string(lawFirmID), string(caseType), string(revenue.PaymentCompleted), f.From.UTC(), f.To.UTC()}
	if !f.DepartmentID.IsFirmWide() {
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, string(f.DepartmentID))
	}

	rows, err := s.pool.Query(ctx, `SELECT id, law_firm_id, department_id, amount, purpose, status, paid_at
		FROM case_payments WHERE `+strings.Join(where, " AND ")+` ORDER BY paid_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list case payments: %w", err)
	}
	defer rows.Close()

	var out []revenue.Payment
	for rows.Next() {
		var (
			p                           revenue.Payment
			firm, dept, purpose, status string
			amount                      int64
			paidAt                      time.Time
		)
		if err := rows.Scan(&p.ID, &firm, &dept, &amount, &purpose, &status, &paidAt); err != nil {
			return nil, err
		}
		p.LawFirmID = revenue.LawFirmID(firm)
		p.DepartmentID = revenue.DepartmentID(dept)
		p.Amount = revenue.Money(amount)
		p.Purpose = revenue.PaymentPurpose(purpose)
		p.Status = revenue.PaymentStatus(status)
		p.PaidAt = paidAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reset deletes all data. Only used by demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE case_payments, revenue_targets`)
	return err
}
