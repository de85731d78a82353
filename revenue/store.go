/*
store.go - Persistence interface for revenue targets

PURPOSE:
  Defines the contract between the engine and the database. Targets are
  the only state the engine owns; payments belong to case collaborators
  and are read through PaymentSource (aggregate.go).

UPSERT CONTRACT:
  UpsertTarget is keyed by (firm, year, department). It must be a single
  atomic conditional write: concurrent upserts for one key leave exactly
  one row, last writer wins. The stored row keeps its original ID,
  CreatedBy and CreatedAt. A store that cannot upsert natively returns a
  ConflictError when it loses the race.

TENANCY:
  Every lookup takes the firm ID. A target ID from another firm is
  indistinguishable from an absent one.

IMPLEMENTATIONS:
  - revenue/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite
  - store/postgres/postgres.go: PostgreSQL via pgx
*/
package revenue

import "context"

type TargetStore interface {
	// UpsertTarget inserts or replaces the row for t.Key() and returns the stored row.
	UpsertTarget(ctx context.Context, t RevenueTarget) (RevenueTarget, error)

	// GetTarget returns nil, nil when the id does not exist in the firm.
	GetTarget(ctx context.Context, lawFirmID LawFirmID, id TargetID) (*RevenueTarget, error)

	// FindTarget returns nil, nil when no row exists for the key.
	FindTarget(ctx context.Context, key TargetKey) (*RevenueTarget, error)

	// ListTargets returns the firm's targets for a year, firm-wide row first,
	// then by department.
	ListTargets(ctx context.Context, lawFirmID LawFirmID, year int) ([]RevenueTarget, error)

	// DeleteTarget returns a NotFoundError when the id does not exist in the firm.
	DeleteTarget(ctx context.Context, lawFirmID LawFirmID, id TargetID) error
}
