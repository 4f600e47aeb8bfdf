package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicatePlate is returned when an insert trips the partial unique
// index on vehicles(plate). The service-level pre-check catches most
// duplicates early; this covers the race between check and insert.
var ErrDuplicatePlate = errors.New("plate already registered")

// DB is the querying surface repositories are built over. It is satisfied
// by *pgxpool.Pool, pgx.Tx and the pgxmock pool, so the same repository
// code serves pooled reads, transactional writes and tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository is the uniform CRUD contract shared by the entity
// repositories. Every read applies the soft-delete filter: a soft-deleted
// entity is indistinguishable from an absent one. Delete flips the
// is_deleted flag and is a no-op for absent rows.
//
// Writes issued through a repository bound to an open transaction (see
// UnitOfWork) stay invisible until the unit of work commits.
type Repository[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	GetAll(ctx context.Context) ([]*T, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
