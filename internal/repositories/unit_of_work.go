package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// UnitOfWork is the explicit commit boundary for write operations. Begin
// opens a transaction and binds entity repositories to it; staged writes
// become visible atomically on Commit. The service layer owns the unit of
// work, repositories never commit on their own.
type UnitOfWork interface {
	Vehicles() VehicleRepository
	Locations() LocationRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory begins units of work. Services hold the factory so
// tests can substitute both the factory and the returned unit.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

type pgxUnitOfWorkFactory struct {
	db DB
}

func NewUnitOfWorkFactory(db DB) UnitOfWorkFactory {
	return &pgxUnitOfWorkFactory{db: db}
}

func (f *pgxUnitOfWorkFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := f.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txUnitOfWork{
		tx:        tx,
		vehicles:  NewVehicleRepository(tx),
		locations: NewLocationRepository(tx),
	}, nil
}

type txUnitOfWork struct {
	tx        pgx.Tx
	vehicles  VehicleRepository
	locations LocationRepository
}

func (u *txUnitOfWork) Vehicles() VehicleRepository {
	return u.vehicles
}

func (u *txUnitOfWork) Locations() LocationRepository {
	return u.locations
}

func (u *txUnitOfWork) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

// Rollback discards staged writes. Safe to defer alongside Commit: rolling
// back an already-committed transaction is not an error.
func (u *txUnitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
