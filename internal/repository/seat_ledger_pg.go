package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/volare/booking/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so ledger operations
// can run standalone or inside the booking transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SeatLedger is the single owner of per-flight, per-class sold counts.
// Reserve is check-and-increment in one statement; two concurrent
// reservations on the same flight serialize on the row lock and the
// loser re-evaluates the ceiling against the committed count.
type SeatLedger interface {
	Reserve(ctx context.Context, q DBTX, flightID int64, class domain.SeatClass, count int) error
	Release(ctx context.Context, q DBTX, flightID int64, class domain.SeatClass, count int) error
	Availability(ctx context.Context, flightID int64) (*domain.Availability, error)
}

var (
	soldColumns  = [domain.NumSeatClasses]string{"sold_economy", "sold_business", "sold_first"}
	seatsColumns = [domain.NumSeatClasses]string{"seats_economy", "seats_business", "seats_first"}
	priceColumns = [domain.NumSeatClasses]string{"price_economy_cents", "price_business_cents", "price_first_cents"}
)

type PGSeatLedger struct {
	db *pgxpool.Pool
}

func NewSeatLedger(db *pgxpool.Pool) SeatLedger {
	return &PGSeatLedger{db: db}
}

func (l *PGSeatLedger) Reserve(ctx context.Context, q DBTX, flightID int64, class domain.SeatClass, count int) error {
	sold, seats := soldColumns[class], seatsColumns[class]
	tag, err := q.Exec(ctx, fmt.Sprintf(
		`UPDATE flights SET %[1]s = %[1]s + $2, updated_at = now() WHERE id = $1 AND %[1]s + $2 <= %[2]s`,
		sold, seats), flightID, count)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1)`, flightID).Scan(&exists); err != nil {
			return mapPgError(err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientSeats
	}
	return nil
}

func (l *PGSeatLedger) Release(ctx context.Context, q DBTX, flightID int64, class domain.SeatClass, count int) error {
	sold := soldColumns[class]
	tag, err := q.Exec(ctx, fmt.Sprintf(
		`UPDATE flights SET %[1]s = %[1]s - $2, updated_at = now() WHERE id = $1`,
		sold), flightID, count)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (l *PGSeatLedger) Availability(ctx context.Context, flightID int64) (*domain.Availability, error) {
	av := &domain.Availability{FlightID: flightID}
	err := l.db.QueryRow(ctx, `
		SELECT seats_economy - sold_economy,
		       seats_business - sold_business,
		       seats_first - sold_first
		FROM flights WHERE id = $1`, flightID).
		Scan(&av.Remaining[domain.Economy], &av.Remaining[domain.Business], &av.Remaining[domain.First])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return av, nil
}

// mapPgError turns lock and serialization failures into the retryable
// sentinel so callers can distinguish them from hard errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Code)
		}
	}
	return err
}

var _ SeatLedger = (*PGSeatLedger)(nil)
