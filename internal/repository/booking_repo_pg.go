package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/volare/booking/internal/domain"
)

type BookingRepository interface {
	// CreateConfirmed reserves the seats and persists the booking with
	// its tickets as one atomic unit. A rollback releases nothing
	// because the reservation never commits without the rows.
	CreateConfirmed(ctx context.Context, booking *domain.Booking, tickets []domain.Ticket) error
	// Cancel also reports the flights whose seats were released so the
	// caller can invalidate their cached availability.
	Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, []int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
}

type PGBookingRepository struct {
	db     *pgxpool.Pool
	ledger SeatLedger
}

func NewBookingRepository(db *pgxpool.Pool, ledger SeatLedger) BookingRepository {
	return &PGBookingRepository{db: db, ledger: ledger}
}

func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return domain.ErrInvalidInput
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapPgError(err)
	}
	defer tx.Rollback(ctx)

	if err := r.ledger.Reserve(ctx, tx, tickets[0].FlightID, tickets[0].Class, len(tickets)); err != nil {
		return err
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := tx.QueryRow(ctx, `
		INSERT INTO bookings (reference, user_id, status, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.UserID, booking.Status, booking.TotalCents).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return mapPgError(err)
	}

	for i := range tickets {
		tickets[i].BookingID = booking.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO tickets (booking_id, flight_id, class, seat_label, price_cents, extra_baggage, extra_services)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			tickets[i].BookingID, tickets[i].FlightID, tickets[i].Class.String(), tickets[i].SeatLabel,
			tickets[i].PriceCents, tickets[i].ExtraBaggage, tickets[i].ExtraServices).
			Scan(&tickets[i].ID); err != nil {
			return mapPgError(err)
		}
	}

	return tx.Commit(ctx)
}

// Cancel flips a confirmed booking to cancelled and gives back exactly
// the seats its tickets held, all in one transaction. Cancelling an
// already-cancelled booking is a no-op so seats are never released
// twice.
func (r *PGBookingRepository) Cancel(ctx context.Context, bookingID, userID int64) (*domain.Booking, []int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, mapPgError(err)
	}
	defer tx.Rollback(ctx)

	var b domain.Booking
	err = tx.QueryRow(ctx, `
		SELECT id, reference, user_id, status, total_cents, created_at, updated_at
		FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).
		Scan(&b.ID, &b.Reference, &b.UserID, &b.Status, &b.TotalCents, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, mapPgError(err)
	}
	if b.UserID != userID {
		return nil, nil, domain.ErrForbidden
	}
	if b.Status == domain.BookingStatusCancelled {
		return &b, nil, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT flight_id, class, COUNT(*) FROM tickets WHERE booking_id = $1 GROUP BY flight_id, class`, bookingID)
	if err != nil {
		return nil, nil, mapPgError(err)
	}
	type held struct {
		flightID int64
		class    domain.SeatClass
		count    int
	}
	var seats []held
	for rows.Next() {
		var h held
		var className string
		if err := rows.Scan(&h.flightID, &className, &h.count); err != nil {
			rows.Close()
			return nil, nil, err
		}
		if h.class, err = domain.ParseSeatClass(className); err != nil {
			rows.Close()
			return nil, nil, err
		}
		seats = append(seats, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	flightIDs := make([]int64, 0, len(seats))
	for _, h := range seats {
		if err := r.ledger.Release(ctx, tx, h.flightID, h.class, h.count); err != nil {
			return nil, nil, err
		}
		flightIDs = append(flightIDs, h.flightID)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		domain.BookingStatusCancelled, bookingID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, nil, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, domain.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, mapPgError(err)
	}
	b.Status = domain.BookingStatusCancelled
	return &b, flightIDs, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.QueryRow(ctx, `
		SELECT id, reference, user_id, status, total_cents, created_at, updated_at
		FROM bookings WHERE id = $1`, id).
		Scan(&b.ID, &b.Reference, &b.UserID, &b.Status, &b.TotalCents, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, reference, user_id, status, total_cents, created_at, updated_at
		FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	details := make([]domain.BookingDetail, 0)
	for rows.Next() {
		var d domain.BookingDetail
		if err := rows.Scan(&d.ID, &d.Reference, &d.UserID, &d.Status, &d.TotalCents, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range details {
		tickets, err := r.ticketsForBooking(ctx, details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].Tickets = tickets
	}
	return details, nil
}

func (r *PGBookingRepository) ticketsForBooking(ctx context.Context, bookingID int64) ([]domain.TicketDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.booking_id, t.flight_id, t.class, t.seat_label, t.price_cents,
		       t.extra_baggage, t.extra_services,
		       f.flight_number, al.name, dep.city, arr.city, f.departure_time, f.arrival_time
		FROM tickets t
		JOIN flights f ON t.flight_id = f.id
		JOIN airlines al ON f.airline_id = al.id
		JOIN airports dep ON f.departure_airport_id = dep.id
		JOIN airports arr ON f.arrival_airport_id = arr.id
		WHERE t.booking_id = $1
		ORDER BY t.id`, bookingID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	tickets := make([]domain.TicketDetail, 0)
	for rows.Next() {
		var td domain.TicketDetail
		var className string
		if err := rows.Scan(&td.ID, &td.BookingID, &td.FlightID, &className, &td.SeatLabel, &td.PriceCents,
			&td.ExtraBaggage, &td.ExtraServices,
			&td.FlightNumber, &td.Airline, &td.OriginCity, &td.DestinationCity,
			&td.DepartureTime, &td.ArrivalTime); err != nil {
			return nil, err
		}
		if td.Class, err = domain.ParseSeatClass(className); err != nil {
			return nil, err
		}
		tickets = append(tickets, td)
	}
	return tickets, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
