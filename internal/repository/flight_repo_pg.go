package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/volare/booking/internal/domain"
)

type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SearchDirect(ctx context.Context, p DirectSearchParams) ([]domain.DirectOption, error)
	SearchConnecting(ctx context.Context, p ConnectionSearchParams) ([]domain.ConnectionOption, error)
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	AirlineStats(ctx context.Context, airlineID int64, from, to time.Time) (*domain.AirlineStats, error)
}

type DirectSearchParams struct {
	OriginIATA      string
	DestinationIATA string
	Date            time.Time
	Passengers      int
	Class           domain.SeatClass
	Sort            domain.SortKey
}

type ConnectionSearchParams struct {
	OriginCity      string
	DestinationCity string
	Date            time.Time
	MinLayover      time.Duration
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, flight_number, airline_id, departure_airport_id, arrival_airport_id,
		       departure_time, arrival_time,
		       seats_economy, seats_business, seats_first,
		       sold_economy, sold_business, sold_first,
		       price_economy_cents, price_business_cents, price_first_cents,
		       created_at, updated_at
		FROM flights WHERE id = $1`, id)
	var f domain.Flight
	err := row.Scan(&f.ID, &f.Number, &f.AirlineID, &f.DepartureAirportID, &f.ArrivalAirportID,
		&f.DepartureTime, &f.ArrivalTime,
		&f.Capacity[domain.Economy], &f.Capacity[domain.Business], &f.Capacity[domain.First],
		&f.Sold[domain.Economy], &f.Sold[domain.Business], &f.Sold[domain.First],
		&f.PriceCents[domain.Economy], &f.PriceCents[domain.Business], &f.PriceCents[domain.First],
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return &f, nil
}

// SearchDirect matches flights on origin/destination IATA code and
// calendar date, keeping only those with enough committed remaining
// seats in the requested class. Ordering is resolved in SQL; flight id
// breaks ties so results are deterministic.
func (r *PGFlightRepository) SearchDirect(ctx context.Context, p DirectSearchParams) ([]domain.DirectOption, error) {
	sold, seats, price := soldColumns[p.Class], seatsColumns[p.Class], priceColumns[p.Class]

	order := fmt.Sprintf("f.%s ASC, f.id ASC", price)
	if p.Sort == domain.SortByDuration {
		order = "(f.arrival_time - f.departure_time) ASC, f.id ASC"
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT f.id, f.flight_number, al.name, dep.city, arr.city,
		       f.departure_time, f.arrival_time,
		       f.%[2]s - f.%[1]s, f.%[3]s
		FROM flights f
		JOIN airlines al ON f.airline_id = al.id
		JOIN airports dep ON f.departure_airport_id = dep.id
		JOIN airports arr ON f.arrival_airport_id = arr.id
		WHERE dep.iata_code = $1
		  AND arr.iata_code = $2
		  AND f.departure_time::date = $3::date
		  AND f.%[2]s - f.%[1]s >= $4
		ORDER BY %[4]s`, sold, seats, price, order),
		p.OriginIATA, p.DestinationIATA, p.Date, p.Passengers)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	options := make([]domain.DirectOption, 0)
	for rows.Next() {
		var o domain.DirectOption
		if err := rows.Scan(&o.FlightID, &o.FlightNumber, &o.Airline, &o.OriginCity, &o.DestinationCity,
			&o.DepartureTime, &o.ArrivalTime, &o.SeatsLeft, &o.PriceCents); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// SearchConnecting self-joins the day's flights on the intermediate
// city with a minimum layover between the first leg's arrival and the
// second leg's departure. Combined fares are computed for all three
// classes. No seat filter is applied to connections.
func (r *PGFlightRepository) SearchConnecting(ctx context.Context, p ConnectionSearchParams) ([]domain.ConnectionOption, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.flight_number, ala.name, depa.city, arra.city, a.departure_time, a.arrival_time,
		       b.id, b.flight_number, alb.name, depb.city, arrb.city, b.departure_time, b.arrival_time,
		       a.price_economy_cents  + b.price_economy_cents,
		       a.price_business_cents + b.price_business_cents,
		       a.price_first_cents    + b.price_first_cents
		FROM flights a
		JOIN airports depa ON a.departure_airport_id = depa.id
		JOIN airports arra ON a.arrival_airport_id = arra.id
		JOIN airlines ala ON a.airline_id = ala.id
		JOIN flights b ON b.id <> a.id
		JOIN airports depb ON b.departure_airport_id = depb.id
		JOIN airports arrb ON b.arrival_airport_id = arrb.id
		JOIN airlines alb ON b.airline_id = alb.id
		WHERE depa.city = $1
		  AND arrb.city = $2
		  AND a.departure_time::date = $3::date
		  AND b.departure_time::date = $3::date
		  AND depb.city = arra.city
		  AND b.departure_time - a.arrival_time >= make_interval(mins => $4)
		ORDER BY a.id ASC, b.id ASC`,
		p.OriginCity, p.DestinationCity, p.Date, int(p.MinLayover.Minutes()))
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	options := make([]domain.ConnectionOption, 0)
	for rows.Next() {
		var o domain.ConnectionOption
		if err := rows.Scan(
			&o.FirstLeg.FlightID, &o.FirstLeg.FlightNumber, &o.FirstLeg.Airline,
			&o.FirstLeg.OriginCity, &o.FirstLeg.DestinationCity,
			&o.FirstLeg.DepartureTime, &o.FirstLeg.ArrivalTime,
			&o.SecondLeg.FlightID, &o.SecondLeg.FlightNumber, &o.SecondLeg.Airline,
			&o.SecondLeg.OriginCity, &o.SecondLeg.DestinationCity,
			&o.SecondLeg.DepartureTime, &o.SecondLeg.ArrivalTime,
			&o.TotalCents[domain.Economy], &o.TotalCents[domain.Business], &o.TotalCents[domain.First]); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (r *PGFlightRepository) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT id, iata_code, name, city, country FROM airports ORDER BY iata_code`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(&a.ID, &a.IATACode, &a.Name, &a.City, &a.Country); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}

// AirlineStats aggregates confirmed ticket sales for one airline over a
// departure-time range. An airline with no flights in the period gets
// zeroed stats rather than an error.
func (r *PGFlightRepository) AirlineStats(ctx context.Context, airlineID int64, from, to time.Time) (*domain.AirlineStats, error) {
	stats := &domain.AirlineStats{AirlineID: airlineID}
	err := r.db.QueryRow(ctx, `
		SELECT al.name,
		       COUNT(DISTINCT f.id),
		       COUNT(t.id),
		       COALESCE(SUM(t.price_cents), 0)::bigint,
		       COALESCE(AVG(t.price_cents), 0)::bigint,
		       COUNT(t.id) FILTER (WHERE t.class = 'economy'),
		       COUNT(t.id) FILTER (WHERE t.class = 'business'),
		       COUNT(t.id) FILTER (WHERE t.class = 'first')
		FROM airlines al
		LEFT JOIN flights f ON f.airline_id = al.id
		  AND f.departure_time >= $2 AND f.departure_time <= $3
		LEFT JOIN tickets t ON t.flight_id = f.id
		  AND EXISTS (SELECT 1 FROM bookings bk WHERE bk.id = t.booking_id AND bk.status = 'CONFIRMED')
		WHERE al.id = $1
		GROUP BY al.id, al.name`, airlineID, from, to).
		Scan(&stats.Airline, &stats.Flights, &stats.Passengers,
			&stats.RevenueCents, &stats.AvgTicketCents,
			&stats.ByClass[domain.Economy], &stats.ByClass[domain.Business], &stats.ByClass[domain.First])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return stats, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
