package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Surcharges applied per ticket, in cents.
const (
	ExtraBaggageCents  int64 = 3000
	ExtraServicesCents int64 = 2000
)

type Booking struct {
	ID         int64
	Reference  string
	UserID     int64
	Status     BookingStatus
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ticket consumes one unit of seat-class capacity on its flight for as
// long as its booking is confirmed.
type Ticket struct {
	ID            int64
	BookingID     int64
	FlightID      int64
	Class         SeatClass
	SeatLabel     string
	PriceCents    int64
	ExtraBaggage  bool
	ExtraServices string
}

// TicketDetail is a ticket joined with its flight and route data, as
// returned by the bookings listing.
type TicketDetail struct {
	Ticket
	FlightNumber    string
	Airline         string
	OriginCity      string
	DestinationCity string
	DepartureTime   time.Time
	ArrivalTime     time.Time
}

type BookingDetail struct {
	Booking
	Tickets []TicketDetail
}
