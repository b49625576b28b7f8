package domain

import (
	"fmt"
	"strings"
	"time"
)

// SeatClass identifies one of the three cabins of a flight. It indexes
// the fixed-size capacity, sold and price arrays on Flight.
type SeatClass int

const (
	Economy SeatClass = iota
	Business
	First

	NumSeatClasses = 3
)

var seatClassNames = [NumSeatClasses]string{"economy", "business", "first"}

// SeatClasses lists every class in array order.
var SeatClasses = [NumSeatClasses]SeatClass{Economy, Business, First}

func ParseSeatClass(s string) (SeatClass, error) {
	switch strings.ToLower(s) {
	case "economy":
		return Economy, nil
	case "business":
		return Business, nil
	case "first":
		return First, nil
	}
	return 0, fmt.Errorf("%w: unknown seat class %q", ErrInvalidInput, s)
}

func (c SeatClass) String() string {
	if c < 0 || c >= NumSeatClasses {
		return fmt.Sprintf("SeatClass(%d)", int(c))
	}
	return seatClassNames[c]
}

// Letter is the seat label prefix ("E", "B", "F").
func (c SeatClass) Letter() string {
	return strings.ToUpper(c.String()[:1])
}

// ClassCounts holds one integer per seat class, indexed by SeatClass.
type ClassCounts [NumSeatClasses]int

func (cc ClassCounts) Of(c SeatClass) int { return cc[c] }

// ClassPrices holds one price in cents per seat class.
type ClassPrices [NumSeatClasses]int64

func (cp ClassPrices) Of(c SeatClass) int64 { return cp[c] }

type Flight struct {
	ID                 int64
	Number             string
	AirlineID          int64
	DepartureAirportID int64
	ArrivalAirportID   int64
	DepartureTime      time.Time
	ArrivalTime        time.Time
	Capacity           ClassCounts
	Sold               ClassCounts
	PriceCents         ClassPrices
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TotalSeats is the derived sum of class capacities.
func (f *Flight) TotalSeats() int {
	total := 0
	for _, c := range SeatClasses {
		total += f.Capacity[c]
	}
	return total
}

func (f *Flight) Remaining(c SeatClass) int {
	return f.Capacity[c] - f.Sold[c]
}

func (f *Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Availability is the committed remaining-seat view of one flight.
type Availability struct {
	FlightID  int64
	Remaining ClassCounts
}

type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByDuration SortKey = "duration"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(s)) {
	case SortByPrice:
		return SortByPrice, nil
	case SortByDuration:
		return SortByDuration, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidInput, s)
}

// DirectOption is one direct-flight search result.
type DirectOption struct {
	FlightID        int64
	FlightNumber    string
	Airline         string
	OriginCity      string
	DestinationCity string
	DepartureTime   time.Time
	ArrivalTime     time.Time
	SeatsLeft       int
	PriceCents      int64
}

// ConnectionLeg is one segment of a two-leg itinerary.
type ConnectionLeg struct {
	FlightID        int64
	FlightNumber    string
	Airline         string
	OriginCity      string
	DestinationCity string
	DepartureTime   time.Time
	ArrivalTime     time.Time
}

// ConnectionOption is a two-leg itinerary where the first leg arrives in
// the city the second departs from. TotalCents combines both legs' fares
// per class; connections are not filtered by seat availability.
type ConnectionOption struct {
	FirstLeg   ConnectionLeg
	SecondLeg  ConnectionLeg
	TotalCents ClassPrices
}

func (o ConnectionOption) Layover() time.Duration {
	return o.SecondLeg.DepartureTime.Sub(o.FirstLeg.ArrivalTime)
}
