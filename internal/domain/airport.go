package domain

type Airport struct {
	ID       int64
	IATACode string
	Name     string
	City     string
	Country  string
}

type Airline struct {
	ID       int64
	IATACode string
	Name     string
}

// AirlineStats aggregates ticket sales for one airline over a period.
type AirlineStats struct {
	AirlineID      int64
	Airline        string
	Flights        int
	Passengers     int
	RevenueCents   int64
	AvgTicketCents int64
	ByClass        ClassCounts
}
