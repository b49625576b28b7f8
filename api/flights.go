package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volare/booking/internal/domain"
	"github.com/volare/booking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search/direct", h.searchDirect)
	router.GET("/search/connections", h.searchConnections)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
}

func (h *FlightHandler) RegisterAirports(router *gin.RouterGroup) {
	router.GET("", h.listAirports)
}

func (h *FlightHandler) RegisterAirlines(router *gin.RouterGroup) {
	router.GET("/:id/stats", h.airlineStats)
}

type flightResponse struct {
	ID            int64            `json:"id"`
	FlightNumber  string           `json:"flight_number"`
	DepartureTime time.Time        `json:"departure_time"`
	ArrivalTime   time.Time        `json:"arrival_time"`
	TotalSeats    int              `json:"total_seats"`
	Seats         map[string]int   `json:"seats"`
	PriceCents    map[string]int64 `json:"price_cents"`
}

type availabilityResponse struct {
	FlightID  int64          `json:"flight_id"`
	Remaining map[string]int `json:"remaining"`
}

type directOptionResponse struct {
	FlightID        int64     `json:"flight_id"`
	FlightNumber    string    `json:"flight_number"`
	Airline         string    `json:"airline"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	SeatsLeft       int       `json:"seats_left"`
	PriceCents      int64     `json:"price_cents"`
}

type connectionLegResponse struct {
	FlightID        int64     `json:"flight_id"`
	FlightNumber    string    `json:"flight_number"`
	Airline         string    `json:"airline"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
}

type connectionOptionResponse struct {
	FirstLeg       connectionLegResponse `json:"first_leg"`
	SecondLeg      connectionLegResponse `json:"second_leg"`
	LayoverMinutes int                   `json:"layover_minutes"`
	TotalCents     map[string]int64      `json:"total_cents"`
}

type airportResponse struct {
	ID       int64  `json:"id"`
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

type airlineStatsResponse struct {
	AirlineID      int64          `json:"airline_id"`
	Airline        string         `json:"airline"`
	Flights        int            `json:"flights"`
	Passengers     int            `json:"passengers"`
	RevenueCents   int64          `json:"revenue_cents"`
	AvgTicketCents int64          `json:"avg_ticket_cents"`
	ByClass        map[string]int `json:"by_class"`
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	seats := make(map[string]int, domain.NumSeatClasses)
	prices := make(map[string]int64, domain.NumSeatClasses)
	for _, class := range domain.SeatClasses {
		seats[class.String()] = flight.Capacity[class]
		prices[class.String()] = flight.PriceCents[class]
	}
	c.JSON(http.StatusOK, flightResponse{
		ID:            flight.ID,
		FlightNumber:  flight.Number,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		TotalSeats:    flight.TotalSeats(),
		Seats:         seats,
		PriceCents:    prices,
	})
}

func (h *FlightHandler) availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	av, err := h.service.Availability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	remaining := make(map[string]int, domain.NumSeatClasses)
	for _, class := range domain.SeatClasses {
		remaining[class.String()] = av.Remaining[class]
	}
	c.JSON(http.StatusOK, availabilityResponse{FlightID: av.FlightID, Remaining: remaining})
}

func (h *FlightHandler) searchDirect(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return
	}
	passengers := 0
	if raw := c.Query("passengers"); raw != "" {
		if passengers, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passengers must be a number"})
			return
		}
	}

	options, err := h.service.SearchDirect(c.Request.Context(), flights.DirectSearchInput{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        date,
		Passengers:  passengers,
		Class:       c.Query("class"),
		Sort:        c.Query("sort"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]directOptionResponse, 0, len(options))
	for _, o := range options {
		resp = append(resp, directOptionResponse{
			FlightID:        o.FlightID,
			FlightNumber:    o.FlightNumber,
			Airline:         o.Airline,
			OriginCity:      o.OriginCity,
			DestinationCity: o.DestinationCity,
			DepartureTime:   o.DepartureTime,
			ArrivalTime:     o.ArrivalTime,
			SeatsLeft:       o.SeatsLeft,
			PriceCents:      o.PriceCents,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) searchConnections(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return
	}

	options, err := h.service.SearchConnecting(c.Request.Context(), flights.ConnectionSearchInput{
		OriginCity:      c.Query("origin_city"),
		DestinationCity: c.Query("destination_city"),
		Date:            date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]connectionOptionResponse, 0, len(options))
	for _, o := range options {
		totals := make(map[string]int64, domain.NumSeatClasses)
		for _, class := range domain.SeatClasses {
			totals[class.String()] = o.TotalCents[class]
		}
		resp = append(resp, connectionOptionResponse{
			FirstLeg:       legResponse(o.FirstLeg),
			SecondLeg:      legResponse(o.SecondLeg),
			LayoverMinutes: int(o.Layover().Minutes()),
			TotalCents:     totals,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) listAirports(c *gin.Context) {
	airports, err := h.service.ListAirports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]airportResponse, 0, len(airports))
	for _, a := range airports {
		resp = append(resp, airportResponse{ID: a.ID, IATACode: a.IATACode, Name: a.Name, City: a.City, Country: a.Country})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) airlineStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid airline id"})
		return
	}

	to := time.Now()
	from := time.Time{}
	if raw := c.Query("from"); raw != "" {
		if from, err = parseDate(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be formatted as YYYY-MM-DD"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = parseDate(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be formatted as YYYY-MM-DD"})
			return
		}
	}

	stats, err := h.service.AirlineStats(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	byClass := make(map[string]int, domain.NumSeatClasses)
	for _, class := range domain.SeatClasses {
		byClass[class.String()] = stats.ByClass[class]
	}
	c.JSON(http.StatusOK, airlineStatsResponse{
		AirlineID:      stats.AirlineID,
		Airline:        stats.Airline,
		Flights:        stats.Flights,
		Passengers:     stats.Passengers,
		RevenueCents:   stats.RevenueCents,
		AvgTicketCents: stats.AvgTicketCents,
		ByClass:        byClass,
	})
}

func legResponse(leg domain.ConnectionLeg) connectionLegResponse {
	return connectionLegResponse{
		FlightID:        leg.FlightID,
		FlightNumber:    leg.FlightNumber,
		Airline:         leg.Airline,
		OriginCity:      leg.OriginCity,
		DestinationCity: leg.DestinationCity,
		DepartureTime:   leg.DepartureTime,
		ArrivalTime:     leg.ArrivalTime,
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
