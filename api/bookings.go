package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volare/booking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.DELETE("/:id", h.cancel)
}

type createBookingRequest struct {
	FlightID      int64  `json:"flight_id"`
	Class         string `json:"class"`
	Passengers    int    `json:"passengers"`
	ExtraBaggage  bool   `json:"extra_baggage"`
	ExtraServices string `json:"extra_services"`
}

type bookingResponse struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

type ticketResponse struct {
	ID              int64     `json:"id"`
	FlightID        int64     `json:"flight_id"`
	FlightNumber    string    `json:"flight_number"`
	Airline         string    `json:"airline"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Class           string    `json:"class"`
	SeatLabel       string    `json:"seat_label"`
	PriceCents      int64     `json:"price_cents"`
	ExtraBaggage    bool      `json:"extra_baggage"`
	ExtraServices   string    `json:"extra_services,omitempty"`
}

type bookingDetailResponse struct {
	bookingResponse
	Tickets []ticketResponse `json:"tickets"`
}

// userID reads the caller's identity from the X-User-ID header. Auth
// proper lives upstream; the API only needs to know who is asking.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) create(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:        user,
		FlightID:      req.FlightID,
		Class:         req.Class,
		Passengers:    req.Passengers,
		ExtraBaggage:  req.ExtraBaggage,
		ExtraServices: req.ExtraServices,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		ID:         result.ID,
		Reference:  result.Reference,
		Status:     string(result.Status),
		TotalCents: result.TotalCents,
		CreatedAt:  result.CreatedAt,
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "CANCELLED"})
}

func (h *BookingHandler) list(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	details, err := h.service.ListBookings(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]bookingDetailResponse, 0, len(details))
	for _, d := range details {
		tickets := make([]ticketResponse, 0, len(d.Tickets))
		for _, t := range d.Tickets {
			tickets = append(tickets, ticketResponse{
				ID:              t.ID,
				FlightID:        t.FlightID,
				FlightNumber:    t.FlightNumber,
				Airline:         t.Airline,
				OriginCity:      t.OriginCity,
				DestinationCity: t.DestinationCity,
				DepartureTime:   t.DepartureTime,
				ArrivalTime:     t.ArrivalTime,
				Class:           t.Class.String(),
				SeatLabel:       t.SeatLabel,
				PriceCents:      t.PriceCents,
				ExtraBaggage:    t.ExtraBaggage,
				ExtraServices:   t.ExtraServices,
			})
		}
		resp = append(resp, bookingDetailResponse{
			bookingResponse: bookingResponse{
				ID:         d.ID,
				Reference:  d.Reference,
				Status:     string(d.Status),
				TotalCents: d.TotalCents,
				CreatedAt:  d.CreatedAt,
			},
			Tickets: tickets,
		})
	}
	c.JSON(http.StatusOK, resp)
}
