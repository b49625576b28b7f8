package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/volare/booking/internal/domain"
	"github.com/volare/booking/internal/service/booking"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID, userID int64) error {
	args := m.Called(ctx, bookingID, userID)
	return args.Error(0)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createBookingRequest{FlightID: 4, Class: "business", Passengers: 2})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("X-User-ID", "7")

	result := &domain.Booking{ID: 42, Reference: "ref-42", Status: domain.BookingStatusConfirmed, TotalCents: 90000}
	mockService.On("CreateBooking", c.Request.Context(), booking.CreateBookingInput{
		UserID:     7,
		FlightID:   4,
		Class:      "business",
		Passengers: 2,
	}).Return(result, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, int64(90000), resp.TotalCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_MissingUser(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createBookingRequest{FlightID: 4, Class: "economy", Passengers: 1})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_create_ErrorStatuses(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "insufficient seats", err: domain.ErrInsufficientSeats, expected: http.StatusConflict},
		{name: "flight not found", err: domain.ErrNotFound, expected: http.StatusNotFound},
		{name: "bad input", err: domain.ErrInvalidInput, expected: http.StatusBadRequest},
		{name: "retryable conflict", err: domain.ErrConflict, expected: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			body, _ := json.Marshal(createBookingRequest{FlightID: 4, Class: "economy", Passengers: 1})
			c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
			c.Request.Header.Set("X-User-ID", "7")

			mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, tc.err)

			handler.create(c)

			assert.Equal(t, tc.expected, w.Code)
		})
	}
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/42", nil)
	c.Request.Header.Set("X-User-ID", "7")

	mockService.On("CancelBooking", c.Request.Context(), int64(42), int64(7)).Return(nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_Forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/42", nil)
	c.Request.Header.Set("X-User-ID", "8")

	mockService.On("CancelBooking", c.Request.Context(), int64(42), int64(8)).Return(domain.ErrForbidden)

	handler.cancel(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings", nil)
	c.Request.Header.Set("X-User-ID", "7")

	details := []domain.BookingDetail{{
		Booking: domain.Booking{ID: 42, Reference: "ref-42", UserID: 7, Status: domain.BookingStatusConfirmed, TotalCents: 45000},
		Tickets: []domain.TicketDetail{{
			Ticket:       domain.Ticket{ID: 1, BookingID: 42, FlightID: 4, Class: domain.Business, SeatLabel: "B1", PriceCents: 45000},
			FlightNumber: "VL-101",
			Airline:      "Volare Air",
		}},
	}}
	mockService.On("ListBookings", c.Request.Context(), int64(7)).Return(details, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []bookingDetailResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Len(t, resp[0].Tickets, 1)
	assert.Equal(t, "B1", resp[0].Tickets[0].SeatLabel)
	assert.Equal(t, "business", resp[0].Tickets[0].Class)
}
