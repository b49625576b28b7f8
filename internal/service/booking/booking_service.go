package booking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/volare/booking/internal/domain"
	"github.com/volare/booking/internal/kafka"
	"github.com/volare/booking/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) error
	ListBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
}

type Cache interface {
	InvalidateFlight(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	maxPassengers      int
	log                zerolog.Logger
}

type CreateBookingInput struct {
	UserID        int64  `json:"user_id"`
	FlightID      int64  `json:"flight_id"`
	Class         string `json:"class"`
	Passengers    int    `json:"passengers"`
	ExtraBaggage  bool   `json:"extra_baggage"`
	ExtraServices string `json:"extra_services"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	maxPassengers int,
	log zerolog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		flights:       flights,
		cache:         cache,
		producer:      producer,
		bookingTopic:  bookingTopic,
		maxPassengers: maxPassengers,
		log:           log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates the request, then commits the reservation,
// the booking row and one ticket per passenger as a single atomic unit.
// Either every ticket exists and the seats are counted sold, or nothing
// changed.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.UserID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if input.Passengers < 1 || input.Passengers > s.maxPassengers {
		return nil, fmt.Errorf("%w: passengers must be between 1 and %d", domain.ErrInvalidInput, s.maxPassengers)
	}
	class, err := domain.ParseSeatClass(input.Class)
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, input.Passengers)
	var total int64
	for i := range tickets {
		price := flight.PriceCents[class]
		if input.ExtraBaggage {
			price += domain.ExtraBaggageCents
		}
		if input.ExtraServices != "" {
			price += domain.ExtraServicesCents
		}
		tickets[i] = domain.Ticket{
			FlightID:      flight.ID,
			Class:         class,
			SeatLabel:     class.Letter() + strconv.Itoa(i+1),
			PriceCents:    price,
			ExtraBaggage:  input.ExtraBaggage,
			ExtraServices: input.ExtraServices,
		}
		total += price
	}

	booking := &domain.Booking{
		Reference:  uuid.NewString(),
		UserID:     input.UserID,
		TotalCents: total,
	}

	if err := s.bookings.CreateConfirmed(ctx, booking, tickets); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlight(ctx, flight.ID); err != nil {
			s.log.Warn().Err(err).Int64("flight_id", flight.ID).Msg("availability cache invalidation failed")
		}
	}

	event := s.event(kafka.EventBookingCreated, booking, flight.ID, class.String(), input.Passengers)
	if err := s.publish(ctx, event, false); err != nil {
		s.log.Error().Err(err).Str("reference", booking.Reference).Msg("publish booking_created failed")
	}
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) error {
	booking, flightIDs, err := s.bookings.Cancel(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if len(flightIDs) == 0 {
		// already cancelled, nothing was released
		return nil
	}

	if s.cache != nil {
		for _, id := range flightIDs {
			if err := s.cache.InvalidateFlight(ctx, id); err != nil {
				s.log.Warn().Err(err).Int64("flight_id", id).Msg("availability cache invalidation failed")
			}
		}
	}

	event := s.event(kafka.EventBookingCancelled, booking, flightIDs[0], "", 0)
	if err := s.publish(ctx, event, true); err != nil {
		s.log.Error().Err(err).Str("reference", booking.Reference).Msg("publish booking_cancelled failed")
	}
	return nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) event(eventType string, b *domain.Booking, flightID int64, class string, passengers int) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:       eventType,
		Reference:  b.Reference,
		BookingID:  b.ID,
		UserID:     b.UserID,
		FlightID:   flightID,
		Class:      class,
		Passengers: passengers,
		TotalCents: b.TotalCents,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent, retry bool) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	var err error
	if retry {
		err = s.producer.PublishWithRetry(ctx, s.bookingTopic, event.Reference, event, 3)
	} else {
		err = s.producer.Publish(ctx, s.bookingTopic, event.Reference, event)
	}
	if err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, event.Reference, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
