package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/volare/booking/internal/domain"
	"github.com/volare/booking/internal/repository"
)

type FlightUseCase interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Availability(ctx context.Context, flightID int64) (*domain.Availability, error)
	SearchDirect(ctx context.Context, input DirectSearchInput) ([]domain.DirectOption, error)
	SearchConnecting(ctx context.Context, input ConnectionSearchInput) ([]domain.ConnectionOption, error)
	ListAirports(ctx context.Context) ([]domain.Airport, error)
	AirlineStats(ctx context.Context, airlineID int64, from, to time.Time) (*domain.AirlineStats, error)
}

// Cache is the read-side cache the service talks to. A nil cache turns
// every lookup into a repository call.
type Cache interface {
	GetAvailability(ctx context.Context, flightID int64) (*domain.Availability, error)
	SetAvailability(ctx context.Context, av *domain.Availability) error
	GetDirectSearch(ctx context.Context, key string) ([]domain.DirectOption, error)
	SetDirectSearch(ctx context.Context, key string, options []domain.DirectOption) error
}

type DirectSearchInput struct {
	Origin      string
	Destination string
	Date        time.Time
	Passengers  int
	Class       string
	Sort        string
}

type ConnectionSearchInput struct {
	OriginCity      string
	DestinationCity string
	Date            time.Time
}

type FlightService struct {
	repo          repository.FlightRepository
	ledger        repository.SeatLedger
	cache         Cache
	minLayover    time.Duration
	maxPassengers int
	log           zerolog.Logger
}

func NewFlightService(
	repo repository.FlightRepository,
	ledger repository.SeatLedger,
	cache Cache,
	minLayover time.Duration,
	maxPassengers int,
	log zerolog.Logger,
) *FlightService {
	return &FlightService{
		repo:          repo,
		ledger:        ledger,
		cache:         cache,
		minLayover:    minLayover,
		maxPassengers: maxPassengers,
		log:           log,
	}
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: flight id is required", domain.ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

// Availability reads through the cache. The cached entry is dropped by
// booking mutations, so a hit is at most one invalidation behind.
func (s *FlightService) Availability(ctx context.Context, flightID int64) (*domain.Availability, error) {
	if flightID <= 0 {
		return nil, fmt.Errorf("%w: flight id is required", domain.ErrInvalidInput)
	}

	if s.cache != nil {
		av, err := s.cache.GetAvailability(ctx, flightID)
		if err != nil {
			s.log.Warn().Err(err).Int64("flight_id", flightID).Msg("availability cache read failed")
		} else if av != nil {
			return av, nil
		}
	}

	av, err := s.ledger.Availability(ctx, flightID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAvailability(ctx, av); err != nil {
			s.log.Warn().Err(err).Int64("flight_id", flightID).Msg("availability cache write failed")
		}
	}
	return av, nil
}

func (s *FlightService) SearchDirect(ctx context.Context, input DirectSearchInput) ([]domain.DirectOption, error) {
	origin := strings.ToUpper(strings.TrimSpace(input.Origin))
	destination := strings.ToUpper(strings.TrimSpace(input.Destination))
	if len(origin) != 3 || len(destination) != 3 {
		return nil, fmt.Errorf("%w: origin and destination must be 3-letter IATA codes", domain.ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	passengers := input.Passengers
	if passengers == 0 {
		passengers = 1
	}
	if passengers < 1 || passengers > s.maxPassengers {
		return nil, fmt.Errorf("%w: passengers must be between 1 and %d", domain.ErrInvalidInput, s.maxPassengers)
	}

	class := domain.Economy
	if input.Class != "" {
		var err error
		if class, err = domain.ParseSeatClass(input.Class); err != nil {
			return nil, err
		}
	}
	sort := domain.SortByPrice
	if input.Sort != "" {
		var err error
		if sort, err = domain.ParseSortKey(input.Sort); err != nil {
			return nil, err
		}
	}

	key := searchCacheKey(origin, destination, input.Date, passengers, class, sort)
	if s.cache != nil {
		options, err := s.cache.GetDirectSearch(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		} else if options != nil {
			return options, nil
		}
	}

	options, err := s.repo.SearchDirect(ctx, repository.DirectSearchParams{
		OriginIATA:      origin,
		DestinationIATA: destination,
		Date:            input.Date,
		Passengers:      passengers,
		Class:           class,
		Sort:            sort,
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDirectSearch(ctx, key, options); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("search cache write failed")
		}
	}
	return options, nil
}

func (s *FlightService) SearchConnecting(ctx context.Context, input ConnectionSearchInput) ([]domain.ConnectionOption, error) {
	origin := strings.TrimSpace(input.OriginCity)
	destination := strings.TrimSpace(input.DestinationCity)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination cities are required", domain.ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	return s.repo.SearchConnecting(ctx, repository.ConnectionSearchParams{
		OriginCity:      origin,
		DestinationCity: destination,
		Date:            input.Date,
		MinLayover:      s.minLayover,
	})
}

func (s *FlightService) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.ListAirports(ctx)
}

func (s *FlightService) AirlineStats(ctx context.Context, airlineID int64, from, to time.Time) (*domain.AirlineStats, error) {
	if airlineID <= 0 {
		return nil, fmt.Errorf("%w: airline id is required", domain.ErrInvalidInput)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end precedes its start", domain.ErrInvalidInput)
	}
	return s.repo.AirlineStats(ctx, airlineID, from, to)
}

func searchCacheKey(origin, destination string, date time.Time, passengers int, class domain.SeatClass, sort domain.SortKey) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s:%s",
		origin, destination, date.Format("2006-01-02"), passengers, class, sort)
}

var _ FlightUseCase = (*FlightService)(nil)
