package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/volare/booking/api"
	"github.com/volare/booking/config"
	"github.com/volare/booking/internal/service/booking"
	"github.com/volare/booking/internal/service/flights"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	flightHandler := api.NewFlightHandler(flightSvc)
	flightHandler.Register(engine.Group("/flights"))
	flightHandler.RegisterAirports(engine.Group("/airports"))
	flightHandler.RegisterAirlines(engine.Group("/airlines"))

	bookingHandler := api.NewBookingHandler(bookingSvc)
	bookingHandler.Register(engine.Group("/bookings"))

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
