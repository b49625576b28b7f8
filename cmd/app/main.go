package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/volare/booking/config"
	"github.com/volare/booking/internal/bootstrap"
	"github.com/volare/booking/internal/cache"
	"github.com/volare/booking/internal/kafka"
	"github.com/volare/booking/internal/logger"
	"github.com/volare/booking/internal/repository"
	"github.com/volare/booking/internal/service/booking"
	"github.com/volare/booking/internal/service/flights"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fallback := logger.New("")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationsDir != "" {
		if err := repository.RunMigrations(cfg.Database.MigrationsDir, cfg.Database.MigrateURL()); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	cacheTTL := time.Duration(cfg.Search.CacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, cacheTTL)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	ledger := repository.NewSeatLedger(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool, ledger)

	flightService := flights.NewFlightService(
		flightRepo,
		ledger,
		redisCache,
		time.Duration(cfg.Search.MinLayoverMinutes)*time.Minute,
		cfg.Booking.MaxPassengers,
		log,
	)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Booking.MaxPassengers,
		log,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, log, flightService, bookingService); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
