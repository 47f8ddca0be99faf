package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/srgjo27/rental_checkout/internal/adapter/cache"
	"github.com/srgjo27/rental_checkout/internal/adapter/events"
	"github.com/srgjo27/rental_checkout/internal/adapter/handler"
	"github.com/srgjo27/rental_checkout/internal/adapter/payment/paypal"
	"github.com/srgjo27/rental_checkout/internal/adapter/repository/postgres"
	"github.com/srgjo27/rental_checkout/internal/adapter/session"
	"github.com/srgjo27/rental_checkout/internal/core/ports"
	"github.com/srgjo27/rental_checkout/internal/core/services"
	"github.com/srgjo27/rental_checkout/internal/platform/config"
	"github.com/srgjo27/rental_checkout/internal/platform/database"
	"github.com/srgjo27/rental_checkout/internal/platform/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db after retries")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	log.Info().Str("addr", cfg.RedisAddr).Msg("connecting to redis")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	log.Info().Msg("redis connected")

	var publisher ports.EventPublisher = events.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing booking events to kafka")
	}

	gateway, err := paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPalBaseURL,
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid payment processor configuration")
	}

	cartRepo := postgres.NewCartRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	cartCache := cache.NewRedisCache(redisClient, cfg.CartCacheTTL)
	cartService := services.NewCartService(cartRepo, itemRepo, cartCache)
	bookingService := services.NewBookingService(bookingRepo, cartCache, gateway, publisher)
	carts := services.NewCartStores(cartService)

	handoff := services.NewCheckoutHandoff(session.NewRedisStore(redisClient), cfg.SnapshotTTL)
	payments := services.NewPaymentOrchestrator(handoff, carts, services.NewBookingConfirmation(bookingService), gateway, services.PaymentConfig{
		Currency:         cfg.Currency,
		ReturnURL:        cfg.PublicBaseURL + "/api/v1/payment/return",
		CancelURL:        cfg.PublicBaseURL + "/api/v1/payment/cancel",
		ReconcileTimeout: cfg.ReconcileTimeout,
	})

	h := handler.NewHandler(carts, handoff, payments)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.NewRouter(h, log.Logger, 30*time.Second),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server startup failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
