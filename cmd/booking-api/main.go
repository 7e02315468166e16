package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appbooking "stayflow/internal/app/booking"
	appuser "stayflow/internal/app/user"
	domainbooking "stayflow/internal/domain/booking"
	domainuser "stayflow/internal/domain/user"
	"stayflow/internal/infra/broker/kafka"
	"stayflow/internal/infra/config"
	mongodb "stayflow/internal/infra/db/mongo"
	ginserver "stayflow/internal/infra/http/gin"
	"stayflow/internal/infra/inventory"
	"stayflow/internal/infra/obs"
	"stayflow/internal/infra/security"
	"stayflow/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadBooking()
	if err != nil {
		obs.NewLogger("dev").Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	tokens, err := security.NewTokenProvider(cfg.JWTSecret)
	if err != nil {
		logger.Error("token provider init failed", "error", err)
		os.Exit(1)
	}

	var (
		bookings domainbooking.Repository
		users    domainuser.Repository
		ready    = func() error { return nil }
	)
	switch cfg.Storage {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connect failed", "error", err)
			os.Exit(1)
		}
		bookingRepo := mongodb.NewBookingRepository(client.DB)
		userRepo := mongodb.NewUserRepository(client.DB)
		if err := bookingRepo.EnsureIndexes(ctx); err != nil {
			logger.Error("booking index creation failed", "error", err)
			os.Exit(1)
		}
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			logger.Error("user index creation failed", "error", err)
			os.Exit(1)
		}
		bookings, users = bookingRepo, userRepo
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("storage backend ready", "backend", "mongo", "db", cfg.MongoDB)
	default:
		bookings = memory.NewBookingRepository()
		users = memory.NewUserRepository()
		logger.Info("storage backend ready", "backend", "memory")
	}

	var events appbooking.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		}()
		events = &kafka.EventPublisher{Producer: producer, Topic: cfg.KafkaTopic}
		logger.Info("event publishing enabled", "topic", cfg.KafkaTopic)
	}

	inventoryClient := &inventory.Client{
		BaseURL:    cfg.HotelBaseURL,
		HTTP:       &http.Client{},
		Retries:    cfg.ClientRetries,
		Backoff:    cfg.ClientBackoff,
		MaxBackoff: cfg.ClientMaxDelay,
		Timeout:    cfg.ClientTimeout,
		Logger:     logger,
	}

	userService := &appuser.Service{
		Users:  users,
		Hasher: security.BcryptHasher{},
		Tokens: tokens,
	}
	bookingService := &appbooking.Service{
		Bookings:  bookings,
		Inventory: inventoryClient,
		Tokens:    security.ServiceTokens{Provider: tokens},
		Events:    events,
		Logger:    logger,
	}

	server := ginserver.NewBookingServer(cfg.Env, cfg.HTTPAddr,
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Ready: ready},
		ginserver.BookingHandlers{
			User:           ginserver.UserHandler{Service: userService, Logger: logger},
			Booking:        ginserver.BookingHandler{Service: bookingService, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens}.Handle,
		})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("booking-api starting", "addr", cfg.HTTPAddr, "hotel_base_url", cfg.HotelBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("booking-api stopped")
}
