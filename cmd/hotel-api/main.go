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
	"github.com/redis/go-redis/v9"

	appinventory "stayflow/internal/app/inventory"
	domainhotel "stayflow/internal/domain/hotel"
	domainres "stayflow/internal/domain/reservation"
	"stayflow/internal/infra/config"
	"stayflow/internal/infra/db/gormstore"
	ginserver "stayflow/internal/infra/http/gin"
	"stayflow/internal/infra/locks"
	"stayflow/internal/infra/obs"
	"stayflow/internal/infra/security"
	"stayflow/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadHotel()
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
		hotels       domainhotel.HotelRepository
		rooms        domainhotel.RoomRepository
		reservations domainres.Store
	)
	switch cfg.Storage {
	case "mysql":
		db, err := gormstore.Open(cfg.MySQLDSN)
		if err != nil {
			logger.Error("mysql connect failed", "error", err)
			os.Exit(1)
		}
		hotels = gormstore.NewHotelRepository(db)
		rooms = gormstore.NewRoomRepository(db)
		reservations = gormstore.NewReservationStore(db)
		logger.Info("storage backend ready", "backend", "mysql")
	default:
		store := memory.NewInventoryStore()
		hotels = store
		rooms = store.Rooms()
		reservations = store.Reservations()
		logger.Info("storage backend ready", "backend", "memory")
	}

	var locker domainres.RoomLocker
	switch cfg.LockBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		locker = &locks.RedisRoomLocker{Client: client, TTL: cfg.RedisLockTTL}
		logger.Info("room locking ready", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		locker = locks.NewKeyedMutex()
		logger.Info("room locking ready", "backend", "local")
	}

	reservationService := &appinventory.ReservationService{
		Reservations: reservations,
		Rooms:        rooms,
		Locks:        locker,
		Logger:       logger,
	}
	recommender := &appinventory.Recommender{
		Rooms:        rooms,
		Availability: &appinventory.AvailabilityChecker{Reservations: reservations},
	}

	server := ginserver.NewHotelServer(cfg.Env, cfg.HTTPAddr,
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Ready: func() error { return nil }},
		ginserver.HotelHandlers{
			Hotel: ginserver.HotelHandler{
				Hotels:      hotels,
				Rooms:       rooms,
				Recommender: recommender,
				Logger:      logger,
			},
			Internal:       ginserver.InternalHandler{Service: reservationService, Logger: logger},
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

	logger.Info("hotel-api starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("hotel-api stopped")
}
