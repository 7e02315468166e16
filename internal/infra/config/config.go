package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BookingConfig aggregates booking-api configuration loaded from environment
// variables.
type BookingConfig struct {
	Env          string
	HTTPAddr     string
	JWTSecret    string
	Storage      string // memory | mongo
	MongoURI     string
	MongoDB      string
	KafkaBrokers []string
	KafkaTopic   string

	HotelBaseURL   string
	ClientTimeout  time.Duration
	ClientRetries  int
	ClientBackoff  time.Duration
	ClientMaxDelay time.Duration
}

// HotelConfig aggregates hotel-api configuration.
type HotelConfig struct {
	Env       string
	HTTPAddr  string
	JWTSecret string
	Storage   string // memory | mysql
	MySQLDSN  string

	LockBackend  string // local | redis
	RedisAddr    string
	RedisLockTTL time.Duration
}

func LoadBooking() (BookingConfig, error) {
	cfg := BookingConfig{
		Env:          getEnv("APP_ENV", "dev"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		Storage:      strings.ToLower(getEnv("BOOKING_STORAGE", "memory")),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "bookings"),
		HotelBaseURL: getEnv("HOTEL_BASE_URL", "http://localhost:8081"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "booking.events.v1"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if cfg.ClientTimeout, err = parseDurationEnv("HOTEL_CLIENT_TIMEOUT", 2*time.Second); err != nil {
		return BookingConfig{}, err
	}
	if cfg.ClientRetries, err = parseIntEnv("HOTEL_CLIENT_RETRIES", 3); err != nil {
		return BookingConfig{}, err
	}
	if cfg.ClientBackoff, err = parseDurationEnv("HOTEL_CLIENT_BACKOFF", 100*time.Millisecond); err != nil {
		return BookingConfig{}, err
	}
	if cfg.ClientMaxDelay, err = parseDurationEnv("HOTEL_CLIENT_MAX_BACKOFF", time.Second); err != nil {
		return BookingConfig{}, err
	}

	if cfg.JWTSecret == "" {
		return BookingConfig{}, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if cfg.Storage == "mongo" && cfg.MongoURI == "" {
		return BookingConfig{}, fmt.Errorf("MONGO_URI is required with BOOKING_STORAGE=mongo")
	}
	return cfg, nil
}

func LoadHotel() (HotelConfig, error) {
	cfg := HotelConfig{
		Env:         getEnv("APP_ENV", "dev"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8081"),
		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		Storage:     strings.ToLower(getEnv("HOTEL_STORAGE", "memory")),
		MySQLDSN:    os.Getenv("MYSQL_DSN"),
		LockBackend: strings.ToLower(getEnv("LOCK_BACKEND", "local")),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
	}
	var err error
	if cfg.RedisLockTTL, err = parseDurationEnv("REDIS_LOCK_TTL", 10*time.Second); err != nil {
		return HotelConfig{}, err
	}

	if cfg.JWTSecret == "" {
		return HotelConfig{}, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if cfg.Storage == "mysql" && cfg.MySQLDSN == "" {
		return HotelConfig{}, fmt.Errorf("MYSQL_DSN is required with HOTEL_STORAGE=mysql")
	}
	switch cfg.LockBackend {
	case "local", "redis":
	default:
		return HotelConfig{}, fmt.Errorf("invalid LOCK_BACKEND %q", cfg.LockBackend)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}
