package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	appbooking "stayflow/internal/app/booking"
	appinventory "stayflow/internal/app/inventory"
	appuser "stayflow/internal/app/user"
	"stayflow/internal/domain/shared/daterange"
	"stayflow/internal/infra/locks"
	"stayflow/internal/infra/obs"
	"stayflow/internal/infra/security"
	"stayflow/internal/infra/storage/memory"
)

type stubInventory struct {
	candidates []appbooking.RoomCandidate
	confirmErr error
	released   int
}

func (s *stubInventory) Recommend(ctx context.Context, token string, hotelID int64, dr daterange.DateRange, limit int) ([]appbooking.RoomCandidate, error) {
	if limit < len(s.candidates) {
		return s.candidates[:limit], nil
	}
	return s.candidates, nil
}

func (s *stubInventory) Confirm(ctx context.Context, token string, roomID int64, requestKey string, dr daterange.DateRange) error {
	return s.confirmErr
}

func (s *stubInventory) Release(ctx context.Context, token string, roomID int64, requestKey string) error {
	s.released++
	return nil
}

type bookingAPI struct {
	handler   http.Handler
	inventory *stubInventory
	tokens    *security.TokenProvider
}

func newBookingAPI(t *testing.T) *bookingAPI {
	t.Helper()
	tokens, err := security.NewTokenProvider("test-secret")
	require.NoError(t, err)

	inv := &stubInventory{candidates: []appbooking.RoomCandidate{{ID: 7, HotelID: 1, Number: "101", Available: true}}}
	userService := &appuser.Service{
		Users:  memory.NewUserRepository(),
		Hasher: security.BcryptHasher{Cost: 4},
		Tokens: tokens,
	}
	bookingService := &appbooking.Service{
		Bookings:  memory.NewBookingRepository(),
		Inventory: inv,
		Tokens:    security.ServiceTokens{Provider: tokens},
	}

	server := NewBookingServer("test", ":0",
		obs.Middleware{},
		obs.HealthHandlers{},
		BookingHandlers{
			User:           UserHandler{Service: userService},
			Booking:        BookingHandler{Service: bookingService},
			AuthMiddleware: AuthMiddleware{Tokens: tokens}.Handle,
		})
	return &bookingAPI{handler: server.Handler, inventory: inv, tokens: tokens}
}

func (a *bookingAPI) do(t *testing.T, method, path, token, requestID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID != "" {
		req.Header.Set(obs.RequestIDHeader, requestID)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *bookingAPI) registerUser(t *testing.T, username string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/user/register", "", "", map[string]any{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var grant tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grant))
	require.NotEmpty(t, grant.Token)
	return grant.Token
}

func bookingPayload() map[string]any {
	return map[string]any{
		"hotelId":    1,
		"start":      "2026-09-01",
		"end":        "2026-09-05",
		"autoSelect": true,
	}
}

func TestBookingEndpointConfirmsAndReplays(t *testing.T) {
	api := newBookingAPI(t)
	token := api.registerUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/booking", token, "req-1", bookingPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "req-1", rec.Header().Get(obs.RequestIDHeader))

	var first bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, "CONFIRMED", first.Status)
	require.NotNil(t, first.RoomID)
	require.Equal(t, int64(7), *first.RoomID)

	// Same X-Request-Id replays the stored outcome.
	rec = api.do(t, http.MethodPost, "/booking", token, "req-1", bookingPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var replay bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replay))
	require.Equal(t, first.ID, replay.ID)

	// A fresh id books again.
	rec = api.do(t, http.MethodPost, "/booking", token, "req-2", bookingPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var second bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.NotEqual(t, first.ID, second.ID)
}

func TestBookingEndpointRequiresAuth(t *testing.T) {
	api := newBookingAPI(t)
	rec := api.do(t, http.MethodPost, "/booking", "", "req-1", bookingPayload())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "AUTH_REQUIRED", envelope.Code)
	require.NotEmpty(t, envelope.RequestID)
}

func TestBookingEndpointConflictReturnsCancelledBody(t *testing.T) {
	api := newBookingAPI(t)
	token := api.registerUser(t, "alice")
	api.inventory.confirmErr = appbooking.ErrRoomConflict

	rec := api.do(t, http.MethodPost, "/booking", token, "req-1", bookingPayload())
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var result bookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "CANCELLED", result.Booking.Status)
	require.Equal(t, "ROOM_NOT_AVAILABLE", result.Error.Code)
	require.Equal(t, 1, api.inventory.released)
}

func TestBookingEndpointSagaFailureIsServiceUnavailable(t *testing.T) {
	api := newBookingAPI(t)
	token := api.registerUser(t, "alice")
	api.inventory.confirmErr = context.DeadlineExceeded

	rec := api.do(t, http.MethodPost, "/booking", token, "req-1", bookingPayload())
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var result bookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "CANCELLED", result.Booking.Status)
	require.NotEmpty(t, result.Error.Code)
}

func TestBookingOwnershipAndLookup(t *testing.T) {
	api := newBookingAPI(t)
	alice := api.registerUser(t, "alice")
	mallory := api.registerUser(t, "mallory")

	rec := api.do(t, http.MethodPost, "/booking", alice, "req-1", bookingPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var created bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = api.do(t, http.MethodGet, "/booking/"+created.ID, alice, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/booking/"+created.ID, mallory, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/booking/no-such-id", alice, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/bookings", alice, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestBookingCancelEndpoint(t *testing.T) {
	api := newBookingAPI(t)
	token := api.registerUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/booking", token, "req-1", bookingPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	var created bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = api.do(t, http.MethodDelete, "/booking/"+created.ID, token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	require.Equal(t, "CANCELLED", cancelled.Status)
	require.Equal(t, 1, api.inventory.released)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	api := newBookingAPI(t)
	api.registerUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/user/register", "", "", map[string]any{
		"username": "alice",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "USERNAME_TAKEN", envelope.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	api := newBookingAPI(t)
	api.registerUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/user/auth", "", "", map[string]any{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAdminEndpointsRequireAdminRole(t *testing.T) {
	api := newBookingAPI(t)
	user := api.registerUser(t, "alice")

	rec := api.do(t, http.MethodPost, "/user", user, "", map[string]any{
		"username": "bob", "password": "hunter22",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminRec := api.do(t, http.MethodPost, "/user/register", "", "", map[string]any{
		"username": "root", "password": "hunter22", "admin": true,
	})
	require.Equal(t, http.StatusCreated, adminRec.Code)
	var grant tokenResponse
	require.NoError(t, json.Unmarshal(adminRec.Body.Bytes(), &grant))

	rec = api.do(t, http.MethodPost, "/user", grant.Token, "", map[string]any{
		"username": "bob", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "USER", created.Role)
}

type hotelAPI struct {
	handler http.Handler
	tokens  *security.TokenProvider
}

func newHotelAPI(t *testing.T) *hotelAPI {
	t.Helper()
	tokens, err := security.NewTokenProvider("test-secret")
	require.NoError(t, err)

	store := memory.NewInventoryStore()
	service := &appinventory.ReservationService{
		Reservations: store.Reservations(),
		Rooms:        store.Rooms(),
		Locks:        locks.NewKeyedMutex(),
	}
	recommender := &appinventory.Recommender{
		Rooms:        store.Rooms(),
		Availability: &appinventory.AvailabilityChecker{Reservations: store.Reservations()},
	}

	server := NewHotelServer("test", ":0",
		obs.Middleware{},
		obs.HealthHandlers{},
		HotelHandlers{
			Hotel:          HotelHandler{Hotels: store, Rooms: store.Rooms(), Recommender: recommender},
			Internal:       InternalHandler{Service: service},
			AuthMiddleware: AuthMiddleware{Tokens: tokens}.Handle,
		})
	return &hotelAPI{handler: server.Handler, tokens: tokens}
}

func (a *hotelAPI) do(t *testing.T, method, path, token, requestID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID != "" {
		req.Header.Set(obs.RequestIDHeader, requestID)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *hotelAPI) issue(t *testing.T, subject, role string) string {
	t.Helper()
	token, err := a.tokens.Issue(subject, role, appuser.TokenTTL)
	require.NoError(t, err)
	return token
}

func TestHotelAdminAndRecommendFlow(t *testing.T) {
	api := newHotelAPI(t)
	admin := api.issue(t, "ops", "ADMIN")
	guest := api.issue(t, "alice", "USER")

	rec := api.do(t, http.MethodPost, "/api/hotels", admin, "", map[string]any{"name": "Grand", "city": "Riga"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var h hotelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))

	rec = api.do(t, http.MethodPost, "/api/rooms", guest, "", map[string]any{"hotelId": h.ID, "number": "101"})
	require.Equal(t, http.StatusForbidden, rec.Code, "writes are admin only")

	rec = api.do(t, http.MethodPost, "/api/rooms", admin, "", map[string]any{"hotelId": h.ID, "number": "101"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var room roomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	require.True(t, room.Available)

	rec = api.do(t, http.MethodGet, "/api/rooms/recommend?hotelId=1&start=2026-09-01&end=2026-09-05&limit=5", guest, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []roomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
}

func TestInternalConfirmAndRelease(t *testing.T) {
	api := newHotelAPI(t)
	service := api.issue(t, "booking-service", "ADMIN")
	guest := api.issue(t, "alice", "USER")
	admin := api.issue(t, "ops", "ADMIN")

	rec := api.do(t, http.MethodPost, "/api/hotels", admin, "", map[string]any{"name": "Grand", "city": "Riga"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/rooms", admin, "", map[string]any{"hotelId": 1, "number": "101"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var room roomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))

	confirmBody := map[string]any{"requestId": "key-1", "start": "2026-09-01", "end": "2026-09-05"}

	rec = api.do(t, http.MethodPost, "/internal/rooms/1/confirm-availability", guest, "key-1", confirmBody)
	require.Equal(t, http.StatusForbidden, rec.Code, "internal surface needs the service role")

	rec = api.do(t, http.MethodPost, "/internal/rooms/1/confirm-availability", service, "key-1", confirmBody)
	require.Equal(t, http.StatusOK, rec.Code)
	var res reservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "COMMITTED", res.Status)
	require.Equal(t, "key-1", res.RequestID)

	// Conflicting key on overlapping dates gets the envelope.
	conflict := map[string]any{"requestId": "key-2", "start": "2026-09-03", "end": "2026-09-07"}
	rec = api.do(t, http.MethodPost, "/internal/rooms/1/confirm-availability", service, "key-2", conflict)
	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "ROOM_NOT_AVAILABLE", envelope.Code)

	rec = api.do(t, http.MethodPost, "/internal/rooms/1/release", service, "key-1", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Released dates open up for the previously conflicting request.
	rec = api.do(t, http.MethodPost, "/internal/rooms/1/confirm-availability", service, "key-2", conflict)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	api := newHotelAPI(t)
	rec := api.do(t, http.MethodGet, "/livez", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/readyz", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
