package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appbooking "stayflow/internal/app/booking"
	"stayflow/internal/domain/shared/daterange"
)

func testRange(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse("2026-09-01", "2026-09-05")
	require.NoError(t, err)
	return dr
}

func newTestClient(url string) *Client {
	return &Client{
		BaseURL: url,
		Retries: 2,
		Backoff: time.Millisecond,
		Timeout: time.Second,
	}
}

func TestConfirmSendsRequestAndSucceeds(t *testing.T) {
	var gotBody confirmRequest
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/internal/rooms/7/confirm-availability", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Confirm(context.Background(), "tok", 7, "key-1", testRange(t))
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "key-1", gotRequestID)
	require.Equal(t, confirmRequest{RequestID: "key-1", Start: "2026-09-01", End: "2026-09-05"}, gotBody)
}

func TestConfirmConflictIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Confirm(context.Background(), "tok", 7, "key-1", testRange(t))
	require.ErrorIs(t, err, appbooking.ErrRoomConflict)
	require.Equal(t, int32(1), calls.Load())
}

func TestConfirmRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Confirm(context.Background(), "tok", 7, "key-1", testRange(t))
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
}

func TestConfirmGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Confirm(context.Background(), "tok", 7, "key-1", testRange(t))
	require.Error(t, err)
	require.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestConfirmClientErrorIsDefinitive(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Confirm(context.Background(), "tok", 7, "key-1", testRange(t))
	require.Error(t, err)
	require.NotErrorIs(t, err, appbooking.ErrRoomConflict)
	require.Equal(t, int32(1), calls.Load())
}

func TestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/rooms/9/release", r.URL.Path)
		require.Equal(t, "key-1", r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Release(context.Background(), "tok", 9, "key-1")
	require.NoError(t, err)
}

func TestRecommendDecodesCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/rooms/recommend", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "1", q.Get("hotelId"))
		require.Equal(t, "2026-09-01", q.Get("start"))
		require.Equal(t, "2026-09-05", q.Get("end"))
		require.Equal(t, "1", q.Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"hotelId":1,"number":"101","available":true,"timesBooked":2}]`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Recommend(context.Background(), "tok", 1, testRange(t), 1)
	require.NoError(t, err)
	require.Equal(t, []appbooking.RoomCandidate{{ID: 7, HotelID: 1, Number: "101", Available: true, TimesBooked: 2}}, got)
}

func TestRecommendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Recommend(context.Background(), "tok", 1, testRange(t), 1)
	require.Error(t, err)
}
