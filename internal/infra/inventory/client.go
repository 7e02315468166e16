package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appbooking "stayflow/internal/app/booking"
	"stayflow/internal/domain/shared/daterange"
	"stayflow/internal/infra/obs"
)

// Client is the booking side's HTTP adapter for the hotel service. Each call
// gets a bounded timeout; Confirm retries transient failures (transport
// errors and 5xx) with capped exponential backoff, while a conflict (409) is
// definitive and surfaces immediately as ErrRoomConflict.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
	Timeout    time.Duration
	Logger     *slog.Logger
}

type confirmRequest struct {
	RequestID string `json:"requestId"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func (c *Client) Confirm(ctx context.Context, token string, roomID int64, requestKey string, dr daterange.DateRange) error {
	body, err := json.Marshal(confirmRequest{
		RequestID: requestKey,
		Start:     dr.StartString(),
		End:       dr.EndString(),
	})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/internal/rooms/%d/confirm-availability", c.BaseURL, roomID)

	var lastErr error
	delay := c.backoff()
	for attempt := 0; attempt <= c.retries(); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
			if max := c.maxBackoff(); delay > max {
				delay = max
			}
		}
		status, err := c.post(ctx, token, endpoint, requestKey, body)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusConflict:
			return appbooking.ErrRoomConflict
		case status >= 200 && status < 300:
			return nil
		case status >= 500:
			lastErr = fmt.Errorf("inventory: confirm returned status %d", status)
		default:
			return fmt.Errorf("inventory: confirm returned status %d", status)
		}
		c.log().Debug("confirm attempt failed", "room_id", roomID, "attempt", attempt, "error", lastErr)
	}
	return lastErr
}

func (c *Client) Release(ctx context.Context, token string, roomID int64, requestKey string) error {
	endpoint := fmt.Sprintf("%s/internal/rooms/%d/release", c.BaseURL, roomID)
	status, err := c.post(ctx, token, endpoint, requestKey, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("inventory: release returned status %d", status)
	}
	return nil
}

func (c *Client) Recommend(ctx context.Context, token string, hotelID int64, dr daterange.DateRange, limit int) ([]appbooking.RoomCandidate, error) {
	q := url.Values{}
	q.Set("hotelId", strconv.FormatInt(hotelID, 10))
	q.Set("start", dr.StartString())
	q.Set("end", dr.EndString())
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.BaseURL + "/api/rooms/recommend?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, token, "")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inventory: recommend returned status %d: %s", resp.StatusCode, snippet)
	}
	var candidates []appbooking.RoomCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (c *Client) post(ctx context.Context, token, endpoint, requestKey string, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return 0, err
	}
	c.setHeaders(req, token, requestKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request, token, requestKey string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestKey != "" {
		req.Header.Set(obs.RequestIDHeader, requestKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) retries() int {
	if c.Retries > 0 {
		return c.Retries
	}
	return 3
}

func (c *Client) backoff() time.Duration {
	if c.Backoff > 0 {
		return c.Backoff
	}
	return 100 * time.Millisecond
}

func (c *Client) maxBackoff() time.Duration {
	if c.MaxBackoff > 0 {
		return c.MaxBackoff
	}
	return time.Second
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 2 * time.Second
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

var _ appbooking.InventoryPort = (*Client)(nil)
