package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	appbooking "stayflow/internal/app/booking"
	domainbooking "stayflow/internal/domain/booking"
	"stayflow/internal/domain/shared/daterange"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHandler struct {
	Service *appbooking.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	HotelID    int64  `json:"hotelId"`
	RoomID     *int64 `json:"roomId"`
	Start      string `json:"start"`
	End        string `json:"end"`
	AutoSelect bool   `json:"autoSelect"`
}

type bookingResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	HotelID   int64  `json:"hotelId"`
	RoomID    *int64 `json:"roomId,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
	CreatedAt string `json:"createdAt"`
}

func newBookingResponse(b *domainbooking.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		Status:    string(b.Status),
		HotelID:   b.HotelID,
		RoomID:    b.RoomID,
		Start:     b.Range.StartString(),
		End:       b.Range.EndString(),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// bookingResult is the failure body: the booking the saga drove to Cancelled
// plus the error that terminated it.
type bookingResult struct {
	Booking bookingResponse `json:"booking"`
	Error   errorEnvelope   `json:"error"`
}

// Create runs the booking saga. The X-Request-Id value doubles as the
// idempotency key, so a retried request with the same id replays the stored
// outcome instead of booking twice.
func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	dr, err := daterange.Parse(req.Start, req.End)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	b, err := h.Service.Create(c.Request.Context(), appbooking.CreateParams{
		UserID:      p.Subject,
		RequestKey:  c.GetString("request_id"),
		CallerToken: p.Token,
		HotelID:     req.HotelID,
		RoomID:      req.RoomID,
		Range:       dr,
		AutoSelect:  req.AutoSelect,
	})
	if err != nil {
		if b != nil {
			// Any saga failure surfaces as service-unavailable with the
			// cancelled booking; the envelope code still names the cause.
			f := classify(err)
			c.JSON(http.StatusServiceUnavailable, bookingResult{Booking: newBookingResponse(b), Error: newEnvelope(c, f)})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h BookingHandler) List(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	bookings, err := h.Service.List(c.Request.Context(), p.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	b, err := h.Service.Get(c.Request.Context(), c.Param("id"), p.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

// Cancel is idempotent: cancelling an already-cancelled booking returns the
// same terminal state.
func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	b, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), p.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

var _ BookingHTTP = BookingHandler{}
