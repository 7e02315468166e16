package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	appinventory "stayflow/internal/app/inventory"
	domainres "stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

type InternalHTTP interface {
	ConfirmAvailability(c *gin.Context)
	Release(c *gin.Context)
}

// InternalHandler is the server-to-server surface the booking saga drives.
// Both routes require the elevated service role.
type InternalHandler struct {
	Service *appinventory.ReservationService
	Logger  *slog.Logger
}

type confirmAvailabilityRequest struct {
	RequestID string `json:"requestId"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type reservationResponse struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"roomId"`
	RequestID string `json:"requestId"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
}

func newReservationResponse(r *domainres.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		RoomID:    r.RoomID,
		RequestID: r.RequestKey,
		Start:     r.Range.StartString(),
		End:       r.Range.EndString(),
		Status:    string(r.Status),
	}
}

func (h InternalHandler) ConfirmAvailability(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondValidation(c, "room id must be an integer")
		return
	}
	var req confirmAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	if req.RequestID == "" {
		respondValidation(c, "requestId required")
		return
	}
	dr, err := daterange.Parse(req.Start, req.End)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}
	res, err := h.Service.Confirm(c.Request.Context(), roomID, req.RequestID, dr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

// Release flips the caller's reservation to Released. Unknown keys are fine;
// the compensating caller retries blindly.
func (h InternalHandler) Release(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondValidation(c, "room id must be an integer")
		return
	}
	requestKey := c.GetString("request_id")
	if err := h.Service.Release(c.Request.Context(), roomID, requestKey); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

var _ InternalHTTP = InternalHandler{}
