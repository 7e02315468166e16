package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	appbooking "stayflow/internal/app/booking"
	"stayflow/internal/app/fault"
	appinventory "stayflow/internal/app/inventory"
	appuser "stayflow/internal/app/user"
	domainbooking "stayflow/internal/domain/booking"
	domainhotel "stayflow/internal/domain/hotel"
	domainuser "stayflow/internal/domain/user"
)

// errorEnvelope is the shared error body contract of both services.
type errorEnvelope struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

func newEnvelope(c *gin.Context, f *fault.Fault) errorEnvelope {
	return errorEnvelope{
		Code:      f.Code,
		Message:   f.Message,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// respondError classifies an application error into a Fault and renders the
// envelope. Unclassified errors become 503 SERVICE_ERROR.
func respondError(c *gin.Context, err error) {
	f := classify(err)
	c.JSON(f.Status, newEnvelope(c, f))
}

func respondValidation(c *gin.Context, message string) {
	f := fault.Validation(message)
	c.JSON(f.Status, newEnvelope(c, f))
}

func classify(err error) *fault.Fault {
	switch {
	case errors.Is(err, domainbooking.ErrNotFound):
		return fault.NotFound("Booking not found")
	case errors.Is(err, domainbooking.ErrNotOwner):
		return fault.Forbidden()
	case errors.Is(err, domainbooking.ErrInvalidState):
		return fault.Validation(err.Error())
	case errors.Is(err, domainbooking.ErrKeyRequired):
		return fault.Validation(err.Error())
	case errors.Is(err, appbooking.ErrRoomConflict),
		errors.Is(err, appinventory.ErrRoomUnavailable):
		return fault.RoomNotAvailable()
	case errors.Is(err, appbooking.ErrNoRecommendation):
		return fault.NoRecommendation()
	case errors.Is(err, appbooking.ErrRoomIDRequired):
		return fault.RoomIDRequired()
	case errors.Is(err, appuser.ErrBadCredentials):
		return fault.BadCredentials()
	case errors.Is(err, domainuser.ErrUsernameTaken):
		return fault.UsernameTaken()
	case errors.Is(err, domainuser.ErrNotFound):
		return fault.NotFound("User not found")
	case errors.Is(err, domainhotel.ErrHotelNotFound):
		return fault.NotFound("Hotel not found")
	case errors.Is(err, domainhotel.ErrRoomNotFound):
		return fault.NotFound("Room not found")
	case errors.Is(err, domainhotel.ErrNameTaken):
		return fault.New("NAME_TAKEN", http.StatusConflict, "Hotel name already exists")
	default:
		return fault.From(err)
	}
}
