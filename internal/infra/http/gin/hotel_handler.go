package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	appinventory "stayflow/internal/app/inventory"
	domainhotel "stayflow/internal/domain/hotel"
	"stayflow/internal/domain/shared/daterange"
)

type HotelHTTP interface {
	ListHotels(c *gin.Context)
	CreateHotel(c *gin.Context)
	ListRooms(c *gin.Context)
	CreateRoom(c *gin.Context)
	Recommend(c *gin.Context)
}

type HotelHandler struct {
	Hotels      domainhotel.HotelRepository
	Rooms       domainhotel.RoomRepository
	Recommender *appinventory.Recommender
	Logger      *slog.Logger
}

type hotelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type roomResponse struct {
	ID          int64  `json:"id"`
	HotelID     int64  `json:"hotelId"`
	Number      string `json:"number"`
	Available   bool   `json:"available"`
	TimesBooked int    `json:"timesBooked"`
}

func newRoomResponse(r domainhotel.Room) roomResponse {
	return roomResponse{
		ID:          r.ID,
		HotelID:     r.HotelID,
		Number:      r.Number,
		Available:   r.Available,
		TimesBooked: r.TimesBooked,
	}
}

func (h HotelHandler) ListHotels(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	hotels, err := h.Hotels.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]hotelResponse, 0, len(hotels))
	for _, hotel := range hotels {
		out = append(out, hotelResponse{ID: hotel.ID, Name: hotel.Name, City: hotel.City})
	}
	c.JSON(http.StatusOK, out)
}

type createHotelRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

func (h HotelHandler) CreateHotel(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req createHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	if req.Name == "" {
		respondValidation(c, "hotel name required")
		return
	}
	hotel := &domainhotel.Hotel{Name: req.Name, City: req.City}
	if err := h.Hotels.Save(c.Request.Context(), hotel); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hotelResponse{ID: hotel.ID, Name: hotel.Name, City: hotel.City})
}

func (h HotelHandler) ListRooms(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var (
		rooms []domainhotel.Room
		err   error
	)
	if raw := c.Query("hotelId"); raw != "" {
		hotelID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			respondValidation(c, "hotelId must be an integer")
			return
		}
		rooms, err = h.Rooms.ByHotel(c.Request.Context(), hotelID)
	} else {
		rooms, err = h.Rooms.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, newRoomResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

type createRoomRequest struct {
	HotelID   int64  `json:"hotelId"`
	Number    string `json:"number"`
	Available *bool  `json:"available"`
}

func (h HotelHandler) CreateRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid request body")
		return
	}
	if _, err := h.Hotels.ByID(c.Request.Context(), req.HotelID); err != nil {
		respondError(c, err)
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	room := &domainhotel.Room{HotelID: req.HotelID, Number: req.Number, Available: available}
	if err := h.Rooms.Save(c.Request.Context(), room); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRoomResponse(*room))
}

// Recommend lists bookable rooms for a hotel and date range, least-used
// first. limit below 1 is clamped to 1.
func (h HotelHandler) Recommend(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	hotelID, err := strconv.ParseInt(c.Query("hotelId"), 10, 64)
	if err != nil {
		respondValidation(c, "hotelId must be an integer")
		return
	}
	dr, err := daterange.Parse(c.Query("start"), c.Query("end"))
	if err != nil {
		respondValidation(c, err.Error())
		return
	}
	limit := 1
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			respondValidation(c, "limit must be an integer")
			return
		}
	}
	rooms, err := h.Recommender.Recommend(c.Request.Context(), hotelID, dr, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, newRoomResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

var _ HotelHTTP = HotelHandler{}
