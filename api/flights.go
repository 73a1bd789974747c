package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/avialine/groupfare/internal/repository"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flights repository.FlightRepository
}

type flightResponse struct {
	ID            int64     `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	TotalSeats    int       `json:"totalSeats"`
}

func NewFlightHandler(flights repository.FlightRepository) *FlightHandler {
	return &FlightHandler{flights: flights}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func newFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		TotalSeats:    f.TotalSeats,
	}
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.flights.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]flightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, newFlightResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "flights": out})
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return
	}

	flight, err := h.flights.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "flight": newFlightResponse(*flight)})
}
