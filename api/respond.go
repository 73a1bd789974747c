package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the HTTP taxonomy: not-found 404,
// business-rule violations 400, broken status configuration 500. Raw error
// chains never reach the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBidNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotEnoughSeats):
		fail(c, http.StatusBadRequest, "Not enough seats available")
	case errors.Is(err, domain.ErrBidExpired),
		errors.Is(err, domain.ErrSeatsOutOfRange),
		errors.Is(err, domain.ErrInvalidDecision):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStatusConfigMissing):
		// Deployment is missing required seed data. Client cannot fix this.
		log.Printf("FATAL status configuration error: %v", err)
		fail(c, http.StatusInternalServerError, "status configuration missing")
	default:
		log.Printf("internal error: %v", err)
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}
