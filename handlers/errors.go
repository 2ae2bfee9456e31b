package handlers

import (
	"errors"
	"net/http"

	"bolao/services"

	"github.com/gin-gonic/gin"
)

var errorStatus = map[error]int{
	services.ErrPoolNotFound:       http.StatusNotFound,
	services.ErrGameNotFound:       http.StatusNotFound,
	services.ErrAlreadyJoined:      http.StatusConflict,
	services.ErrNotAParticipant:    http.StatusForbidden,
	services.ErrDuplicateGuess:     http.StatusConflict,
	services.ErrGameAlreadyStarted: http.StatusUnprocessableEntity,
	services.ErrInvalidGuess:       http.StatusBadRequest,
	services.ErrInvalidScore:       http.StatusBadRequest,
	services.ErrResultAlreadySet:   http.StatusConflict,
	services.ErrEmailTaken:         http.StatusConflict,
	services.ErrInvalidCredentials: http.StatusUnauthorized,
}

// respondError maps the closed set of domain errors onto HTTP statuses with
// their own messages. Only unknown failures collapse to a generic 500.
func respondError(c *gin.Context, err error) {
	for domainErr, status := range errorStatus {
		if errors.Is(err, domainErr) {
			c.JSON(status, gin.H{"error": domainErr.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
