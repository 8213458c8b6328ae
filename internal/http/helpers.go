// README: HTTP helper utilities for JSON and error mapping.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/modules/account"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeTripError(c *gin.Context, err error) {
	switch err {
	case trip.ErrBadRequest, booking.ErrSelfBooking:
		writeError(c, http.StatusBadRequest, err.Error())
	case trip.ErrUserNotFound, trip.ErrDriverNotFound, trip.ErrTripNotFound, trip.ErrNotBooked:
		writeError(c, http.StatusNotFound, err.Error())
	case trip.ErrCarFull, trip.ErrDuplicateBooking, account.ErrAlreadyRegistered, booking.ErrBookingClosed:
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
