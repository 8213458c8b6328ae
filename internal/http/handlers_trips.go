// README: Trip endpoints: meeting point updates and day listings.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/modules/trip"
	"carpool/internal/types"
)

type meetingPointReq struct {
	DriverID  string `json:"driver_id"`
	Direction string `json:"direction"`
	Day       string `json:"day"`
	Address   string `json:"address"`
}

// HandleMeetingPoint handles POST /api/trips/location. The address is free
// text, so like registration it bypasses the token grammar. Geocoding goes
// through the configured maps client.
func (s *Server) HandleMeetingPoint(c *gin.Context) {
	var req meetingPointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.DriverID = strings.TrimSpace(req.DriverID)
	req.Address = strings.TrimSpace(req.Address)
	if req.DriverID == "" || req.Address == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id or address")
		return
	}
	key, ok := parseTripKey(req.Direction, req.Day, req.DriverID)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid direction or day")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	info, err := s.trips.SetMeetingPoint(ctx, key, req.Address)
	if err != nil {
		writeTripError(c, err)
		return
	}
	s.persist(c.Request.Context())
	writeJSON(c, http.StatusOK, gin.H{"trip": info})
}

// HandleDayTrips handles GET /api/trips?day=Monday.
func (s *Server) HandleDayTrips(c *gin.Context) {
	day, ok := trip.ParseDay(c.Query("day"))
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid day")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"day": day, "trips": s.bookings.ListDay(day)})
}

func parseTripKey(direction, day, driver string) (trip.Key, bool) {
	dir, ok := trip.ParseDirection(direction)
	if !ok {
		return trip.Key{}, false
	}
	d, ok := trip.ParseDay(day)
	if !ok {
		return trip.Key{}, false
	}
	return trip.Key{Direction: dir, Day: d, Driver: types.ID(driver)}, true
}
