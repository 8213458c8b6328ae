// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/dispatch"
	"carpool/internal/http/middleware"
	"carpool/internal/modules/account"
	"carpool/internal/modules/booking"
	"carpool/internal/modules/settlement"
	"carpool/internal/modules/trip"
	"carpool/internal/snapshot"
)

type ServerDeps struct {
	Store      *trip.Store
	Dispatcher *dispatch.Dispatcher
	Accounts   *account.Service
	Trips      *trip.Service
	Bookings   *booking.Service
	Settlement *settlement.Service
	// Snapshots may be nil; the server then runs without persistence.
	Snapshots snapshot.Store
	Log       *slog.Logger
}

type Server struct {
	store      *trip.Store
	dispatcher *dispatch.Dispatcher
	accounts   *account.Service
	trips      *trip.Service
	bookings   *booking.Service
	settlement *settlement.Service
	snapshots  snapshot.Store
	log        *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		accounts:   deps.Accounts,
		trips:      deps.Trips,
		bookings:   deps.Bookings,
		settlement: deps.Settlement,
		snapshots:  deps.Snapshots,
		log:        deps.Log,
	}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(s.log), middleware.Recovery(s.log))

	r.POST("/api/actions", s.HandleAction)
	r.POST("/api/users", s.HandleRegister)
	r.POST("/api/trips/location", s.HandleMeetingPoint)
	r.GET("/api/trips", s.HandleDayTrips)
	r.POST("/api/jobs/nightly", s.HandleNightly)
	r.POST("/api/jobs/weekly", s.HandleWeekly)
	r.GET("/api/state", s.HandleState)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}

// persist writes a state snapshot after a mutating request. Failures are
// logged, not surfaced: the in-memory state stays authoritative.
func (s *Server) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	data, err := s.store.Snapshot()
	if err == nil {
		err = s.snapshots.Save(ctx, data)
	}
	if err != nil {
		s.log.Error("snapshot save failed", "err", err)
	}
}
