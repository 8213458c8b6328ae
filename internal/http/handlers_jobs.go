// README: Manual triggers for the nightly settlement and weekly report jobs.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleNightly handles POST /api/jobs/nightly. The schedulers call the
// settlement service directly; this endpoint exists for manual reruns after
// an outage. An optional ?now=RFC3339 overrides the reference time.
func (s *Server) HandleNightly(c *gin.Context) {
	now := time.Now()
	if v := c.Query("now"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid now timestamp")
			return
		}
		now = parsed
	}

	effects, err := s.settlement.Run(now)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	s.persist(c.Request.Context())
	writeJSON(c, http.StatusOK, gin.H{"effects": renderEffects(effects)})
}

// HandleWeekly handles POST /api/jobs/weekly.
func (s *Server) HandleWeekly(c *gin.Context) {
	effects, err := s.settlement.WeeklyReport()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"effects": renderEffects(effects)})
}
