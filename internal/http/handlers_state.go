// README: Raw state dump for debugging and manual backups.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleState handles GET /api/state. The body is the same JSON blob the
// snapshot stores persist.
func (s *Server) HandleState(c *gin.Context) {
	data, err := s.store.Snapshot()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
