// README: Action endpoint; the chat front end posts callback tokens here.
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/types"
)

type actionReq struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// HandleAction handles POST /api/actions. The response carries the effects
// the front end must deliver: messages, keyboards, and notices to third
// parties such as drivers. Invalid tokens still produce a 200 with an error
// notice for the sender, matching how a chat callback cannot be "rejected".
func (s *Server) HandleAction(c *gin.Context) {
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Token == "" {
		writeError(c, http.StatusBadRequest, "missing user_id or token")
		return
	}

	effects := s.dispatcher.Handle(req.Token, types.ID(req.UserID))
	s.persist(c.Request.Context())
	writeJSON(c, http.StatusOK, gin.H{"effects": renderEffects(effects)})
}
