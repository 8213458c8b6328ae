// README: Registration endpoint.
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/types"
)

type registerReq struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// HandleRegister handles POST /api/users. Registration carries the user's
// display name, which cannot ride a callback token, so it comes in over a
// plain endpoint.
func (s *Server) HandleRegister(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == "" || req.Name == "" {
		writeError(c, http.StatusBadRequest, "missing user_id or name")
		return
	}

	if err := s.accounts.Register(types.ID(req.UserID), req.Name); err != nil {
		writeTripError(c, err)
		return
	}
	s.persist(c.Request.Context())
	writeJSON(c, http.StatusCreated, gin.H{"user_id": req.UserID, "name": req.Name})
}
