package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// handleQuery resolves one natural-language query turn. The payload is
// decoded as a raw map because context keys are client-dependent; the
// assist layer owns normalization.
func (s *Server) handleQuery(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID, _ = payload["session_id"].(string)
	}

	answer, err := s.engine.Resolve(c.Request.Context(), payload, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query text is required"})
			return
		}
		s.log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"error":      err,
		}).Error("Query resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, answer)
}
