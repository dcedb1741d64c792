package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vaarrunii/VidVault/internal/session"
)

func (h handlers) sessionGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := h.sessions.Load()
		if err != nil {
			h.log.Error().Err(err).Msg("failed to load session state")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, state)
	}
}

func (h handlers) sessionPut() gin.HandlerFunc {
	return func(c *gin.Context) {
		var state session.State
		if err := c.ShouldBindJSON(&state); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Bad request: %v", err),
			})
			return
		}

		if err := h.sessions.Save(state); err != nil {
			h.log.Error().Err(err).Msg("failed to save session state")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func (h handlers) sessionDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.sessions.Clear(); err != nil {
			h.log.Error().Err(err).Msg("failed to clear session state")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
