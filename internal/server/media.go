package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// mediaGet dereferences a minted playback handle. Revoked or unknown
// tokens yield 404. ServeContent gives the player range-request support
// for seeking.
func (h handlers) mediaGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		data, contentType, ok := h.media.Resolve(token)
		if !ok {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Header("Content-Type", string(contentType))
		http.ServeContent(c.Writer, c.Request, "", time.Time{}, bytes.NewReader(data))
	}
}
