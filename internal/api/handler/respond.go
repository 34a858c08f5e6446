package handler

import (
	"github.com/caden/captionator/internal/apperr"
	"github.com/gin-gonic/gin"
)

// respondError writes a classified error payload. Clients get a
// machine-readable kind plus a human-readable message; stack-trace
// detail never leaves the process.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	c.JSON(apperr.StatusCode(err), gin.H{
		"error": gin.H{
			"kind":    string(kind),
			"message": apperr.MessageOf(err),
		},
	})
}
