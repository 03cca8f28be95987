package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type invalidateReq struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
}

func (h *Handler) invalidateCache(c *gin.Context) {
	var req invalidateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	var removed int
	switch req.Type {
	case "projects":
		removed = h.cache.InvalidateNamespace("projects")
	case "all":
		removed = h.cache.Invalidate("")
	case "pattern":
		if req.Pattern == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "pattern is required"})
			return
		}
		removed = h.cache.Invalidate(req.Pattern)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "type must be projects, all or pattern"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("invalidated %d cache entries", removed),
		"stats":   h.cache.Stats(),
	})
}

func (h *Handler) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache": h.cache.Stats(),
		"endpoints": gin.H{
			"invalidate_projects": `POST {"type":"projects"}`,
			"invalidate_all":      `POST {"type":"all"}`,
			"invalidate_pattern":  `POST {"type":"pattern","pattern":"github:languages:"}`,
		},
	})
}
