package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nisal-dev/portfolio-backend/internal/projects/service"
)

func (h *Handler) runSync(c *gin.Context) {
	trigger := service.Trigger{
		By:        "manual",
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := h.sync.SyncAll(c.Request.Context(), trigger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
			"message": "GitHub sync failed",
		})
		return
	}

	data := gin.H{
		"created":         result.Created,
		"updated":         result.Updated,
		"total":           result.Created + result.Updated,
		"synced_projects": result.SyncedProjects,
	}

	if !result.Success {
		data["errors"] = result.Errors
		c.JSON(http.StatusMultiStatus, gin.H{
			"success": false,
			"message": "GitHub sync completed with errors",
			"data":    data,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "GitHub sync completed",
		"data":    data,
	})
}

func (h *Handler) syncHistory(c *gin.Context) {
	ctx := c.Request.Context()

	history, err := h.history.Recent(ctx, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	counts, err := h.admin.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	last, err := h.history.LastSuccessful(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history":              history,
		"project_counts":       counts,
		"last_successful_sync": last,
	})
}
