package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nisal-dev/portfolio-backend/internal/github"
	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

const (
	cacheControlOK       = "public, s-maxage=300, stale-while-revalidate=150"
	cacheControlDegraded = "public, s-maxage=60"
)

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.projects.All(c.Request.Context())
	if err != nil {
		c.Header("Cache-Control", cacheControlDegraded)
		c.JSON(http.StatusInternalServerError, []domain.Project{})
		return
	}

	c.Header("Cache-Control", cacheControlOK)
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) listFeatured(c *gin.Context) {
	projects, err := h.projects.Featured(c.Request.Context())
	if err != nil {
		c.Header("Cache-Control", cacheControlDegraded)
		c.JSON(http.StatusInternalServerError, []domain.Project{})
		return
	}

	c.Header("Cache-Control", cacheControlOK)
	c.JSON(http.StatusOK, projects)
}

// githubStats never surfaces upstream failures: a zeroed result stands in
// until the error cache expires and a refetch succeeds.
func (h *Handler) githubStats(c *gin.Context) {
	stats, err := h.github.Stats(c.Request.Context())
	if err != nil {
		c.Header("Cache-Control", cacheControlDegraded)
		c.JSON(http.StatusOK, github.Stats{})
		return
	}

	c.Header("Cache-Control", cacheControlOK)
	c.JSON(http.StatusOK, stats)
}
