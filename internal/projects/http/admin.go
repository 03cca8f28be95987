package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

type createProjectReq struct {
	Name         string              `json:"name"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ImageURL     string              `json:"image_url"`
	GithubURL    string              `json:"github_url"`
	LiveURL      string              `json:"live_url"`
	Category     string              `json:"category"`
	Featured     bool                `json:"featured"`
	DisplayOrder *int                `json:"display_order"`
	Technologies []domain.Technology `json:"technologies"`
}

// createProject creates a MANUAL project. GITHUB-sourced rows are created
// by the sync engine only.
func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body: name is required"})
		return
	}

	p := &domain.Project{
		Name:         strings.TrimSpace(req.Name),
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		GithubURL:    req.GithubURL,
		LiveURL:      req.LiveURL,
		Category:     req.Category,
		Featured:     req.Featured,
		DisplayOrder: req.DisplayOrder,
		Technologies: req.Technologies,
		Source:       domain.SourceManual,
		Status:       domain.StatusActive,
	}
	if p.Title == "" {
		p.Title = p.Name
	}

	if err := h.admin.Create(c.Request.Context(), p); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "a project with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.cache.InvalidateNamespace("projects")
	c.JSON(http.StatusCreated, gin.H{"success": true, "project": p})
}

type updateProjectReq struct {
	Title         *string              `json:"title"`
	Description   *string              `json:"description"`
	ImageURL      *string              `json:"image_url"`
	GithubURL     *string              `json:"github_url"`
	LiveURL       *string              `json:"live_url"`
	Category      *string              `json:"category"`
	Featured      *bool                `json:"featured"`
	DisplayOrder  *int                 `json:"display_order"`
	TitleOverride *string              `json:"title_override"`
	DescOverride  *string              `json:"description_override"`
	ImageOverride *string              `json:"image_url_override"`
	Technologies  *[]domain.Technology `json:"technologies"`
	Status        *string              `json:"status"`
}

// updateProject edits an existing project. MANUAL rows accept every field;
// GITHUB rows only take overrides plus the locally owned ones (featured,
// display order, category, status) — their canonical fields belong to sync.
func (h *Handler) updateProject(c *gin.Context) {
	name := c.Param("name")

	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.admin.GetByName(ctx, name)
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if p.Source == domain.SourceManual {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.ImageURL != nil {
			p.ImageURL = *req.ImageURL
		}
		if req.GithubURL != nil {
			p.GithubURL = *req.GithubURL
		}
		if req.LiveURL != nil {
			p.LiveURL = *req.LiveURL
		}
		if req.Technologies != nil {
			p.Technologies = *req.Technologies
		}
	} else {
		if req.TitleOverride != nil {
			p.TitleOverride = nilIfEmpty(req.TitleOverride)
		}
		if req.DescOverride != nil {
			p.DescOverride = nilIfEmpty(req.DescOverride)
		}
		if req.ImageOverride != nil {
			p.ImageOverride = nilIfEmpty(req.ImageOverride)
		}
	}

	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.DisplayOrder != nil {
		p.DisplayOrder = req.DisplayOrder
	}
	if req.Status != nil {
		switch domain.Status(*req.Status) {
		case domain.StatusActive, domain.StatusArchived:
			p.Status = domain.Status(*req.Status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "status must be ACTIVE or ARCHIVED"})
			return
		}
	}

	if err := h.admin.Update(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.cache.InvalidateNamespace("projects")
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

// deleteProject hard-deletes MANUAL projects. GITHUB projects are archived
// with overrides cleared instead, since sync would recreate a deleted row.
func (h *Handler) deleteProject(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	p, err := h.admin.GetByName(ctx, name)
	if errors.Is(err, domain.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if p.Source == domain.SourceManual {
		err = h.admin.Delete(ctx, name)
	} else {
		err = h.admin.ClearOverridesAndArchive(ctx, name)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.cache.InvalidateNamespace("projects")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
