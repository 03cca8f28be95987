package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
	"github.com/nisal-dev/portfolio-backend/internal/github"
	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
	"github.com/nisal-dev/portfolio-backend/internal/projects/service"
)

// AdminStore is the write-side persistence surface used by the admin CRUD
// handlers. Implemented by repository.ProjectRepository.
type AdminStore interface {
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, name string) error
	ClearOverridesAndArchive(ctx context.Context, name string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// SyncHistory reads the sync audit trail. Implemented by
// repository.SyncLogRepository.
type SyncHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.SyncLog, error)
	LastSuccessful(ctx context.Context) (*domain.SyncLog, error)
}

// Syncer runs a reconciliation pass. Implemented by service.SyncService.
type Syncer interface {
	SyncAll(ctx context.Context, trigger service.Trigger) (*domain.SyncResult, error)
}

// StatsFetcher serves aggregate GitHub statistics. Implemented by
// github.Client.
type StatsFetcher interface {
	Stats(ctx context.Context) (github.Stats, error)
}

type Handler struct {
	projects *service.ProjectService
	sync     Syncer
	github   StatsFetcher
	cache    *cache.Store
	admin    AdminStore
	history  SyncHistory
}

type Deps struct {
	Projects *service.ProjectService
	Sync     Syncer
	GitHub   StatsFetcher
	Cache    *cache.Store
	Admin    AdminStore
	History  SyncHistory
}

func NewHandler(dep Deps) *Handler {
	return &Handler{
		projects: dep.Projects,
		sync:     dep.Sync,
		github:   dep.GitHub,
		cache:    dep.Cache,
		admin:    dep.Admin,
		history:  dep.History,
	}
}

// RegisterPublic mounts the unauthenticated read endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/projects", h.listProjects)
	rg.GET("/projects/featured", h.listFeatured)
	rg.GET("/github/stats", h.githubStats)
}

// RegisterAdmin mounts the admin endpoints; the caller attaches auth.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/projects", h.createProject)
	rg.PATCH("/projects/:name", h.updateProject)
	rg.DELETE("/projects/:name", h.deleteProject)

	rg.POST("/github-sync", h.runSync)
	rg.GET("/github-sync", h.syncHistory)

	rg.POST("/cache/invalidate", h.invalidateCache)
	rg.GET("/cache/invalidate", h.cacheStats)
}
