package service

import (
	"context"
	"log"
	"time"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

const (
	keyAllProjects      = "projects:all"
	keyFeaturedProjects = "projects:featured"
)

// ProjectStore is the persistence surface the services need. Implemented by
// repository.ProjectRepository; tests supply in-memory fakes.
type ProjectStore interface {
	ListActive(ctx context.Context) ([]domain.Project, error)
	ListFeatured(ctx context.Context) ([]domain.Project, error)
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	UpdateFromRemote(ctx context.Context, name string, up domain.RemoteUpdate) error
}

// ProjectService is the public read path: cached, override-merged project
// lists that degrade to stale data or an empty list instead of erroring.
type ProjectService struct {
	store ProjectStore
	cache *cache.Store
	ttl   time.Duration
}

func NewProjectService(store ProjectStore, cacheStore *cache.Store, ttl time.Duration) *ProjectService {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &ProjectService{store: store, cache: cacheStore, ttl: ttl}
}

// All returns every ACTIVE project. A non-nil error means even the stale
// fallback was empty and the caller should signal degradation; the returned
// slice is always usable.
func (s *ProjectService) All(ctx context.Context) ([]domain.Project, error) {
	return s.cached(ctx, keyAllProjects, s.store.ListActive)
}

// Featured returns ACTIVE projects flagged featured, display order first.
func (s *ProjectService) Featured(ctx context.Context) ([]domain.Project, error) {
	return s.cached(ctx, keyFeaturedProjects, s.store.ListFeatured)
}

func (s *ProjectService) cached(ctx context.Context, key string, load func(context.Context) ([]domain.Project, error)) ([]domain.Project, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.Project), nil
	}

	rows, err := load(ctx)
	if err != nil {
		// Serve the last known value if one is still around, otherwise
		// degrade to an empty list rather than failing the public site.
		if v, ok := s.cache.GetStale(key); ok {
			log.Printf("[projects] %s: database unavailable, serving stale cache: %v", key, err)
			return v.([]domain.Project), nil
		}
		log.Printf("[projects] %s: database unavailable and no cache: %v", key, err)
		return []domain.Project{}, err
	}

	merged := make([]domain.Project, len(rows))
	for i, p := range rows {
		merged[i] = p.Merged()
	}

	s.cache.Set(key, merged, s.ttl)
	return merged, nil
}

// InvalidateCache drops every projects:* key, forcing the next read to hit
// the database.
func (s *ProjectService) InvalidateCache() int {
	return s.cache.InvalidateNamespace("projects")
}
