package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
	"github.com/nisal-dev/portfolio-backend/internal/github"
	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

// RepoFetcher is the slice of the GitHub client the sync engine needs.
type RepoFetcher interface {
	ListRepositories(ctx context.Context) ([]github.Repository, error)
	ListLanguages(ctx context.Context, repo string) (map[string]int, error)
}

// SyncLogStore records audit rows for sync runs.
type SyncLogStore interface {
	Insert(ctx context.Context, l *domain.SyncLog) error
}

// Trigger identifies what started a sync run, for the audit log.
type Trigger struct {
	By        string
	ClientIP  string
	UserAgent string
}

// SyncService reconciles remote repositories with local project records.
// It is the only writer of GITHUB-sourced rows. Runs are serialized through
// a single-flight group: concurrent callers share one run's result instead
// of racing the existence-check-then-create step.
type SyncService struct {
	store  ProjectStore
	logs   SyncLogStore
	github RepoFetcher
	cache  *cache.Store
	group  singleflight.Group
}

func NewSyncService(store ProjectStore, logs SyncLogStore, fetcher RepoFetcher, cacheStore *cache.Store) *SyncService {
	return &SyncService{
		store:  store,
		logs:   logs,
		github: fetcher,
		cache:  cacheStore,
	}
}

// Bounds one reconciliation run, independent of any caller's deadline.
const runTimeout = 5 * time.Minute

// SyncAll runs one reconciliation pass. A non-nil error means the remote
// list could not be fetched at all and no local rows were touched; any
// per-repository failure is collected in the result instead.
func (s *SyncService) SyncAll(ctx context.Context, trigger Trigger) (*domain.SyncResult, error) {
	v, err, _ := s.group.Do("github-sync", func() (any, error) {
		// Joined callers share this run's result, so it must not die with
		// whichever caller happened to start it.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runTimeout)
		defer cancel()
		return s.run(runCtx, trigger)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SyncResult), nil
}

func (s *SyncService) run(ctx context.Context, trigger Trigger) (*domain.SyncResult, error) {
	started := time.Now().UTC()

	repos, err := s.github.ListRepositories(ctx)
	if err != nil {
		result := &domain.SyncResult{
			Errors:         []string{err.Error()},
			SyncedProjects: []string{},
		}
		s.writeLog(ctx, trigger, started, result)
		return nil, err
	}

	// Invalidate unconditionally from here on: even a partial run changed
	// rows, and the next read must reflect whatever subset succeeded. A
	// failed fetch touched nothing, so the warm cache stays.
	defer s.cache.InvalidateNamespace("projects")

	result := &domain.SyncResult{
		Errors:         []string{},
		SyncedProjects: []string{},
	}

	for _, repo := range repos {
		if err := s.reconcile(ctx, repo, result); err != nil {
			// One bad repository must not abort the batch.
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", repo.Name, err))
		}
	}

	result.Success = len(result.Errors) == 0
	s.writeLog(ctx, trigger, started, result)

	log.Printf("[sync] trigger=%s created=%d updated=%d errors=%d",
		trigger.By, result.Created, result.Updated, len(result.Errors))
	return result, nil
}

func (s *SyncService) reconcile(ctx context.Context, repo github.Repository, result *domain.SyncResult) error {
	existing, err := s.store.GetByName(ctx, repo.Name)

	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		p := s.newProject(ctx, repo)
		if err := s.store.Create(ctx, p); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		result.Created++

	case err != nil:
		return fmt.Errorf("lookup: %w", err)

	case existing.Source == domain.SourceManual:
		// Manual projects always win over the remote, even on a name
		// collision. Not counted as created or updated.
		return nil

	default:
		if err := s.store.UpdateFromRemote(ctx, repo.Name, s.remoteUpdate(ctx, repo)); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		result.Updated++
	}

	result.SyncedProjects = append(result.SyncedProjects, repo.Name)
	return nil
}

func (s *SyncService) newProject(ctx context.Context, repo github.Repository) *domain.Project {
	up := s.remoteUpdate(ctx, repo)
	return &domain.Project{
		Name:            repo.Name,
		Title:           up.Title,
		Description:     up.Description,
		GithubURL:       up.GithubURL,
		LiveURL:         up.LiveURL,
		Featured:        false,
		DisplayOrder:    nil,
		Source:          domain.SourceGitHub,
		Technologies:    up.Technologies,
		Stars:           up.Stars,
		Forks:           up.Forks,
		PrimaryLanguage: up.PrimaryLanguage,
		PushedAt:        up.PushedAt,
		Status:          domain.StatusActive,
	}
}

func (s *SyncService) remoteUpdate(ctx context.Context, repo github.Repository) domain.RemoteUpdate {
	up := domain.RemoteUpdate{
		Title:           repo.Name,
		Description:     repo.Description,
		GithubURL:       repo.HTMLURL,
		LiveURL:         repo.Homepage,
		Stars:           repo.Stars,
		Forks:           repo.Forks,
		PrimaryLanguage: repo.Language,
		Technologies:    s.technologies(ctx, repo.Name),
	}
	if !repo.PushedAt.IsZero() {
		pushed := repo.PushedAt
		up.PushedAt = &pushed
	}
	return up
}

// technologies converts the language byte counts into percentage shares.
// Best effort: a languages fetch failure leaves the field empty rather than
// failing the repository.
func (s *SyncService) technologies(ctx context.Context, repo string) []domain.Technology {
	langs, err := s.github.ListLanguages(ctx, repo)
	if err != nil {
		log.Printf("[sync] languages for %s unavailable: %v", repo, err)
		return nil
	}

	total := 0
	for _, bytes := range langs {
		total += bytes
	}
	if total == 0 {
		return nil
	}

	out := make([]domain.Technology, 0, len(langs))
	for name, bytes := range langs {
		out = append(out, domain.Technology{
			Name:       name,
			Percentage: math.Round(float64(bytes)/float64(total)*1000) / 10,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *SyncService) writeLog(ctx context.Context, trigger Trigger, started time.Time, result *domain.SyncResult) {
	entry := &domain.SyncLog{
		TriggeredBy:    trigger.By,
		ClientIP:       trigger.ClientIP,
		UserAgent:      trigger.UserAgent,
		Success:        result.Success,
		Created:        result.Created,
		Updated:        result.Updated,
		Errors:         result.Errors,
		SyncedProjects: result.SyncedProjects,
		StartedAt:      started,
		FinishedAt:     time.Now().UTC(),
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		// Audit failure must not fail the sync itself.
		log.Printf("[sync] failed to record sync log: %v", err)
	}
}
