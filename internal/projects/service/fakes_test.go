package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nisal-dev/portfolio-backend/internal/github"
	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

// fakeStore is an in-memory ProjectStore keyed by project name.
type fakeStore struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	failOn   map[string]error
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]domain.Project),
		failOn:   make(map[string]error),
	}
}

func (f *fakeStore) snapshot() []domain.Project {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out
}

func (f *fakeStore) ListActive(ctx context.Context) ([]domain.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := []domain.Project{}
	for _, p := range f.snapshot() {
		if p.Status == domain.StatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListFeatured(ctx context.Context) ([]domain.Project, error) {
	all, err := f.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.Project{}
	for _, p := range all {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.projects[name]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	copied := p
	return &copied, nil
}

func (f *fakeStore) Create(ctx context.Context, p *domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[p.Name]; err != nil {
		return err
	}
	if _, ok := f.projects[p.Name]; ok {
		return domain.ErrDuplicateName
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.projects[p.Name] = *p
	return nil
}

func (f *fakeStore) UpdateFromRemote(ctx context.Context, name string, up domain.RemoteUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[name]; err != nil {
		return err
	}
	p, ok := f.projects[name]
	if !ok || p.Source != domain.SourceGitHub {
		return domain.ErrProjectNotFound
	}
	p.Title = up.Title
	p.Description = up.Description
	p.GithubURL = up.GithubURL
	p.LiveURL = up.LiveURL
	p.Stars = up.Stars
	p.Forks = up.Forks
	p.PrimaryLanguage = up.PrimaryLanguage
	p.PushedAt = up.PushedAt
	p.Technologies = up.Technologies
	p.UpdatedAt = time.Now()
	f.projects[name] = p
	return nil
}

// fakeFetcher serves a fixed repository list.
type fakeFetcher struct {
	repos     []github.Repository
	err       error
	langs     map[string]map[string]int
	listCalls atomic.Int32
	delay     time.Duration
}

func (f *fakeFetcher) ListRepositories(ctx context.Context) ([]github.Repository, error) {
	f.listCalls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}

func (f *fakeFetcher) ListLanguages(ctx context.Context, repo string) (map[string]int, error) {
	if langs, ok := f.langs[repo]; ok {
		return langs, nil
	}
	return map[string]int{}, nil
}

// fakeLogStore collects sync log rows.
type fakeLogStore struct {
	mu      sync.Mutex
	entries []domain.SyncLog
}

func (f *fakeLogStore) Insert(ctx context.Context, l *domain.SyncLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *l)
	return nil
}
