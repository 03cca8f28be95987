package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *cache.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := cache.New()
	client, err := New(Config{
		Username: "nisal",
		BaseURL:  server.URL,
		CacheTTL: time.Minute,
		ErrorTTL: time.Minute,
	}, store)
	require.NoError(t, err)
	return client, store
}

func TestClient_ListRepositories(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/nisal/repos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name":"portfolio","description":"my site","stargazers_count":12,"forks_count":3,"language":"Go","html_url":"https://github.com/nisal/portfolio","pushed_at":"2026-08-01T10:00:00Z"},
			{"name":"secrets","private":true},
			{"name":"dotfiles","stargazers_count":1}
		]`)
	}))

	ctx := context.Background()
	repos, err := client.ListRepositories(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 2, "private repositories must be filtered out")
	assert.Equal(t, "portfolio", repos[0].Name)
	assert.Equal(t, 12, repos[0].Stars)
	assert.Equal(t, "Go", repos[0].Language)

	// Second call is served from cache.
	_, err = client.ListRepositories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_ListRepositories_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ListRepositories(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestClient_ListLanguages(t *testing.T) {
	calls := 0
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/nisal/portfolio/languages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Go": 7000, "TypeScript": 3000}`)
	}))

	ctx := context.Background()
	langs, err := client.ListLanguages(ctx, "portfolio")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Go": 7000, "TypeScript": 3000}, langs)

	_, err = client.ListLanguages(ctx, "portfolio")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Invalidating the per-repo key forces a refetch.
	store.Invalidate("github:languages:portfolio")
	_, err = client.ListLanguages(ctx, "portfolio")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClient_CommitCount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/nisal/portfolio/commits" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/nisal/portfolio/commits?page=42&per_page=1>; rel="last"`, r.Host))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"sha":"abc"}]`)
	}))

	count := client.CommitCount(context.Background(), "portfolio")
	assert.Equal(t, 42, count)
}

func TestClient_CommitCount_FailureCollapsesToZero(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	count := client.CommitCount(context.Background(), "portfolio")
	assert.Equal(t, 0, count)
}

func TestClient_Stats(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/nisal/repos":
			fmt.Fprint(w, `[
				{"name":"portfolio","stargazers_count":12,"forks_count":3,"pushed_at":"2026-08-01T10:00:00Z"},
				{"name":"dotfiles","stargazers_count":30,"forks_count":1,"pushed_at":"2026-07-01T10:00:00Z"}
			]`)
		case "/repos/nisal/portfolio/commits", "/repos/nisal/dotfiles/commits":
			fmt.Fprint(w, `[{"sha":"abc"}]`)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PublicRepos)
	assert.Equal(t, 42, stats.TotalStars)
	assert.Equal(t, 4, stats.TotalForks)
	assert.Equal(t, 2, stats.TotalCommits)
	assert.Equal(t, "dotfiles", stats.TopRepository)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), stats.LastPushedAt.UTC())
}

func TestClient_Stats_CachedFailureStaysDegraded(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))

	ctx := context.Background()
	_, err := client.Stats(ctx)
	require.ErrorIs(t, err, ErrUpstream)
	require.Equal(t, 1, calls)

	// The cached zeroed snapshot must not masquerade as a fresh result, and
	// it must absorb repeat requests while the error TTL runs.
	stats, err := client.Stats(ctx)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Zero(t, stats.PublicRepos)
	assert.Equal(t, 1, calls)
}
