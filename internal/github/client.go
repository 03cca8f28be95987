package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/nisal-dev/portfolio-backend/internal/cache"
)

// ErrUpstream marks failures of the GitHub REST API. Callers must treat it
// as "no authoritative data available" and fall back to cached or zeroed
// results instead of surfacing it on public paths.
var ErrUpstream = errors.New("github upstream unavailable")

const (
	reposKey        = "github:repos"
	statsKey        = "github:stats"
	languagesPrefix = "github:languages:"
	commitsPrefix   = "github:commits:"

	// Commit counts are fetched for at most this many repositories per
	// stats run, most recently pushed first, to bound outbound calls.
	commitCountRepoLimit = 20

	requestTimeout = 10 * time.Second
)

type Config struct {
	Username string
	Token    string
	// BaseURL overrides the GitHub API endpoint; used by tests.
	BaseURL  string
	CacheTTL time.Duration
	ErrorTTL time.Duration
}

// Client fetches repository data for a single GitHub account. Responses are
// cached in their own short-TTL keys, independent of the project cache,
// because upstream data changes on its own schedule and is rate limited.
type Client struct {
	gh       *gh.Client
	username string
	cache    *cache.Store
	limiter  *rate.Limiter
	ttl      time.Duration
	errTTL   time.Duration
}

func New(cfg Config, store *cache.Store) (*Client, error) {
	if cfg.Username == "" {
		return nil, fmt.Errorf("github username is required")
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.ErrorTTL == 0 {
		cfg.ErrorTTL = time.Minute
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
	} else {
		// Unauthenticated works too, with a much lower rate limit.
		httpClient = &http.Client{}
	}
	httpClient.Timeout = requestTimeout

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		client.BaseURL = base
	}

	return &Client{
		gh:       client,
		username: cfg.Username,
		cache:    store,
		limiter:  rate.NewLimiter(rate.Limit(2), 5),
		ttl:      cfg.CacheTTL,
		errTTL:   cfg.ErrorTTL,
	}, nil
}

// Username returns the account this client is bound to.
func (c *Client) Username() string {
	return c.username
}

// ListRepositories returns the account's public repositories, most recently
// pushed first.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	if v, ok := c.cache.Get(reposKey); ok {
		return v.([]Repository), nil
	}

	opts := &gh.RepositoryListByUserOptions{
		Sort:        "pushed",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var out []Repository
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		repos, resp, err := c.gh.Repositories.ListByUser(ctx, c.username, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: list repositories: %v", ErrUpstream, err)
		}
		for _, r := range repos {
			if r.GetPrivate() {
				continue
			}
			out = append(out, fromGitHub(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.cache.Set(reposKey, out, c.ttl)
	return out, nil
}

// ListLanguages returns the byte counts per language for one repository.
func (c *Client) ListLanguages(ctx context.Context, repo string) (map[string]int, error) {
	key := languagesPrefix + repo
	if v, ok := c.cache.Get(key); ok {
		return v.(map[string]int), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	langs, _, err := c.gh.Repositories.ListLanguages(ctx, c.username, repo)
	if err != nil {
		return nil, fmt.Errorf("%w: list languages for %s: %v", ErrUpstream, repo, err)
	}

	c.cache.Set(key, langs, c.ttl)
	return langs, nil
}

// CommitCount returns the number of commits on the default branch of repo.
// Best effort: failures are logged and collapse to 0, since commit totals
// feed aggregate statistics only.
func (c *Client) CommitCount(ctx context.Context, repo string) int {
	key := commitsPrefix + repo
	if v, ok := c.cache.Get(key); ok {
		return v.(int)
	}

	count, err := c.commitCount(ctx, repo)
	if err != nil {
		log.Printf("[github] commit count for %s failed: %v", repo, err)
		c.cache.Set(key, 0, c.errTTL)
		return 0
	}

	c.cache.Set(key, count, c.ttl)
	return count
}

func (c *Client) commitCount(ctx context.Context, repo string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	// With one commit per page the Link header's last page is the total.
	opts := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: 1}}
	commits, resp, err := c.gh.Repositories.ListCommits(ctx, c.username, repo, opts)
	if err != nil {
		return 0, err
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}

// cachedStats wraps a Stats snapshot with its provenance: a degraded entry
// was produced without upstream data and must keep reporting ErrUpstream
// until the error TTL lets a refetch through.
type cachedStats struct {
	stats    Stats
	degraded bool
}

// Stats aggregates totals across the account's repositories. On upstream
// failure a zeroed Stats is cached briefly so repeated requests don't hammer
// a failing API; such hits still return ErrUpstream so callers can tell
// degraded data from fresh.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	if v, ok := c.cache.Get(statsKey); ok {
		cached := v.(cachedStats)
		if cached.degraded {
			return cached.stats, ErrUpstream
		}
		return cached.stats, nil
	}

	repos, err := c.ListRepositories(ctx)
	if err != nil {
		zeroed := Stats{GeneratedAt: time.Now().UTC()}
		c.cache.Set(statsKey, cachedStats{stats: zeroed, degraded: true}, c.errTTL)
		return zeroed, err
	}

	stats := Stats{
		PublicRepos: len(repos),
		GeneratedAt: time.Now().UTC(),
	}

	topStars := -1
	for i, r := range repos {
		stats.TotalStars += r.Stars
		stats.TotalForks += r.Forks
		if r.Stars > topStars {
			topStars = r.Stars
			stats.TopRepository = r.Name
		}
		if r.PushedAt.After(stats.LastPushedAt) {
			stats.LastPushedAt = r.PushedAt
		}
		if i < commitCountRepoLimit {
			stats.TotalCommits += c.CommitCount(ctx, r.Name)
		}
	}

	c.cache.Set(statsKey, cachedStats{stats: stats}, c.ttl)
	return stats, nil
}

func fromGitHub(r *gh.Repository) Repository {
	return Repository{
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Language:    r.GetLanguage(),
		PushedAt:    r.GetPushedAt().Time,
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    r.GetHomepage(),
		Fork:        r.GetFork(),
		Archived:    r.GetArchived(),
		Topics:      r.Topics,
	}
}
