package github

import "time"

// Repository is an immutable snapshot of one remote repository as of the
// fetch that produced it. It is never mutated locally, only re-fetched.
type Repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    string    `json:"language"`
	PushedAt    time.Time `json:"pushed_at"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Fork        bool      `json:"fork"`
	Archived    bool      `json:"archived"`
	Topics      []string  `json:"topics"`
}

// Stats aggregates account-wide numbers for the public stats endpoint.
type Stats struct {
	PublicRepos   int       `json:"public_repos"`
	TotalStars    int       `json:"total_stars"`
	TotalForks    int       `json:"total_forks"`
	TotalCommits  int       `json:"total_commits"`
	TopRepository string    `json:"top_repository"`
	LastPushedAt  time.Time `json:"last_pushed_at"`
	GeneratedAt   time.Time `json:"generated_at"`
}
