package domain

import "time"

type Source string

const (
	SourceManual Source = "MANUAL"
	SourceGitHub Source = "GITHUB"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Technology is one language share of a project, derived from the GitHub
// language breakdown for GITHUB-sourced projects.
type Technology struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Project is the locally persisted record. For GITHUB-sourced projects the
// canonical title/description/image come from the remote repository and the
// override fields, when set, win for display. Featured and DisplayOrder are
// always locally owned, regardless of source.
type Project struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	ImageURL        string       `json:"image_url"`
	GithubURL       string       `json:"github_url"`
	LiveURL         string       `json:"live_url"`
	Category        string       `json:"category"`
	Featured        bool         `json:"featured"`
	DisplayOrder    *int         `json:"display_order"`
	ViewCount       int          `json:"view_count"`
	LikeCount       int          `json:"like_count"`
	Source          Source       `json:"source"`
	TitleOverride   *string      `json:"title_override,omitempty"`
	DescOverride    *string      `json:"description_override,omitempty"`
	ImageOverride   *string      `json:"image_url_override,omitempty"`
	Technologies    []Technology `json:"technologies"`
	Stars           int          `json:"stars"`
	Forks           int          `json:"forks"`
	PrimaryLanguage string       `json:"primary_language"`
	PushedAt        *time.Time   `json:"pushed_at"`
	Status          Status       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Merged returns a copy with override fields folded into the display fields.
func (p Project) Merged() Project {
	if p.TitleOverride != nil {
		p.Title = *p.TitleOverride
	}
	if p.DescOverride != nil {
		p.Description = *p.DescOverride
	}
	if p.ImageOverride != nil {
		p.ImageURL = *p.ImageOverride
	}
	return p
}

// RemoteUpdate carries the canonical fields the reconciliation engine is
// allowed to rewrite on a GITHUB-sourced project. Overrides, Featured and
// DisplayOrder are deliberately not part of it.
type RemoteUpdate struct {
	Title           string
	Description     string
	GithubURL       string
	LiveURL         string
	Stars           int
	Forks           int
	PrimaryLanguage string
	PushedAt        *time.Time
	Technologies    []Technology
}

// SyncResult summarizes one reconciliation run. It is returned to the
// caller and recorded in the sync log; it is not otherwise persisted.
type SyncResult struct {
	Success        bool     `json:"success"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Errors         []string `json:"errors"`
	SyncedProjects []string `json:"synced_projects"`
}

// SyncLog is one audit row per reconciliation run, success or failure.
type SyncLog struct {
	ID             string    `json:"id"`
	TriggeredBy    string    `json:"triggered_by"`
	ClientIP       string    `json:"client_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	Success        bool      `json:"success"`
	Created        int       `json:"created"`
	Updated        int       `json:"updated"`
	Errors         []string  `json:"errors"`
	SyncedProjects []string  `json:"synced_projects"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
