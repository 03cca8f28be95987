package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

// ProjectRepository persists projects in Postgres.
type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
id, name, title, description, image_url, github_url, live_url, category,
featured, display_order, view_count, like_count, source,
title_override, description_override, image_url_override, technologies,
stars, forks, primary_language, pushed_at, status, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var technologies []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Title, &p.Description, &p.ImageURL, &p.GithubURL,
		&p.LiveURL, &p.Category, &p.Featured, &p.DisplayOrder, &p.ViewCount,
		&p.LikeCount, &p.Source, &p.TitleOverride, &p.DescOverride,
		&p.ImageOverride, &technologies, &p.Stars, &p.Forks,
		&p.PrimaryLanguage, &p.PushedAt, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(technologies) > 0 {
		if err := json.Unmarshal(technologies, &p.Technologies); err != nil {
			return nil, fmt.Errorf("decode technologies for %s: %w", p.Name, err)
		}
	}
	return &p, nil
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ListActive returns all ACTIVE projects in display order.
func (r *ProjectRepository) ListActive(ctx context.Context) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where status = 'ACTIVE'
order by display_order asc nulls last, pushed_at desc nulls last, created_at desc;
`
	return r.list(ctx, q)
}

// ListFeatured returns ACTIVE featured projects, display order first.
func (r *ProjectRepository) ListFeatured(ctx context.Context) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where status = 'ACTIVE' and featured = true
order by display_order asc nulls last, pushed_at desc nulls last, created_at desc;
`
	return r.list(ctx, q)
}

func (r *ProjectRepository) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	q := `select ` + projectColumns + ` from projects where name = $1;`

	p, err := scanProject(r.db.QueryRow(ctx, q, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}

	technologies, err := json.Marshal(p.Technologies)
	if err != nil {
		return fmt.Errorf("encode technologies: %w", err)
	}

	const q = `
insert into projects (
  id, name, title, description, image_url, github_url, live_url, category,
  featured, display_order, source,
  title_override, description_override, image_url_override, technologies,
  stars, forks, primary_language, pushed_at, status
)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
returning created_at, updated_at;
`
	err = r.db.QueryRow(ctx, q,
		p.ID, p.Name, p.Title, p.Description, p.ImageURL, p.GithubURL,
		p.LiveURL, p.Category, p.Featured, p.DisplayOrder, p.Source,
		p.TitleOverride, p.DescOverride, p.ImageOverride, technologies,
		p.Stars, p.Forks, p.PrimaryLanguage, p.PushedAt, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrDuplicateName
	}
	return err
}

// UpdateFromRemote rewrites only the canonical fields owned by the remote
// snapshot, leaving overrides, featured and display_order untouched.
func (r *ProjectRepository) UpdateFromRemote(ctx context.Context, name string, up domain.RemoteUpdate) error {
	technologies, err := json.Marshal(up.Technologies)
	if err != nil {
		return fmt.Errorf("encode technologies: %w", err)
	}

	const q = `
update projects
set title = $2, description = $3, github_url = $4, live_url = $5,
    stars = $6, forks = $7, primary_language = $8, pushed_at = $9,
    technologies = $10, updated_at = now()
where name = $1 and source = 'GITHUB';
`
	ct, err := r.db.Exec(ctx, q, name,
		up.Title, up.Description, up.GithubURL, up.LiveURL,
		up.Stars, up.Forks, up.PrimaryLanguage, up.PushedAt, technologies,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// Update writes the admin-editable fields of an existing project.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	technologies, err := json.Marshal(p.Technologies)
	if err != nil {
		return fmt.Errorf("encode technologies: %w", err)
	}

	const q = `
update projects
set title = $2, description = $3, image_url = $4, github_url = $5,
    live_url = $6, category = $7, featured = $8, display_order = $9,
    title_override = $10, description_override = $11, image_url_override = $12,
    technologies = $13, status = $14, updated_at = now()
where name = $1
returning updated_at;
`
	err = r.db.QueryRow(ctx, q, p.Name,
		p.Title, p.Description, p.ImageURL, p.GithubURL, p.LiveURL,
		p.Category, p.Featured, p.DisplayOrder,
		p.TitleOverride, p.DescOverride, p.ImageOverride,
		technologies, p.Status,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrProjectNotFound
	}
	return err
}

// Delete hard-deletes a project row. Reserved for MANUAL projects; GITHUB
// rows go through ClearOverridesAndArchive instead.
func (r *ProjectRepository) Delete(ctx context.Context, name string) error {
	ct, err := r.db.Exec(ctx, `delete from projects where name = $1;`, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// ClearOverridesAndArchive degrades a GITHUB-sourced project instead of
// deleting it: overrides are dropped and the row is archived, so the next
// sync keeps it reconciled but it disappears from public reads.
func (r *ProjectRepository) ClearOverridesAndArchive(ctx context.Context, name string) error {
	const q = `
update projects
set title_override = null, description_override = null,
    image_url_override = null, featured = false, status = 'ARCHIVED',
    updated_at = now()
where name = $1 and source = 'GITHUB';
`
	ct, err := r.db.Exec(ctx, q, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// CountByStatus returns project counts per status for the sync overview.
func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `select status, count(*) from projects group by status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}
