package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nisal-dev/portfolio-backend/internal/projects/domain"
)

// SyncLogRepository records one audit row per reconciliation run.
type SyncLogRepository struct {
	db *pgxpool.Pool
}

func NewSyncLogRepository(db *pgxpool.Pool) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

func (r *SyncLogRepository) Insert(ctx context.Context, l *domain.SyncLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	const q = `
insert into sync_logs (
  id, triggered_by, client_ip, user_agent, success, created, updated,
  errors, synced_projects, started_at, finished_at
)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);
`
	_, err := r.db.Exec(ctx, q,
		l.ID, l.TriggeredBy, l.ClientIP, l.UserAgent, l.Success,
		l.Created, l.Updated, l.Errors, l.SyncedProjects,
		l.StartedAt, l.FinishedAt,
	)
	return err
}

const syncLogColumns = `
id, triggered_by, client_ip, user_agent, success, created, updated,
errors, synced_projects, started_at, finished_at`

func scanSyncLog(row pgx.Row) (*domain.SyncLog, error) {
	var l domain.SyncLog
	err := row.Scan(
		&l.ID, &l.TriggeredBy, &l.ClientIP, &l.UserAgent, &l.Success,
		&l.Created, &l.Updated, &l.Errors, &l.SyncedProjects,
		&l.StartedAt, &l.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Recent returns the most recent runs, newest first.
func (r *SyncLogRepository) Recent(ctx context.Context, limit int) ([]domain.SyncLog, error) {
	if limit <= 0 {
		limit = 10
	}

	q := `select ` + syncLogColumns + ` from sync_logs order by started_at desc limit $1;`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SyncLog, 0, limit)
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// LastSuccessful returns the newest run with success = true, or nil.
func (r *SyncLogRepository) LastSuccessful(ctx context.Context) (*domain.SyncLog, error) {
	q := `select ` + syncLogColumns + ` from sync_logs where success = true order by started_at desc limit 1;`

	l, err := scanSyncLog(r.db.QueryRow(ctx, q))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
