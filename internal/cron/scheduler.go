package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nisal-dev/portfolio-backend/internal/projects/service"
)

// Scheduler runs the GitHub sync on a fixed schedule so the local project
// records converge even when no webhook arrives.
type Scheduler struct {
	c       *cron.Cron
	sync    *service.SyncService
	spec    string
	timeout time.Duration
}

func NewScheduler(sync *service.SyncService, spec string, timeout time.Duration) *Scheduler {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Scheduler{
		c:       cron.New(),
		sync:    sync,
		spec:    spec,
		timeout: timeout,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc(s.spec, s.runSync); err != nil {
		return err
	}

	log.Printf("Cron scheduler started (sync schedule %q)", s.spec)
	s.c.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

func (s *Scheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.sync.SyncAll(ctx, service.Trigger{By: "scheduled"})
	if err != nil {
		log.Printf("Scheduled sync failed: %v", err)
		return
	}

	log.Printf("Scheduled sync done: created=%d updated=%d errors=%d",
		result.Created, result.Updated, len(result.Errors))
}
