package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tasklist/api/internal/service"
)

// Scheduler runs the periodic session sweep. Validation never prunes as a
// side effect, so lapsed sessions would otherwise accumulate until the
// owner's next login.
type Scheduler struct {
	cron *cron.Cron
	auth *service.AuthService
	log  zerolog.Logger
}

func NewScheduler(auth *service.AuthService, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron: c,
		auth: auth,
		log:  log,
	}
}

func (s *Scheduler) Start() error {
	if s.auth == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 3 * * *", s.pruneSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) pruneSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pruned, err := s.auth.PruneAllExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	s.log.Info().Int64("pruned", pruned).Msg("expired sessions swept")
}
