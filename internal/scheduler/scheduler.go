package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"StockDeck/internal/logger"
	"StockDeck/internal/tape"
)

// Scheduler drives the recurring tape refresh.
type Scheduler struct {
	Cron *cron.Cron
	Tape *tape.Tape
	Ctx  context.Context
	log  *logger.Entry
	wg   sync.WaitGroup
}

// NewScheduler creates a new Scheduler. Jobs run with ctx.
func NewScheduler(ctx context.Context, t *tape.Tape) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Tape: t,
		Ctx:  ctx,
		log:  logger.GetLogger().WithComponent("scheduler"),
	}
}

// RegisterTape registers the tape refresh on spec (standard cron or "@every 30s").
func (s *Scheduler) RegisterTape(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.tapeTask); err != nil {
		return fmt.Errorf("register tape task: %w", err)
	}
	return nil
}

// Start runs one refresh immediately, then starts the cron scheduler.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tapeTask()
	}()
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs, including the
// startup refresh, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.Tape.Hub().Close()
	s.log.Info("scheduler stopped")
}

// RunTapeNow executes the tape refresh immediately.
func (s *Scheduler) RunTapeNow() {
	s.tapeTask()
}

func (s *Scheduler) tapeTask() {
	if s.Ctx.Err() != nil {
		return
	}
	snap := s.Tape.Refresh(s.Ctx)
	s.log.WithFields(logger.Fields{"priced": len(snap)}).Debug("tape task done")
}
