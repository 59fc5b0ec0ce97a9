package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
)

// Refresher pulls the latest market reading into the condition store.
type Refresher interface {
	Refresh(ctx context.Context) (model.MarketCondition, error)
}

// Snapshotter persists every fund and reports the current minimum.
type Snapshotter interface {
	Snapshot() (int, error)
	Minimum() minimum.Result
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Engine    Snapshotter
	Log       *zap.Logger
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Specs use the six-field format with seconds.
func NewScheduler(ctx context.Context, r Refresher, s Snapshotter, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Engine:    s,
		Log:       log,
		Ctx:       ctx,
	}
}

// RegisterAll registers the market refresh and the state snapshot tasks.
func (s *Scheduler) RegisterAll(feedCron, snapshotCron string) error {
	if _, err := s.Cron.AddFunc(feedCron, s.refreshTask); err != nil {
		return fmt.Errorf("register feed task: %w", err)
	}
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RefreshNow runs the market refresh immediately (used at startup).
func (s *Scheduler) RefreshNow() error {
	_, err := s.Refresher.Refresh(s.Ctx)
	return err
}

func (s *Scheduler) refreshTask() {
	if _, err := s.Refresher.Refresh(s.Ctx); err != nil {
		s.Log.Error("market refresh failed, keeping previous condition", zap.Error(err))
		return
	}
	res := s.Engine.Minimum()
	s.Log.Info("dynamic minimum",
		zap.String("minimum", res.Minimum.String()),
		zap.String("tier", res.TierLabel))
}

func (s *Scheduler) snapshotTask() {
	n, err := s.Engine.Snapshot()
	if err != nil {
		s.Log.Error("fund snapshot incomplete", zap.Int("saved", n), zap.Error(err))
		return
	}
	s.Log.Info("fund snapshot written", zap.Int("funds", n))
}
