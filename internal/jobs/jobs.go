// Package jobs runs the periodic maintenance sweeps. Every job is idempotent, so a
// missed or repeated run only delays or repeats work that has no further effect.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
)

// jobTimeout upper bound for a single sweep
const jobTimeout = 2 * time.Minute

// StreakResetter zeroes streaks of students who missed a day
type StreakResetter interface {
	ResetInactiveStreaks(ctx context.Context) (int64, error)
}

// PaymentExpirer expires checkouts that were never completed
type PaymentExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Scheduler cron wrapper owning the registered jobs
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New registers the streak and payment sweeps on their configured schedules
func New(cfg *config.JobsConfig, streaks StreakResetter, payments PaymentExpirer, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{logger: logger.Named("jobs")}
	cl := cronLogger{s.logger.Sugar()}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := s.cron.AddFunc(cfg.StreakResetSpec, s.wrap("streak_reset", streaks.ResetInactiveStreaks)); err != nil {
		return nil, fmt.Errorf("schedule streak reset %q: %w", cfg.StreakResetSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.PaymentExpirySpec, s.wrap("payment_expiry", payments.ExpireStale)); err != nil {
		return nil, fmt.Errorf("schedule payment expiry %q: %w", cfg.PaymentExpirySpec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) wrap(name string, fn func(context.Context) (int64, error)) func() {
	return func() {
		RunOnce(s.logger, name, fn)
	}
}

// RunOnce executes one sweep with a timeout and logs its outcome
func RunOnce(logger *zap.Logger, name string, fn func(context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := fn(ctx)
	if err != nil {
		logger.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	logger.Info("job finished", zap.String("job", name), zap.Int64("affected", n), zap.Duration("took", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
