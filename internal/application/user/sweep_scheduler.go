package user

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"go.uber.org/zap"
)

type dueSweeper interface {
	SweepDue(ctx context.Context, date domain.Date) (domain.SweepResult, error)
}

type SweepSchedulerConfig struct {
	Interval time.Duration
	// Offsets are day offsets from today; each one gets its own sweep.
	Offsets  []int
	Location *time.Location
	Now      func() time.Time
}

// SweepScheduler triggers waitlist sweeps on a fixed interval, once at start
// and then on every tick.
type SweepScheduler struct {
	sweeper dueSweeper
	cfg     SweepSchedulerConfig
	logger  *zap.Logger

	once sync.Once
}

func NewSweepScheduler(sweeper dueSweeper, logger *zap.Logger, cfg SweepSchedulerConfig) *SweepScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if len(cfg.Offsets) == 0 {
		cfg.Offsets = []int{0, 7}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepScheduler{sweeper: sweeper, cfg: cfg, logger: logger}
}

func (s *SweepScheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.loop(ctx)
	})
}

func (s *SweepScheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("waitlist sweep scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Ints("offsets", s.cfg.Offsets),
	)

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("waitlist sweep scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps today+offset for every configured offset and returns the
// results of the sweeps that ran.
func (s *SweepScheduler) RunOnce(ctx context.Context) []domain.SweepResult {
	today := domain.Today(s.cfg.Now(), s.cfg.Location)

	results := make([]domain.SweepResult, 0, len(s.cfg.Offsets))
	for _, offset := range s.cfg.Offsets {
		if ctx.Err() != nil {
			return results
		}
		date := today.AddDays(offset)
		result, err := s.sweeper.SweepDue(ctx, date)
		if err != nil {
			if errors.Is(err, ErrSweepInProgress) {
				s.logger.Warn("waitlist sweep skipped, another sweep is running", zap.Stringer("date", date))
				continue
			}
			s.logger.Error("waitlist sweep failed", zap.Stringer("date", date), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results
}
