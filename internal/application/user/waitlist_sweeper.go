package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"go.uber.org/zap"
)

const sweepLockKey = "user-import:waitlist-sweep"

// Locker hands out a single named slot. TryLock returns domain.ErrLockHeld
// when another owner holds key.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), err error)
}

// MutexLocker is a Locker for a single process.
type MutexLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{held: make(map[string]struct{})}
}

func (l *MutexLocker) TryLock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// SweepSink receives the counts of every finished sweep. failed entries are
// the ones left on the waitlist for the next sweep.
type SweepSink interface {
	SweepCompleted(ctx context.Context, date domain.Date, created, failed int)
}

type Sweeper struct {
	waitlist domain.WaitlistStore
	creator  recordCreator
	locker   Locker
	notifier Notifier
	sink     SweepSink
	logger   *zap.Logger
}

type SweeperOption func(*Sweeper)

func WithSweepNotifier(n Notifier) SweeperOption {
	return func(s *Sweeper) { s.notifier = n }
}

func WithSweepSink(sink SweepSink) SweeperOption {
	return func(s *Sweeper) { s.sink = sink }
}

func NewSweeper(waitlist domain.WaitlistStore, creator recordCreator, locker Locker, logger *zap.Logger, opts ...SweeperOption) *Sweeper {
	if locker == nil {
		locker = NewMutexLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		waitlist: waitlist,
		creator:  creator,
		locker:   locker,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepDue creates users for every waitlist entry dated date. Created entries
// are removed from the waitlist with every other entry for the same email;
// later entries for an email removed this way are not created again. Failed
// entries stay for the next sweep. Only one sweep runs at a time.
// Cancellation stops the sweep between entries.
func (s *Sweeper) SweepDue(ctx context.Context, date domain.Date) (domain.SweepResult, error) {
	result := domain.SweepResult{Date: date}

	release, err := s.locker.TryLock(ctx, sweepLockKey)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return result, ErrSweepInProgress
		}
		return result, fmt.Errorf("%w: %v", ErrSweepLock, err)
	}
	defer release()

	entries, err := s.waitlist.EntriesForDate(ctx, date)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrListWaitlist, err)
	}

	removed := make(map[string]struct{})
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			s.report(ctx, result)
			return result, err
		}
		if _, ok := removed[entry.Record.Email]; ok {
			sweepEntriesTotal.WithLabelValues(outcomeRemoved).Inc()
			result.Removed = append(result.Removed, entry)
			continue
		}
		if s.promote(context.WithoutCancel(ctx), entry, &result) {
			removed[entry.Record.Email] = struct{}{}
		}
	}

	s.report(ctx, result)
	return result, nil
}

// promote creates the user of entry and reports whether its waitlist rows
// were deleted.
func (s *Sweeper) promote(ctx context.Context, entry domain.WaitlistEntry, result *domain.SweepResult) bool {
	userID, err := s.creator.Create(ctx, entry.Record)
	if err != nil {
		sweepEntriesTotal.WithLabelValues(outcomeFailed).Inc()
		result.Errors = append(result.Errors, domain.SweepFailure{Entry: entry, Err: err})
		return false
	}

	deleted := true
	if _, err := s.waitlist.DeleteByEmail(ctx, entry.Record.Email); err != nil {
		deleted = false
		waitlistDeleteFailures.Inc()
		s.logger.Error("user created but waitlist entry not removed",
			zap.String("entry_id", entry.ID),
			zap.String("user_id", userID),
			zap.String("email", entry.Record.Email),
			zap.Error(err),
		)
	}

	sweepEntriesTotal.WithLabelValues(outcomeCreated).Inc()
	result.Success = append(result.Success, entry)

	if entry.Record.Notify && s.notifier != nil {
		if err := s.notifier.UserCreated(ctx, userID, entry.Record); err != nil {
			s.logger.Warn("user created notification failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return deleted
}

func (s *Sweeper) report(ctx context.Context, result domain.SweepResult) {
	s.logger.Info("waitlist sweep finished",
		zap.Stringer("date", result.Date),
		zap.Int("created", len(result.Success)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("removed", len(result.Removed)),
	)
	if s.sink != nil {
		s.sink.SweepCompleted(ctx, result.Date, len(result.Success), len(result.Errors))
	}
}
