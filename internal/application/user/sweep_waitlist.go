package user

import (
	"context"
	"strings"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type SweepWaitlistInput struct {
	// Date defaults to today when empty.
	Date string
}

type SweepWaitlistOutput struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Errors  int    `json:"errors"`
	Removed int    `json:"removed"`
}

type SweepWaitlist interface {
	Execute(ctx context.Context, in SweepWaitlistInput) (SweepWaitlistOutput, error)
}

type sweepWaitlist struct {
	sweeper dueSweeper
	now     func() time.Time
	loc     *time.Location
}

func NewSweepWaitlist(sweeper dueSweeper, loc *time.Location, now func() time.Time) SweepWaitlist {
	if now == nil {
		now = time.Now
	}
	return &sweepWaitlist{sweeper: sweeper, now: now, loc: loc}
}

func (uc *sweepWaitlist) Execute(ctx context.Context, in SweepWaitlistInput) (SweepWaitlistOutput, error) {
	date := domain.Today(uc.now(), uc.loc)
	if raw := strings.TrimSpace(in.Date); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			return SweepWaitlistOutput{}, ErrInvalidSweepDate
		}
		date = parsed
	}

	result, err := uc.sweeper.SweepDue(ctx, date)
	if err != nil {
		return SweepWaitlistOutput{}, err
	}

	return SweepWaitlistOutput{
		Date:    date.String(),
		Created: len(result.Success),
		Errors:  len(result.Errors),
		Removed: len(result.Removed),
	}, nil
}
