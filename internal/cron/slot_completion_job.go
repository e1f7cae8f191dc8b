package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/rationsetu/rationsetu-backend/pkg/logger"
)

// slotCompleter closes collection windows whose date has passed.
type slotCompleter interface {
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SlotCompletionJobParams configure the slot completion job.
type SlotCompletionJobParams struct {
	Logger    *logger.Logger
	TimeSlots slotCompleter
	Now       func() time.Time
}

type slotCompletionJob struct {
	logg      *logger.Logger
	timeslots slotCompleter
	now       func() time.Time
}

// NewSlotCompletionJob builds the job that marks past collection windows
// as completed.
func NewSlotCompletionJob(params SlotCompletionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.TimeSlots == nil {
		return nil, fmt.Errorf("timeslots service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &slotCompletionJob{
		logg:      params.Logger,
		timeslots: params.TimeSlots,
		now:       now,
	}, nil
}

func (j *slotCompletionJob) Name() string {
	return "slot_completion"
}

func (j *slotCompletionJob) Run(ctx context.Context) error {
	closed, err := j.timeslots.CompleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("complete expired slots: %w", err)
	}
	if closed > 0 {
		ctx = j.logg.WithField(ctx, "slots_closed", closed)
		j.logg.Info(ctx, "expired slots closed")
	}
	return nil
}
