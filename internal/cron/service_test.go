package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rationsetu/rationsetu-backend/pkg/logger"
	"github.com/rationsetu/rationsetu-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	denied   bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.denied {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	success := &testJob{name: "success"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(success, failing),
		Lock:     &fakeLock{},
		Metrics:  metrics.NewCronJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if success.runs != 1 {
		t.Fatalf("expected success job to run once, ran %d", success.runs)
	}
	if failing.runs != 1 {
		t.Fatalf("expected failing job to still run, ran %d", failing.runs)
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job := &testJob{name: "job"}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(job),
		Lock:     &fakeLock{denied: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock, ran %d", job.runs)
	}
}

func TestServiceReleasesLockAfterCycle(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(&testJob{name: "job"}),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if lock.acquired {
		t.Fatal("lock should be released after the cycle")
	}
}

type fakeCompleter struct {
	closed int64
	err    error
	calls  int
	lastAt time.Time
}

func (f *fakeCompleter) CompleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls++
	f.lastAt = now
	return f.closed, f.err
}

func TestSlotCompletionJob(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	completer := &fakeCompleter{closed: 3}
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	job, err := NewSlotCompletionJob(SlotCompletionJobParams{
		Logger:    logg,
		TimeSlots: completer,
		Now:       func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "slot_completion" {
		t.Fatalf("unexpected job name %s", job.Name())
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if completer.calls != 1 || !completer.lastAt.Equal(fixed) {
		t.Fatalf("unexpected completer invocation calls=%d at=%s", completer.calls, completer.lastAt)
	}
}

func TestSlotCompletionJobPropagatesError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewSlotCompletionJob(SlotCompletionJobParams{
		Logger:    logg,
		TimeSlots: &fakeCompleter{err: errors.New("db down")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}
