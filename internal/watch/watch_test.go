package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNextCron(t *testing.T) {
	from := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	// Каждый день в полночь.
	next, err := Next("0 0 * * *", from)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	want := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next() = %v, want %v", next, want)
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/15 * * * *"); err != nil {
		t.Errorf("ValidateCronExpr() error = %v for valid expression", err)
	}
	if err := ValidateCronExpr("not a cron"); err == nil {
		t.Error("ValidateCronExpr() expected error for invalid expression")
	}
}

func TestNewRejectsBadCron(t *testing.T) {
	if _, err := New(Config{CronExpr: "bogus"}, func(context.Context) error { return nil }); err == nil {
		t.Error("New() expected error for invalid cron expression")
	}
}

func TestWatcherRunsSweepImmediately(t *testing.T) {
	var sweeps int32
	ctx, cancel := context.WithCancel(context.Background())

	w, err := New(Config{Interval: time.Hour}, func(context.Context) error {
		atomic.AddInt32(&sweeps, 1)
		cancel() // останавливаемся после первого прохода
		return nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Run(ctx); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if atomic.LoadInt32(&sweeps) != 1 {
		t.Errorf("sweeps = %d, want 1", sweeps)
	}
}

func TestWatcherSweepErrorDoesNotStopSchedule(t *testing.T) {
	var sweeps int32
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	w, err := New(Config{Interval: time.Hour}, func(context.Context) error {
		atomic.AddInt32(&sweeps, 1)
		return context.DeadlineExceeded // имитация ошибки прохода
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Run завершается по отмене контекста, а не из-за ошибки прохода.
	if err := w.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Run() error = %v, want context deadline", err)
	}
	if atomic.LoadInt32(&sweeps) < 1 {
		t.Error("sweep never ran")
	}
}
