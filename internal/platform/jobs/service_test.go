package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunNowReturnsDetails(t *testing.T) {
	svc := New(quietLogger())
	details, err := svc.RunNow(context.Background(), JobOverdueSweep, func(context.Context) (any, error) {
		return map[string]int64{"updated": 2}, nil
	})
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if got := details.(map[string]int64)["updated"]; got != 2 {
		t.Fatalf("unexpected details: %v", details)
	}

	boom := errors.New("boom")
	if _, err := svc.RunNow(context.Background(), "failing", func(context.Context) (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestScheduledJobRuns(t *testing.T) {
	svc := New(quietLogger())
	var runs atomic.Int32
	svc.Every(JobOverdueSweep, 5*time.Millisecond, func(context.Context) (any, error) {
		runs.Add(1)
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least two scheduled runs, got %d", runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	svc := New(quietLogger())
	noop := func(context.Context) (any, error) { return nil, nil }
	for i := 0; i < cap(svc.queue); i++ {
		if !svc.Enqueue("noop", noop) {
			t.Fatalf("enqueue %d unexpectedly rejected", i)
		}
	}
	if svc.Enqueue("noop", noop) {
		t.Fatal("expected full queue to reject job")
	}
}
