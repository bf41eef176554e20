package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const JobOverdueSweep = "goal_overdue_sweep"

type RunFunc func(context.Context) (any, error)

type job struct {
	Name string
	Run  RunFunc
}

type schedule struct {
	name     string
	interval time.Duration
	run      RunFunc
}

// Service runs background jobs on a single worker goroutine. Scheduled jobs
// are enqueued by their own tickers so a slow run never stacks up behind
// itself.
type Service struct {
	logger    *slog.Logger
	queue     chan job
	mu        sync.Mutex
	schedules []schedule
	started   bool
}

func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		queue:  make(chan job, 128),
	}
}

// Every registers a recurring job. Registrations after Start are ignored.
func (s *Service) Every(name string, interval time.Duration, run RunFunc) {
	if interval <= 0 || run == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.logger.Warn("job registered after start", "jobType", name)
		return
	}
	s.schedules = append(s.schedules, schedule{name: name, interval: interval, run: run})
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	s.started = true
	schedules := append([]schedule(nil), s.schedules...)
	s.mu.Unlock()

	go s.worker(ctx)
	for _, sched := range schedules {
		go s.tick(ctx, sched)
	}
}

func (s *Service) Enqueue(name string, run RunFunc) bool {
	select {
	case s.queue <- job{Name: name, Run: run}:
		return true
	default:
		s.logger.Warn("job queue full", "jobType", name)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, name string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Name: name, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.logger.Warn("job run failed", "jobType", j.Name, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	start := time.Now()
	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	s.logger.Info("job run",
		"jobType", j.Name,
		"status", status,
		"durationMs", time.Since(start).Milliseconds(),
		"details", details,
	)
	return details, err
}

func (s *Service) tick(ctx context.Context, sched schedule) {
	ticker := time.NewTicker(sched.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sched.name, sched.run)
		}
	}
}
