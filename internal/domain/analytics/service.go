package analytics

import (
	"context"
	"math"
	"time"

	"perfeval/internal/domain/evaluations"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/identity"
)

type GoalLister interface {
	List(ctx context.Context, actor identity.Identity, ownerID string) ([]goals.Goal, error)
}

type EvaluationLister interface {
	List(ctx context.Context, actor identity.Identity) ([]evaluations.Evaluation, error)
}

type Service struct {
	Goals       GoalLister
	Evaluations EvaluationLister
	now         func() time.Time
}

func NewService(goalSvc GoalLister, evalSvc EvaluationLister) *Service {
	return &Service{Goals: goalSvc, Evaluations: evalSvc, now: time.Now}
}

// Summary reports on userID, or on the caller when userID is empty. Goal
// visibility rules of the goals service apply; reviews are limited to the
// ones the caller can see and the subject takes part in.
func (s *Service) Summary(ctx context.Context, actor identity.Identity, userID string) (Summary, error) {
	if userID == "" {
		userID = actor.UserID
	}
	goalList, err := s.Goals.List(ctx, actor, userID)
	if err != nil {
		return Summary{}, err
	}
	evals, err := s.Evaluations.List(ctx, actor)
	if err != nil {
		return Summary{}, err
	}
	subject := evals[:0:0]
	for _, e := range evals {
		if e.IsParticipant(userID) {
			subject = append(subject, e)
		}
	}
	return Summary{
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
		Goals:       GoalSummary(goalList),
		Reviews:     ReviewSummary(subject),
	}, nil
}

func GoalSummary(list []goals.Goal) GoalStats {
	stats := GoalStats{ByStatus: map[string]int{}}
	for _, status := range goals.Statuses {
		stats.ByStatus[status] = 0
	}
	progress := 0
	for _, g := range list {
		stats.Total++
		stats.ByStatus[g.Status]++
		progress += g.Progress
	}
	stats.Completed = stats.ByStatus[goals.StatusCompleted]
	stats.Overdue = stats.ByStatus[goals.StatusOverdue]
	if stats.Total > 0 {
		stats.CompletionRate = round2(float64(stats.Completed) * 100 / float64(stats.Total))
		stats.AverageProgress = round2(float64(progress) / float64(stats.Total))
	}
	return stats
}

func ReviewSummary(list []evaluations.Evaluation) ReviewStats {
	stats := ReviewStats{ByStatus: map[string]int{}, ByType: map[string]int{}}
	for _, status := range evaluations.Statuses {
		stats.ByStatus[status] = 0
	}
	for _, kind := range evaluations.Types {
		stats.ByType[kind] = 0
	}
	var total float64
	for _, e := range list {
		stats.Total++
		stats.ByStatus[e.Status]++
		stats.ByType[e.Type]++
		if e.Score != nil {
			stats.Scored++
			total += *e.Score
		}
	}
	if stats.Scored > 0 {
		avg := round2(total / float64(stats.Scored))
		stats.AverageScore = &avg
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
