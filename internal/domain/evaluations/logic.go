package evaluations

import "time"

func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func ValidType(t string) bool   { return contains(Types, t) }
func ValidStatus(s string) bool { return contains(Statuses, s) }
func ValidQuestion(q Question) bool {
	return q.Question != "" && contains(QuestionTypes, q.Type)
}

// InitialStatus is scheduled for a review planned after today and pending
// otherwise.
func InitialStatus(scheduledDate, today string) string {
	if scheduledDate != "" && scheduledDate > today {
		return StatusScheduled
	}
	return StatusPending
}

// CanTransition reports whether an evaluation may move from one status to
// another. Completed is terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusScheduled:
		return to == StatusPending || to == StatusCompleted
	case StatusPending:
		return to == StatusCompleted
	}
	return false
}

func Complete(e *Evaluation, today string) {
	e.Status = StatusCompleted
	e.Progress = 100
	e.CompletedDate = today
}

func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

func (e Evaluation) IsParticipant(userID string) bool {
	return userID != "" && (e.UserID == userID || e.ReviewerID == userID || e.RevieweeID == userID)
}

// RedactFor hides the reviewer from the reviewee of an anonymous review.
func (e Evaluation) RedactFor(userID string) Evaluation {
	if e.Anonymous && userID == e.RevieweeID && userID != e.ReviewerID {
		e.ReviewerID = ""
		if e.UserID != userID {
			e.UserID = ""
		}
	}
	return e
}
