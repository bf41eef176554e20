package goals

import "time"

// Today is the UTC calendar date used for completion and overdue checks.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidPriority(priority string) bool {
	for _, p := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}

// ApplyProgress sets progress and keeps status and completedDate consistent
// with it: 100 means completed today, anything less clears the completion
// and falls back to the requested in-flight status or active. Requesting
// completed is the same as reporting 100.
func ApplyProgress(g *Goal, progress int, requestedStatus string, today string) {
	if requestedStatus == StatusCompleted {
		progress = 100
	}
	if progress >= 100 {
		if g.Status != StatusCompleted || g.CompletedDate == "" {
			g.CompletedDate = today
		}
		g.Progress = 100
		g.Status = StatusCompleted
		return
	}

	if progress < 0 {
		progress = 0
	}
	g.Progress = progress
	g.CompletedDate = ""
	if requestedStatus != "" && ValidStatus(requestedStatus) {
		g.Status = requestedStatus
		return
	}
	g.Status = StatusActive
}

// IsOverdue reports whether the overdue sweep should flag g.
func IsOverdue(g Goal, today string) bool {
	if g.DueDate == "" || g.Progress >= 100 {
		return false
	}
	if g.Status == StatusCompleted || g.Status == StatusOverdue {
		return false
	}
	return g.DueDate < today
}
