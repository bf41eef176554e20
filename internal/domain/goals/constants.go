package goals

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
	StatusOnTrack   = "on-track"
	StatusBehind    = "behind"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	DateLayout = "2006-01-02"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusOverdue, StatusOnTrack, StatusBehind}

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
