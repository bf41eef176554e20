package evaluations

const (
	TypeSelf        = "self-evaluation"
	TypePeer        = "peer-review"
	TypePerformance = "performance-review"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusScheduled = "scheduled"

	QuestionRating   = "rating"
	QuestionText     = "text"
	QuestionMultiple = "multiple-choice"

	DateLayout = "2006-01-02"

	MinScore = 0
	MaxScore = 5
)

var Types = []string{TypeSelf, TypePeer, TypePerformance}

var Statuses = []string{StatusPending, StatusCompleted, StatusScheduled}

var QuestionTypes = []string{QuestionRating, QuestionText, QuestionMultiple}
