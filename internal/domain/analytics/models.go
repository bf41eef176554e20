package analytics

import "time"

type GoalStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"byStatus"`
	Completed       int            `json:"completed"`
	Overdue         int            `json:"overdue"`
	CompletionRate  float64        `json:"completionRate"`
	AverageProgress float64        `json:"averageProgress"`
}

type ReviewStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"byStatus"`
	ByType       map[string]int `json:"byType"`
	Scored       int            `json:"scored"`
	AverageScore *float64       `json:"averageScore,omitempty"`
}

// Summary aggregates one user's goals and reviews.
type Summary struct {
	UserID      string      `json:"userId"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Goals       GoalStats   `json:"goals"`
	Reviews     ReviewStats `json:"reviews"`
}
