package evaluations

import "time"

type Question struct {
	ID       string   `json:"id" bson:"id"`
	Question string   `json:"question" bson:"question"`
	Type     string   `json:"type" bson:"type"`
	Required bool     `json:"required" bson:"required"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`
}

// Response holds either a rating number or free text.
type Response struct {
	QuestionID string `json:"questionId" bson:"questionId"`
	Response   any    `json:"response" bson:"response"`
}

type Evaluation struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`
	ReviewerID    string     `json:"reviewerId,omitempty"`
	RevieweeID    string     `json:"revieweeId"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority,omitempty"`
	Progress      int        `json:"progress"`
	Score         *float64   `json:"score,omitempty"`
	DueDate       string     `json:"dueDate,omitempty"`
	ScheduledDate string     `json:"scheduledDate,omitempty"`
	CompletedDate string     `json:"completedDate,omitempty"`
	Comments      string     `json:"comments,omitempty"`
	Anonymous     bool       `json:"anonymous"`
	Questions     []Question `json:"questions"`
	Responses     []Response `json:"responses"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Title         string
	Type          string
	RevieweeID    string
	Priority      string
	DueDate       string
	ScheduledDate string
	Comments      string
	Anonymous     bool
	Questions     []Question
}

type Patch struct {
	Title         *string
	Priority      *string
	Status        *string
	Progress      *int
	Score         *float64
	DueDate       *string
	ScheduledDate *string
	Comments      *string
	Anonymous     *bool
	Responses     *[]Response
}
