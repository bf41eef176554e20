package goals

import "time"

type Goal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Priority      string    `json:"priority"`
	Progress      int       `json:"progress"`
	Status        string    `json:"status"`
	DueDate       string    `json:"dueDate,omitempty"`
	CompletedDate string    `json:"completedDate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Progress    int
	Status      string
	DueDate     string
}

type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Progress    *int
	Status      *string
	DueDate     *string
}
