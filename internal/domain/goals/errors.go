package goals

import "errors"

var (
	ErrNotFound        = errors.New("goal not found")
	ErrForbidden       = errors.New("not allowed to access this goal")
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrInvalidStatus   = errors.New("invalid goal status")
	ErrInvalidPriority = errors.New("invalid goal priority")
	ErrTitleRequired   = errors.New("title is required")
)

var ErrInvalidDueDate = errors.New("dueDate must be YYYY-MM-DD")
