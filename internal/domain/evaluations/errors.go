package evaluations

import "errors"

var (
	ErrNotFound          = errors.New("evaluation not found")
	ErrForbidden         = errors.New("not allowed to access this evaluation")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidType       = errors.New("invalid evaluation type")
	ErrRevieweeRequired  = errors.New("revieweeId is required for this evaluation type")
	ErrSelfPeerReview    = errors.New("a peer review must target someone else")
	ErrReviewerRole      = errors.New("performance reviews require a manager or hr reviewer")
	ErrInvalidStatus     = errors.New("invalid evaluation status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrInvalidScore      = errors.New("score must be between 0 and 5")
	ErrScoreNotReviewer  = errors.New("only the reviewer may set the score")
	ErrResponsesReviewer = errors.New("only the reviewer may submit responses")
	ErrInvalidDate       = errors.New("dates must be YYYY-MM-DD")
	ErrInvalidQuestion   = errors.New("invalid review question")
)
