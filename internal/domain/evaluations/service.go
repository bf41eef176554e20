package evaluations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"perfeval/internal/domain/identity"
)

type Service struct {
	Store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, in CreateInput) (Evaluation, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Evaluation{}, ErrTitleRequired
	}
	if !ValidType(in.Type) {
		return Evaluation{}, ErrInvalidType
	}
	if err := checkDates(in.DueDate, in.ScheduledDate); err != nil {
		return Evaluation{}, err
	}

	reviewee := strings.TrimSpace(in.RevieweeID)
	switch in.Type {
	case TypeSelf:
		reviewee = actor.UserID
	case TypePeer:
		if reviewee == "" {
			return Evaluation{}, ErrRevieweeRequired
		}
		if reviewee == actor.UserID {
			return Evaluation{}, ErrSelfPeerReview
		}
	case TypePerformance:
		if !actor.IsPrivileged() {
			return Evaluation{}, ErrReviewerRole
		}
		if reviewee == "" {
			return Evaluation{}, ErrRevieweeRequired
		}
	}

	questions := make([]Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		q.Question = strings.TrimSpace(q.Question)
		if !ValidQuestion(q) {
			return Evaluation{}, fmt.Errorf("%w: %q", ErrInvalidQuestion, q.Question)
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		questions = append(questions, q)
	}

	now := s.now().UTC()
	evaluation := Evaluation{
		UserID:        actor.UserID,
		Title:         title,
		Type:          in.Type,
		ReviewerID:    actor.UserID,
		RevieweeID:    reviewee,
		Status:        InitialStatus(in.ScheduledDate, Today(now)),
		Priority:      strings.TrimSpace(in.Priority),
		DueDate:       in.DueDate,
		ScheduledDate: in.ScheduledDate,
		Comments:      strings.TrimSpace(in.Comments),
		Anonymous:     in.Anonymous,
		Questions:     questions,
		Responses:     []Response{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Create(ctx, &evaluation); err != nil {
		return Evaluation{}, err
	}
	return evaluation, nil
}

// List returns the evaluations visible to the caller. hr sees every record.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]Evaluation, error) {
	var (
		list []Evaluation
		err  error
	)
	if actor.IsHR() {
		list, err = s.Store.ListAll(ctx)
	} else {
		list, err = s.Store.ListForUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]Evaluation, 0, len(list))
	for _, e := range list {
		out = append(out, e.RedactFor(actor.UserID))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor identity.Identity, id string) (Evaluation, error) {
	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if !e.IsParticipant(actor.UserID) && !actor.IsHR() {
		return Evaluation{}, ErrForbidden
	}
	return e.RedactFor(actor.UserID), nil
}

func (s *Service) Update(ctx context.Context, actor identity.Identity, id string, patch Patch) (Evaluation, error) {
	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if !e.IsParticipant(actor.UserID) {
		return Evaluation{}, ErrForbidden
	}
	isReviewer := actor.UserID == e.ReviewerID

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Evaluation{}, ErrTitleRequired
		}
		e.Title = title
	}
	if patch.Priority != nil {
		e.Priority = strings.TrimSpace(*patch.Priority)
	}
	if patch.Comments != nil {
		e.Comments = strings.TrimSpace(*patch.Comments)
	}
	if patch.Anonymous != nil && *patch.Anonymous != e.Anonymous {
		// The reviewee must never be able to unmask their reviewer.
		if !isReviewer && (actor.UserID != e.UserID || actor.UserID == e.RevieweeID) {
			return Evaluation{}, ErrForbidden
		}
		e.Anonymous = *patch.Anonymous
	}
	if patch.DueDate != nil || patch.ScheduledDate != nil {
		due, scheduled := e.DueDate, e.ScheduledDate
		if patch.DueDate != nil {
			due = *patch.DueDate
		}
		if patch.ScheduledDate != nil {
			scheduled = *patch.ScheduledDate
		}
		if err := checkDates(due, scheduled); err != nil {
			return Evaluation{}, err
		}
		e.DueDate, e.ScheduledDate = due, scheduled
	}
	if patch.Progress != nil {
		if *patch.Progress < 0 || *patch.Progress > 100 {
			return Evaluation{}, ErrInvalidProgress
		}
		if e.Status == StatusCompleted && *patch.Progress != 100 {
			return Evaluation{}, fmt.Errorf("%w: progress of a completed evaluation stays at 100", ErrInvalidTransition)
		}
		e.Progress = *patch.Progress
	}
	if patch.Score != nil {
		if !isReviewer {
			return Evaluation{}, ErrScoreNotReviewer
		}
		if !ValidScore(*patch.Score) {
			return Evaluation{}, ErrInvalidScore
		}
		score := *patch.Score
		e.Score = &score
	}
	if patch.Responses != nil {
		if !isReviewer {
			return Evaluation{}, ErrResponsesReviewer
		}
		e.Responses = append([]Response{}, (*patch.Responses)...)
	}

	now := s.now()
	if patch.Status != nil && *patch.Status != e.Status {
		next := *patch.Status
		if !ValidStatus(next) {
			return Evaluation{}, ErrInvalidStatus
		}
		if !CanTransition(e.Status, next) {
			return Evaluation{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Status, next)
		}
		if next == StatusCompleted {
			Complete(&e, Today(now))
		} else {
			e.Status = next
		}
	}

	e.UpdatedAt = now.UTC()
	if err := s.Store.Update(ctx, e); err != nil {
		return Evaluation{}, err
	}
	return e.RedactFor(actor.UserID), nil
}

// Delete removes an evaluation. Only its creator or reviewer may do so.
func (s *Service) Delete(ctx context.Context, actor identity.Identity, id string) error {
	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if actor.UserID != e.UserID && actor.UserID != e.ReviewerID {
		return ErrForbidden
	}
	return s.Store.Delete(ctx, id)
}

func checkDates(values ...string) error {
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}
