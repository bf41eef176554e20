package goals

import (
	"context"
	"strings"
	"time"

	"perfeval/internal/domain/identity"
)

type Service struct {
	Store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, in CreateInput) (Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Goal{}, ErrTitleRequired
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return Goal{}, ErrInvalidPriority
	}
	if in.Status != "" && !ValidStatus(in.Status) {
		return Goal{}, ErrInvalidStatus
	}
	if in.Progress < 0 || in.Progress > 100 {
		return Goal{}, ErrInvalidProgress
	}
	if err := checkDate(in.DueDate); err != nil {
		return Goal{}, err
	}

	now := s.now().UTC()
	goal := Goal{
		UserID:      actor.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Priority:    priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ApplyProgress(&goal, in.Progress, in.Status, Today(now))
	if err := s.Store.Create(ctx, &goal); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

// List returns the goals owned by ownerID, defaulting to the caller. Only
// managers and hr may look at someone else's goals.
func (s *Service) List(ctx context.Context, actor identity.Identity, ownerID string) ([]Goal, error) {
	if ownerID == "" {
		ownerID = actor.UserID
	}
	if ownerID != actor.UserID && !actor.IsPrivileged() {
		return nil, ErrForbidden
	}
	goals, err := s.Store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []Goal{}
	}
	return goals, nil
}

func (s *Service) Get(ctx context.Context, actor identity.Identity, id string) (Goal, error) {
	goal, err := s.Store.Get(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if goal.UserID != actor.UserID && !actor.IsPrivileged() {
		return Goal{}, ErrForbidden
	}
	return goal, nil
}

func (s *Service) Update(ctx context.Context, actor identity.Identity, id string, patch Patch) (Goal, error) {
	goal, err := s.Store.Get(ctx, id)
	if err != nil {
		return Goal{}, err
	}
	if goal.UserID != actor.UserID {
		return Goal{}, ErrForbidden
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Goal{}, ErrTitleRequired
		}
		goal.Title = title
	}
	if patch.Description != nil {
		goal.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		goal.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Priority != nil {
		if !ValidPriority(*patch.Priority) {
			return Goal{}, ErrInvalidPriority
		}
		goal.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		if err := checkDate(*patch.DueDate); err != nil {
			return Goal{}, err
		}
		goal.DueDate = *patch.DueDate
	}

	if patch.Progress != nil || patch.Status != nil {
		progress := goal.Progress
		if patch.Progress != nil {
			if *patch.Progress < 0 || *patch.Progress > 100 {
				return Goal{}, ErrInvalidProgress
			}
			progress = *patch.Progress
		}
		status := ""
		if patch.Status != nil {
			if !ValidStatus(*patch.Status) {
				return Goal{}, ErrInvalidStatus
			}
			status = *patch.Status
		}
		ApplyProgress(&goal, progress, status, Today(s.now()))
	}

	goal.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, goal); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Identity, id string) error {
	goal, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if goal.UserID != actor.UserID {
		return ErrForbidden
	}
	return s.Store.Delete(ctx, id)
}

// SweepOverdue marks open goals past their due date as overdue.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	now := s.now()
	return s.Store.MarkOverdue(ctx, Today(now), now.UTC())
}

func checkDate(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return ErrInvalidDueDate
	}
	return nil
}
