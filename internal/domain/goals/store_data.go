package goals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const goalColumns = "id::text, user_id::text, title, description, category, priority, progress, status, due_date, completed_date, created_at, updated_at"

// Store is the PostgreSQL implementation of StoreAPI.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var due, completed *time.Time
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.Priority, &g.Progress, &g.Status, &due, &completed, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrNotFound
	}
	if err != nil {
		return Goal{}, err
	}
	g.DueDate = formatDate(due)
	g.CompletedDate = formatDate(completed)
	return g, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Store) Create(ctx context.Context, goal *Goal) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO goals (user_id, title, description, category, priority, progress, status, due_date, completed_date, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id::text
  `, goal.UserID, goal.Title, goal.Description, goal.Category, goal.Priority, goal.Progress, goal.Status,
		parseDate(goal.DueDate), parseDate(goal.CompletedDate), goal.CreatedAt, goal.UpdatedAt).Scan(&goal.ID)
}

func (s *Store) Get(ctx context.Context, id string) (Goal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Goal{}, ErrNotFound
	}
	return scanGoal(s.DB.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", id))
}

func (s *Store) ListByOwner(ctx context.Context, userID string) ([]Goal, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []Goal{}, nil
	}
	rows, err := s.DB.Query(ctx, "SELECT "+goalColumns+" FROM goals WHERE user_id = $1 ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, goal Goal) error {
	if _, err := uuid.Parse(goal.ID); err != nil {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET title = $1, description = $2, category = $3, priority = $4, progress = $5, status = $6,
        due_date = $7, completed_date = $8, updated_at = $9
    WHERE id = $10
  `, goal.Title, goal.Description, goal.Category, goal.Priority, goal.Progress, goal.Status,
		parseDate(goal.DueDate), parseDate(goal.CompletedDate), goal.UpdatedAt, goal.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM goals WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkOverdue(ctx context.Context, today string, now time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET status = $1, updated_at = $2
    WHERE due_date < $3::date AND progress < 100 AND status NOT IN ($4, $1)
  `, StatusOverdue, now, today, StatusCompleted)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
