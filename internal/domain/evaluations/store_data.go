package evaluations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const evaluationColumns = `id::text, user_id::text, title, type, reviewer_id, reviewee_id, status, priority, progress, score,
  due_date, scheduled_date, completed_date, comments, anonymous, questions, responses, created_at, updated_at`

// Store is the PostgreSQL implementation of StoreAPI. Questions and responses
// live in jsonb columns.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var (
		e                         Evaluation
		due, scheduled, completed *time.Time
		questionsJSON, respJSON   []byte
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Type, &e.ReviewerID, &e.RevieweeID, &e.Status, &e.Priority, &e.Progress, &e.Score,
		&due, &scheduled, &completed, &e.Comments, &e.Anonymous, &questionsJSON, &respJSON, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	e.DueDate = formatDate(due)
	e.ScheduledDate = formatDate(scheduled)
	e.CompletedDate = formatDate(completed)
	if err := json.Unmarshal(questionsJSON, &e.Questions); err != nil {
		return Evaluation{}, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(respJSON, &e.Responses); err != nil {
		return Evaluation{}, fmt.Errorf("decode responses: %w", err)
	}
	return e, nil
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

func encodeLists(e Evaluation) ([]byte, []byte, error) {
	questions := e.Questions
	if questions == nil {
		questions = []Question{}
	}
	responses := e.Responses
	if responses == nil {
		responses = []Response{}
	}
	q, err := json.Marshal(questions)
	if err != nil {
		return nil, nil, err
	}
	r, err := json.Marshal(responses)
	if err != nil {
		return nil, nil, err
	}
	return q, r, nil
}

func (s *Store) Create(ctx context.Context, e *Evaluation) error {
	questions, responses, err := encodeLists(*e)
	if err != nil {
		return err
	}
	return s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (user_id, title, type, reviewer_id, reviewee_id, status, priority, progress, score,
      due_date, scheduled_date, completed_date, comments, anonymous, questions, responses, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
    RETURNING id::text
  `, e.UserID, e.Title, e.Type, e.ReviewerID, e.RevieweeID, e.Status, e.Priority, e.Progress, e.Score,
		parseDate(e.DueDate), parseDate(e.ScheduledDate), parseDate(e.CompletedDate), e.Comments, e.Anonymous,
		questions, responses, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
}

func (s *Store) Get(ctx context.Context, id string) (Evaluation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Evaluation{}, ErrNotFound
	}
	return scanEvaluation(s.DB.QueryRow(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1", id))
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]Evaluation, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+evaluationColumns+" FROM evaluations "+where+" ORDER BY created_at", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListAll(ctx context.Context) ([]Evaluation, error) {
	return s.list(ctx, "")
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]Evaluation, error) {
	return s.list(ctx, "WHERE user_id::text = $1 OR reviewer_id = $1 OR reviewee_id = $1", userID)
}

func (s *Store) Update(ctx context.Context, e Evaluation) error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return ErrNotFound
	}
	questions, responses, err := encodeLists(e)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET title = $1, status = $2, priority = $3, progress = $4, score = $5, due_date = $6, scheduled_date = $7,
        completed_date = $8, comments = $9, anonymous = $10, questions = $11, responses = $12, updated_at = $13
    WHERE id = $14
  `, e.Title, e.Status, e.Priority, e.Progress, e.Score, parseDate(e.DueDate), parseDate(e.ScheduledDate),
		parseDate(e.CompletedDate), e.Comments, e.Anonymous, questions, responses, e.UpdatedAt, e.ID)
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
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluations WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
