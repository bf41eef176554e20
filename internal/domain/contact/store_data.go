package contact

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL implementation of StoreAPI.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, msg *Message) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO contact_messages (name, email, message, created_at)
    VALUES ($1,$2,$3,$4)
    RETURNING id::text
  `, msg.Name, msg.Email, msg.Message, msg.CreatedAt).Scan(&msg.ID)
}

func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, name, email, message, created_at
    FROM contact_messages ORDER BY created_at DESC LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
