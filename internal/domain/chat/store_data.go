package chat

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const channelColumns = `c.id, c.name, c.type, c.created_by, c.created_at,
  COALESCE(ARRAY(SELECT m.user_id FROM chat_channel_members m WHERE m.channel_id = c.id ORDER BY m.user_id), '{}')`

const messageColumns = "id::text, channel_id, user_id, user_name, user_avatar, message, type, created_at"

// Store is the PostgreSQL implementation of StoreAPI.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanChannel(row pgx.Row) (Channel, error) {
	var c Channel
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedBy, &c.CreatedAt, &c.Members)
	if errors.Is(err, pgx.ErrNoRows) {
		return Channel{}, ErrNotFound
	}
	return c, err
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.UserName, &m.UserAvatar, &m.Message, &m.Type, &m.Timestamp)
	return m, err
}

func (s *Store) CreateChannel(ctx context.Context, channel Channel) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO chat_channels (id, name, type, created_by, created_at) VALUES ($1,$2,$3,$4,$5)`,
		channel.ID, channel.Name, channel.Type, channel.CreatedBy, channel.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrChannelExists
	}
	if err != nil {
		return err
	}
	for _, member := range channel.Members {
		if _, err := tx.Exec(ctx, `INSERT INTO chat_channel_members (channel_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, channel.ID, member); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GetChannel(ctx context.Context, id string) (Channel, error) {
	return scanChannel(s.DB.QueryRow(ctx, "SELECT "+channelColumns+" FROM chat_channels c WHERE c.id = $1", id))
}

func (s *Store) ListChannels(ctx context.Context, userID string) ([]Channel, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+channelColumns+` FROM chat_channels c
    WHERE c.type = 'public' OR EXISTS (SELECT 1 FROM chat_channel_members m WHERE m.channel_id = c.id AND m.user_id = $1)
    ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Channel{}
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ListChannelViews(ctx context.Context, userID string) ([]ChannelView, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+channelColumns+`, unread.n,
      lm.id::text, lm.channel_id, lm.user_id, lm.user_name, lm.user_avatar, lm.message, lm.type, lm.created_at
    FROM chat_channels c
    CROSS JOIN LATERAL (
      SELECT count(*) AS n FROM chat_messages m
      WHERE m.channel_id = c.id AND m.user_id <> $1
        AND m.created_at > COALESCE((SELECT r.last_read_at FROM chat_reads r WHERE r.channel_id = c.id AND r.user_id = $1), '-infinity')
    ) unread
    LEFT JOIN LATERAL (
      SELECT * FROM chat_messages m WHERE m.channel_id = c.id ORDER BY m.created_at DESC LIMIT 1
    ) lm ON true
    WHERE c.type = 'public' OR EXISTS (SELECT 1 FROM chat_channel_members m WHERE m.channel_id = c.id AND m.user_id = $1)
    ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ChannelView{}
	for rows.Next() {
		var (
			v                                               ChannelView
			id, channelID, author, name, avatar, body, kind *string
			sentAt                                          *time.Time
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Type, &v.CreatedBy, &v.CreatedAt, &v.Members, &v.UnreadCount,
			&id, &channelID, &author, &name, &avatar, &body, &kind, &sentAt); err != nil {
			return nil, err
		}
		if id != nil {
			v.LastMessage = &Message{
				ID: *id, ChannelID: *channelID, UserID: *author, UserName: *name,
				UserAvatar: *avatar, Message: *body, Type: *kind, Timestamp: *sentAt,
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) AddMember(ctx context.Context, channelID, userID string) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO chat_channel_members (channel_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, channelID, userID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}

func (s *Store) DeleteChannel(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM chat_channels WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, msg *Message) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO chat_messages (channel_id, user_id, user_name, user_avatar, message, type, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id::text
  `, msg.ChannelID, msg.UserID, msg.UserName, msg.UserAvatar, msg.Message, msg.Type, msg.Timestamp).Scan(&msg.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}

func (s *Store) ListMessages(ctx context.Context, channelID string, before time.Time, limit int) ([]Message, error) {
	var cursor *time.Time
	if !before.IsZero() {
		cursor = &before
	}
	rows, err := s.DB.Query(ctx, `SELECT `+messageColumns+` FROM (
      SELECT * FROM chat_messages
      WHERE channel_id = $1 AND ($2::timestamptz IS NULL OR created_at < $2)
      ORDER BY created_at DESC LIMIT $3
    ) recent ORDER BY created_at`, channelID, cursor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, channelID, userID string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO chat_reads (channel_id, user_id, last_read_at) VALUES ($1,$2,$3)
    ON CONFLICT (channel_id, user_id) DO UPDATE SET last_read_at = EXCLUDED.last_read_at
  `, channelID, userID, at)
	return err
}

func (s *Store) CountUnread(ctx context.Context, channelID, userID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT count(*) FROM chat_messages m
    WHERE m.channel_id = $1 AND m.user_id <> $2
      AND m.created_at > COALESCE((SELECT r.last_read_at FROM chat_reads r WHERE r.channel_id = $1 AND r.user_id = $2), '-infinity')
  `, channelID, userID).Scan(&n)
	return n, err
}
