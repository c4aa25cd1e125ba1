package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
	"hrms/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) Create(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (user_id, type, title, body)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, n.UserID, n.Type, n.Title, n.Body).Scan(&id)
	return id, apperr.FromPG(err)
}

func (s *Store) List(ctx context.Context, userID int64, unreadOnly bool, page search.Page) ([]Notification, int, error) {
	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND read_at IS NULL"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications "+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, args := page.LimitOffset([]any{userID})
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, type, title, body, read_at, created_at
    FROM notifications `+where+`
    ORDER BY created_at DESC, id DESC `+paging, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, userID int64) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND read_at IS NULL", userID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE user_id = $1 AND id = $2
  `, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE notifications SET read_at = now() WHERE user_id = $1 AND read_at IS NULL", userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) Recipient(ctx context.Context, userID int64) (Recipient, error) {
	var r Recipient
	err := s.DB.QueryRow(ctx, "SELECT id, username, email FROM users WHERE id = $1 AND enabled", userID).Scan(&r.UserID, &r.Username, &r.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipient{}, ErrUserNotFound
	}
	return r, err
}

func (s *Store) EmployeeUsers(ctx context.Context, employeeID int64) ([]Recipient, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, username, email FROM users WHERE employee_id = $1 AND enabled ORDER BY id", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.UserID, &r.Username, &r.Email); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, m Message) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO chat_messages (from_user_id, to_user_id, content)
    VALUES ($1,$2,$3)
    RETURNING id
  `, m.FromUserID, m.ToUserID, m.Content).Scan(&id)
	return id, apperr.FromPG(err)
}

const conversationWhere = `WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)`

func (s *Store) Conversation(ctx context.Context, userID, otherID int64, page search.Page) ([]Message, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM chat_messages "+conversationWhere, userID, otherID).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, args := page.LimitOffset([]any{userID, otherID})
	rows, err := s.DB.Query(ctx, `
    SELECT id, from_user_id, to_user_id, content, read_at, created_at
    FROM chat_messages `+conversationWhere+`
    ORDER BY created_at DESC, id DESC `+paging, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Content, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (s *Store) MarkConversationRead(ctx context.Context, userID, otherID int64) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE chat_messages SET read_at = now()
    WHERE to_user_id = $1 AND from_user_id = $2 AND read_at IS NULL
  `, userID, otherID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) CountUnreadMessages(ctx context.Context, userID int64) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM chat_messages WHERE to_user_id = $1 AND read_at IS NULL", userID).Scan(&total)
	return total, err
}
