package notifications

import (
	"context"

	"hrms/internal/domain/search"
)

type StoreAPI interface {
	Create(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context, userID int64, unreadOnly bool, page search.Page) ([]Notification, int, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)

	Recipient(ctx context.Context, userID int64) (Recipient, error)
	EmployeeUsers(ctx context.Context, employeeID int64) ([]Recipient, error)

	CreateMessage(ctx context.Context, m Message) (int64, error)
	Conversation(ctx context.Context, userID, otherID int64, page search.Page) ([]Message, int, error)
	MarkConversationRead(ctx context.Context, userID, otherID int64) (int, error)
	CountUnreadMessages(ctx context.Context, userID int64) (int, error)
}
