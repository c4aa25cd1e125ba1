package notifications

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/validate"
)

// Send delivers a chat message from one user to another.
func (s *Service) Send(ctx context.Context, fromUserID int64, in MessageInput) (Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validate.Struct(in); err != nil {
		return Message{}, err
	}
	if in.ToUserID == fromUserID {
		return Message{}, ErrMessageSelf
	}
	if _, err := s.store.Recipient(ctx, in.ToUserID); err != nil {
		return Message{}, err
	}

	m := Message{FromUserID: fromUserID, ToUserID: in.ToUserID, Content: in.Content}
	id, err := s.store.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, err
	}
	m.ID = id
	s.logger.Debug("chat message sent", zap.Int64("messageId", id), zap.Int64("from", fromUserID), zap.Int64("to", in.ToUserID))
	return m, nil
}

// Conversation lists messages between two users, newest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID int64, page search.Page) (search.Result[Message], error) {
	if _, err := s.store.Recipient(ctx, otherID); err != nil {
		return search.Result[Message]{}, err
	}
	page = page.Normalize()
	items, total, err := s.store.Conversation(ctx, userID, otherID, page)
	if err != nil {
		return search.Result[Message]{}, err
	}
	return search.NewResult(items, total, page), nil
}

// MarkConversationRead marks messages from otherID to userID as read and
// returns how many changed.
func (s *Service) MarkConversationRead(ctx context.Context, userID, otherID int64) (int, error) {
	return s.store.MarkConversationRead(ctx, userID, otherID)
}

func (s *Service) CountUnreadMessages(ctx context.Context, userID int64) (int, error) {
	return s.store.CountUnreadMessages(ctx, userID)
}
