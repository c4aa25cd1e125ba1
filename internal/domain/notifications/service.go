package notifications

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/email"
	"hrms/internal/platform/validate"
)

// TemplateSender delivers a rendered email template.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to, subject, template string, vars map[string]any) error
}

type Service struct {
	store  StoreAPI
	mailer TemplateSender
	logger *zap.Logger
}

// New builds the service. A nil mailer keeps notifications in-app only.
func New(store StoreAPI, mailer TemplateSender, logger *zap.Logger) *Service {
	return &Service{store: store, mailer: mailer, logger: logger}
}

// Create stores a notification and, when a mailer is configured, emails a
// copy to the user. Email failures are logged only.
func (s *Service) Create(ctx context.Context, in CreateInput) (Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	if err := validate.Struct(in); err != nil {
		return Notification{}, err
	}
	rcpt, err := s.store.Recipient(ctx, in.UserID)
	if err != nil {
		return Notification{}, err
	}
	n, err := s.insert(ctx, rcpt.UserID, in.Type, in.Title, in.Body)
	if err != nil {
		return Notification{}, err
	}
	s.email(ctx, rcpt, in.Title, in.Body)
	return n, nil
}

func (s *Service) insert(ctx context.Context, userID int64, kind, title, body string) (Notification, error) {
	n := Notification{UserID: userID, Type: kind, Title: title, Body: body}
	id, err := s.store.Create(ctx, n)
	if err != nil {
		return Notification{}, err
	}
	n.ID = id
	return n, nil
}

func (s *Service) email(ctx context.Context, rcpt Recipient, title, body string) {
	if s.mailer == nil || rcpt.Email == "" {
		return
	}
	vars := map[string]any{"Title": title, "Body": body}
	if err := s.mailer.SendTemplate(ctx, rcpt.Email, title, email.TemplateNotification, vars); err != nil {
		s.logger.Warn("notification email failed", zap.Int64("userId", rcpt.UserID), zap.Error(err))
	}
}

// NotifyEmployee writes an in-app notification to every enabled account
// linked to the employee. Callers that email the employee themselves use
// this so the user is not mailed twice.
func (s *Service) NotifyEmployee(ctx context.Context, employeeID int64, kind, title, body string) error {
	users, err := s.store.EmployeeUsers(ctx, employeeID)
	if err != nil {
		return err
	}
	for _, u := range users {
		if _, err := s.insert(ctx, u.UserID, kind, title, body); err != nil {
			return err
		}
	}
	if len(users) == 0 {
		s.logger.Debug("employee has no user account", zap.Int64("employeeId", employeeID))
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, page search.Page) (search.Result[Notification], error) {
	page = page.Normalize()
	items, total, err := s.store.List(ctx, userID, unreadOnly, page)
	if err != nil {
		return search.Result[Notification]{}, err
	}
	return search.NewResult(items, total, page), nil
}

func (s *Service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return s.store.MarkAllRead(ctx, userID)
}
