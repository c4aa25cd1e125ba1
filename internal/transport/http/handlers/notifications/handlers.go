package notificationshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/notifications"
	"hrms/internal/domain/search"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in notifications.CreateInput) (notifications.Notification, error)
	List(ctx context.Context, userID int64, unreadOnly bool, page search.Page) (search.Result[notifications.Notification], error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	Send(ctx context.Context, fromUserID int64, in notifications.MessageInput) (notifications.Message, error)
	Conversation(ctx context.Context, userID, otherID int64, page search.Page) (search.Result[notifications.Message], error)
	MarkConversationRead(ctx context.Context, userID, otherID int64) (int, error)
	CountUnreadMessages(ctx context.Context, userID int64) (int, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes mounts the caller's own inbox and conversations.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Get("/notifications/unread-count", h.handleUnreadCount)
	r.Post("/notifications/read-all", h.handleMarkAllRead)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
	r.Post("/messages", h.handleSend)
	r.Get("/messages/{userId}", h.handleConversation)
	r.Post("/messages/{userId}/read", h.handleMarkConversationRead)
}

// RegisterAdminRoutes mounts notification creation for arbitrary users.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/notifications", h.handleCreate)
}

// withUser resolves the caller before running fn.
func withUser(w http.ResponseWriter, r *http.Request, fn func(userID int64) (any, error)) {
	principal, err := shared.CurrentUser(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	data, err := fn(principal.UserID)
	shared.Respond(w, r, data, err)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		unread := shared.NewQuery(r.URL.Query()).Bool("unread")
		return h.Service.List(r.Context(), userID, unread, shared.ParsePage(r))
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload notifications.CreateInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	shared.RespondCreated(w, r, created, err)
}

type unreadCounts struct {
	Notifications int `json:"notifications"`
	Messages      int `json:"messages"`
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		var counts unreadCounts
		var err error
		if counts.Notifications, err = h.Service.CountUnread(r.Context(), userID); err != nil {
			return nil, err
		}
		if counts.Messages, err = h.Service.CountUnreadMessages(r.Context(), userID); err != nil {
			return nil, err
		}
		return counts, nil
	})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		id, err := shared.IDParam(r, "id")
		if err != nil {
			return nil, err
		}
		if err := h.Service.MarkRead(r.Context(), userID, id); err != nil {
			return nil, err
		}
		return map[string]int64{"read": id}, nil
	})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		n, err := h.Service.MarkAllRead(r.Context(), userID)
		return map[string]int{"updated": n}, err
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	principal, err := shared.CurrentUser(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	var payload notifications.MessageInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	msg, err := h.Service.Send(r.Context(), principal.UserID, payload)
	shared.RespondCreated(w, r, msg, err)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		otherID, err := shared.IDParam(r, "userId")
		if err != nil {
			return nil, err
		}
		return h.Service.Conversation(r.Context(), userID, otherID, shared.ParsePage(r))
	})
}

func (h *Handler) handleMarkConversationRead(w http.ResponseWriter, r *http.Request) {
	withUser(w, r, func(userID int64) (any, error) {
		otherID, err := shared.IDParam(r, "userId")
		if err != nil {
			return nil, err
		}
		n, err := h.Service.MarkConversationRead(r.Context(), userID, otherID)
		return map[string]int{"updated": n}, err
	})
}
