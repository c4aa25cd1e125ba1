package audithandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/search"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Search(ctx context.Context, f audit.Filter, page search.Page) (search.Result[audit.Event], error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit/events", h.handleListEvents)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := shared.NewQuery(r.URL.Query())
	filter := audit.Filter{
		ActorID:  q.Int64("actorId"),
		Action:   q.String("action"),
		Route:    q.String("route"),
		EntityID: q.Int64("entityId"),
		From:     q.Date("from"),
		To:       q.Date("to"),
	}
	if err := q.Err(); err != nil {
		shared.Fail(w, r, err)
		return
	}
	page := shared.ParsePage(r)
	if page.Sort == "" {
		page.Sort, page.Desc = "createdAt", true
	}
	result, err := h.Service.Search(r.Context(), filter, page)
	shared.Respond(w, r, result, err)
}
