package positionhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/position"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in position.Input) (position.Position, error)
	Update(ctx context.Context, id int64, in position.Input) (position.Position, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (position.Position, error)
	List(ctx context.Context) ([]position.Position, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/positions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	shared.Respond(w, r, items, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload position.Input
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	created, err := h.Service.Create(r.Context(), payload)
	shared.RespondCreated(w, r, created, err)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) { return h.Service.Get(r.Context(), id) })
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload position.Input
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return h.Service.Update(r.Context(), id, payload)
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		if err := h.Service.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}
