package departmenthandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/department"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in department.CreateInput) (department.Department, error)
	Update(ctx context.Context, id int64, in department.UpdateInput) (department.Department, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (department.Department, error)
	List(ctx context.Context) ([]department.Department, error)
	Children(ctx context.Context, id int64) ([]department.Department, error)
	Subtree(ctx context.Context, id int64) ([]department.Department, error)
	Tree(ctx context.Context) ([]department.Department, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/tree", h.handleTree)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/children", h.handleChildren)
		r.Get("/{id}/subtree", h.handleSubtree)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	shared.Respond(w, r, items, err)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Tree(r.Context())
	shared.Respond(w, r, items, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload department.CreateInput
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
		var payload department.UpdateInput
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

func (h *Handler) handleChildren(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) { return h.Service.Children(r.Context(), id) })
}

func (h *Handler) handleSubtree(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) { return h.Service.Subtree(r.Context(), id) })
}
