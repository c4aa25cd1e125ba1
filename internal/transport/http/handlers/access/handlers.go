package accesshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	ListRoles(ctx context.Context) ([]auth.Role, error)
	CreateRole(ctx context.Context, in auth.RoleInput) (auth.Role, error)
	UpdateRole(ctx context.Context, id int64, in auth.RoleInput) (auth.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	SetRoleResources(ctx context.Context, roleID int64, in auth.IDsInput) ([]auth.Resource, error)
	ListResources(ctx context.Context) ([]auth.Resource, error)
	CreateResource(ctx context.Context, in auth.ResourceInput) (auth.Resource, error)
	UpdateResource(ctx context.Context, id int64, in auth.ResourceInput) (auth.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	SetUserRoles(ctx context.Context, userID int64, in auth.IDsInput) (auth.User, error)
	CheckPermission(ctx context.Context, userID int64, urlPath, method string) (bool, error)
	CheckRole(ctx context.Context, userID int64, role string) (bool, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.handleListRoles)
		r.Post("/", h.handleCreateRole)
		r.Put("/{id}", h.handleUpdateRole)
		r.Delete("/{id}", h.handleDeleteRole)
		r.Put("/{id}/resources", h.handleSetRoleResources)
	})
	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.handleListResources)
		r.Post("/", h.handleCreateResource)
		r.Put("/{id}", h.handleUpdateResource)
		r.Delete("/{id}", h.handleDeleteResource)
	})
	r.Put("/users/{id}/roles", h.handleSetUserRoles)
	r.Get("/users/{id}/permissions/check", h.handleCheckPermission)
	r.Get("/users/{id}/roles/{role}", h.handleCheckRole)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	shared.Respond(w, r, roles, err)
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var payload auth.RoleInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	role, err := h.Service.CreateRole(r.Context(), payload)
	shared.RespondCreated(w, r, role, err)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload auth.RoleInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return h.Service.UpdateRole(r.Context(), id, payload)
	})
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		if err := h.Service.DeleteRole(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}

func (h *Handler) handleSetRoleResources(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload auth.IDsInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return h.Service.SetRoleResources(r.Context(), id, payload)
	})
}

func (h *Handler) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Service.ListResources(r.Context())
	shared.Respond(w, r, resources, err)
}

func (h *Handler) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var payload auth.ResourceInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	resource, err := h.Service.CreateResource(r.Context(), payload)
	shared.RespondCreated(w, r, resource, err)
}

func (h *Handler) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload auth.ResourceInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return h.Service.UpdateResource(r.Context(), id, payload)
	})
}

func (h *Handler) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		if err := h.Service.DeleteResource(r.Context(), id); err != nil {
			return nil, err
		}
		return map[string]int64{"deleted": id}, nil
	})
}

func (h *Handler) handleSetUserRoles(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload auth.IDsInput
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return h.Service.SetUserRoles(r.Context(), id, payload)
	})
}

type permissionCheck struct {
	URL     string `json:"url"`
	Method  string `json:"method"`
	Allowed bool   `json:"allowed"`
}

func (h *Handler) handleCheckPermission(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		q := shared.NewQuery(r.URL.Query())
		check := permissionCheck{URL: q.String("url"), Method: q.String("method")}
		if check.URL == "" {
			q.Invalid("url", "is required")
		}
		if check.Method == "" {
			check.Method = http.MethodGet
		}
		if err := q.Err(); err != nil {
			return nil, err
		}
		allowed, err := h.Service.CheckPermission(r.Context(), id, check.URL, check.Method)
		check.Allowed = allowed
		return check, err
	})
}

func (h *Handler) handleCheckRole(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		role := chi.URLParam(r, "role")
		member, err := h.Service.CheckRole(r.Context(), id, role)
		return map[string]any{"userId": id, "role": role, "member": member}, err
	})
}
