package reportshandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/reports"
	"hrms/internal/domain/search"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Dashboard(ctx context.Context, period string) (reports.Dashboard, error)
	JobRuns(ctx context.Context, f reports.JobRunFilter, page search.Page) (search.Result[reports.JobRun], error)
	JobRun(ctx context.Context, id int64) (reports.JobRun, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/job-runs", h.handleListJobRuns)
		r.Get("/job-runs/{id}", h.handleGetJobRun)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context(), r.URL.Query().Get("period"))
	shared.Respond(w, r, d, err)
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	q := shared.NewQuery(r.URL.Query())
	filter := reports.JobRunFilter{
		JobType:     q.String("jobType"),
		Statuses:    splitList(q.String("status")),
		StartedFrom: q.Date("from"),
		StartedTo:   q.Date("to"),
	}
	if err := q.Err(); err != nil {
		shared.Fail(w, r, err)
		return
	}
	page := shared.ParsePage(r)
	if page.Sort == "" {
		page.Sort, page.Desc = "startedAt", true
	}
	result, err := h.Service.JobRuns(r.Context(), filter, page)
	shared.Respond(w, r, result, err)
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		return h.Service.JobRun(r.Context(), id)
	})
}

// splitList reads a comma separated query value.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
