package employeehandler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrms/internal/domain/employee"
	"hrms/internal/domain/search"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Create(ctx context.Context, in employee.Input) (employee.Employee, error)
	Update(ctx context.Context, id int64, in employee.Input) (employee.Employee, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (employee.Employee, error)
	Search(ctx context.Context, c employee.Criteria, page search.Page) (search.Result[employee.Employee], error)
	Import(ctx context.Context, r io.Reader) (employee.ImportResult, error)
	Export(ctx context.Context, c employee.Criteria, w io.Writer) error
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleSearch)
		r.Post("/", h.handleCreate)
		r.Post("/import", h.handleImport)
		r.Get("/export", h.handleExport)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

// criteriaFromQuery reads the search filters shared by list and export.
func criteriaFromQuery(r *http.Request) (employee.Criteria, error) {
	q := shared.NewQuery(r.URL.Query())
	c := employee.Criteria{
		Name:                  q.String("name"),
		DepartmentID:          q.Int64("departmentId"),
		IncludeSubDepartments: q.Bool("includeSubDepartments"),
		PositionID:            q.Int64("positionId"),
		HiredFrom:             q.Date("hiredFrom"),
		HiredTo:               q.Date("hiredTo"),
		SalaryMin:             q.Decimal("salaryMin"),
		SalaryMax:             q.Decimal("salaryMax"),
	}
	if raw := q.String("status"); raw != "" {
		status, ok := employee.ParseStatus(raw)
		if !ok {
			q.Invalid("status", "unknown status")
		}
		c.Status = status
	}
	return c, q.Err()
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	result, err := h.Service.Search(r.Context(), c, shared.ParsePage(r))
	shared.Respond(w, r, result, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Input
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
		var payload employee.Input
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

// handleImport takes the workbook from the multipart "file" field. A
// rejected import answers 422 with the per-row report.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.Fail(w, r, shared.ErrBodyTooLarge)
			return
		}
		api.Fail(w, http.StatusBadRequest, "validation", "multipart field \"file\" is required", requestID)
		return
	}
	defer file.Close()

	result, err := h.Service.Import(r.Context(), file)
	var report *employee.ImportError
	if errors.As(err, &report) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "import_rejected", report.Error(), map[string]any{"rows": report.Rows}, requestID)
		return
	}
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	h.Logger.Info("employees imported", zap.Int("count", result.Imported), zap.String("requestId", requestID))
	api.Success(w, result, requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	// Render first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.Service.Export(r.Context(), c, &buf); err != nil {
		shared.Fail(w, r, err)
		return
	}
	filename := "employees-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Warn("export write failed", zap.Error(err))
	}
}
