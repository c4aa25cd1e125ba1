package payrollhandler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrms/internal/domain/payroll"
	"hrms/internal/domain/search"
	"hrms/internal/platform/email"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in payroll.Input) (payroll.Ledger, error)
	Update(ctx context.Context, id int64, in payroll.Input) (payroll.Ledger, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (payroll.Ledger, error)
	Search(ctx context.Context, c payroll.Criteria, page search.Page) (search.Result[payroll.Ledger], error)
	Calculate(ctx context.Context, id int64) (payroll.Ledger, error)
	Approve(ctx context.Context, id int64) (payroll.Ledger, error)
	Cancel(ctx context.Context, id int64) (payroll.Ledger, error)
	ProcessPayment(ctx context.Context, id int64, in payroll.PaymentInput) (payroll.Ledger, error)
	ChangeStatus(ctx context.Context, id int64, to payroll.Status) (payroll.Ledger, error)
	Payslip(ctx context.Context, id int64) ([]byte, error)
	GenerateForPeriod(ctx context.Context, period string) (payroll.GenerateResult, error)
	PeriodSummary(ctx context.Context, period string) (payroll.PeriodSummary, error)
	NotifyPaid(ctx context.Context, period string) (email.BulkResult, error)
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
	// PayGuard wraps the payment route, typically with idempotency replay.
	PayGuard func(http.Handler) http.Handler
}

func NewHandler(service Service, logger *zap.Logger, payGuard func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Logger: logger, PayGuard: payGuard}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/ledgers", h.handleSearch)
		r.Post("/ledgers", h.handleCreate)
		r.Get("/ledgers/{id}", h.handleGet)
		r.Put("/ledgers/{id}", h.handleUpdate)
		r.Delete("/ledgers/{id}", h.handleDelete)
		r.Post("/ledgers/{id}/calculate", h.transition(h.Service.Calculate))
		r.Post("/ledgers/{id}/approve", h.transition(h.Service.Approve))
		r.Post("/ledgers/{id}/cancel", h.transition(h.Service.Cancel))
		r.Put("/ledgers/{id}/status", h.handleChangeStatus)
		r.Get("/ledgers/{id}/payslip", h.handlePayslip)
		if h.PayGuard != nil {
			r.With(h.PayGuard).Post("/ledgers/{id}/pay", h.handlePay)
		} else {
			r.Post("/ledgers/{id}/pay", h.handlePay)
		}

		r.Post("/periods/{period}/generate", h.handleGenerate)
		r.Get("/periods/{period}/summary", h.handleSummary)
		r.Post("/periods/{period}/notify", h.handleNotify)
	})
}

func criteriaFromQuery(r *http.Request) (payroll.Criteria, error) {
	q := shared.NewQuery(r.URL.Query())
	c := payroll.Criteria{
		EmployeeID:   q.Int64("employeeId"),
		DepartmentID: q.Int64("departmentId"),
		PeriodFrom:   q.String("periodFrom"),
		PeriodTo:     q.String("periodTo"),
		NetMin:       q.Decimal("netMin"),
		NetMax:       q.Decimal("netMax"),
	}
	if raw := q.String("status"); raw != "" {
		status, ok := payroll.ParseStatus(raw)
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
	var payload payroll.Input
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
		var payload payroll.Input
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

func (h *Handler) transition(fn func(context.Context, int64) (payroll.Ledger, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shared.WithID(w, r, "id", func(id int64) (any, error) { return fn(r.Context(), id) })
	}
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload statusPayload
		if err := shared.DecodeJSON(r, &payload); err != nil {
			return nil, err
		}
		to, ok := payroll.ParseStatus(payload.Status)
		if !ok {
			return nil, payroll.ErrInvalidStatus
		}
		return h.Service.ChangeStatus(r.Context(), id, to)
	})
}

// handlePay accepts an empty body as "pay today with a generated reference".
func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	shared.WithID(w, r, "id", func(id int64) (any, error) {
		var payload payroll.PaymentInput
		if r.ContentLength != 0 {
			if err := shared.DecodeJSON(r, &payload); err != nil {
				return nil, err
			}
		}
		return h.Service.ProcessPayment(r.Context(), id, payload)
	})
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	pdf, err := h.Service.Payslip(r.Context(), id)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payslip-%d.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.Logger.Warn("payslip write failed", zap.Int64("ledgerId", id), zap.Error(err))
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.GenerateForPeriod(r.Context(), chi.URLParam(r, "period"))
	shared.Respond(w, r, result, err)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.PeriodSummary(r.Context(), chi.URLParam(r, "period"))
	shared.Respond(w, r, summary, err)
}

func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.NotifyPaid(r.Context(), chi.URLParam(r, "period"))
	shared.Respond(w, r, result, err)
}
