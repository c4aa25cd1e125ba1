package payroll

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/email"
	"hrms/internal/platform/metrics"
	"hrms/internal/platform/validate"
)

// Notifier posts an in-app notification to the user linked to an employee.
type Notifier interface {
	NotifyEmployee(ctx context.Context, employeeID int64, kind, title, body string) error
}

type Service struct {
	store    StoreAPI
	sender   *email.Sender
	notifier Notifier
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the ledger workflow. sender and notifier may be nil, in
// which case payment notifications are skipped.
func NewService(store StoreAPI, sender *email.Sender, notifier Notifier, m *metrics.Collector, logger *zap.Logger) *Service {
	return &Service{store: store, sender: sender, notifier: notifier, metrics: m, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, in Input) (Ledger, error) {
	if err := s.checkInput(&in); err != nil {
		return Ledger{}, err
	}
	ok, err := s.store.EmployeeExists(ctx, in.EmployeeID)
	if err != nil {
		return Ledger{}, err
	}
	if !ok {
		return Ledger{}, ErrEmployeeNotFound
	}

	var id int64
	err = s.store.WithTx(ctx, func(store StoreAPI) error {
		taken, err := store.Exists(ctx, in.EmployeeID, in.PayPeriod)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicatePeriod
		}
		l := Ledger{Status: StatusDraft}
		in.apply(&l)
		id, err = store.Create(ctx, Calculate(l))
		return err
	})
	if err != nil {
		return Ledger{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) checkInput(in *Input) error {
	in.PayPeriod = strings.TrimSpace(in.PayPeriod)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if _, err := ParsePeriod(in.PayPeriod); err != nil {
		return err
	}
	var ledger Ledger
	in.apply(&ledger)
	if err := checkComponents(ledger); err != nil {
		return err
	}
	return checkAmounts(ledger)
}

// Update edits a DRAFT or CALCULATED ledger and recalculates it. Editing a
// CALCULATED ledger sends it back to DRAFT.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Ledger, error) {
	if err := s.checkInput(&in); err != nil {
		return Ledger{}, err
	}
	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		l, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		if l.Status != StatusDraft && l.Status != StatusCalculated {
			return ErrNotEditable
		}
		if in.EmployeeID != l.EmployeeID || in.PayPeriod != l.PayPeriod {
			ok, err := store.EmployeeExists(ctx, in.EmployeeID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrEmployeeNotFound
			}
			taken, err := store.Exists(ctx, in.EmployeeID, in.PayPeriod)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicatePeriod
			}
		}
		in.apply(&l)
		l = Calculate(l)
		l.Status = StatusDraft
		return store.Update(ctx, l)
	})
	if err != nil {
		return Ledger{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(store StoreAPI) error {
		l, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		if l.Status != StatusDraft {
			return ErrNotDeletable
		}
		return store.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Ledger, error) {
	return s.store.Get(ctx, id)
}

// Calculate recomputes the derived amounts and moves the ledger to
// CALCULATED.
func (s *Service) Calculate(ctx context.Context, id int64) (Ledger, error) {
	return s.mutate(ctx, id, func(l Ledger) (Ledger, bool, error) {
		next, changed, err := Transition(l, StatusCalculated)
		if err != nil {
			return l, false, err
		}
		calculated := Calculate(next)
		return calculated, changed || !sameAmounts(l, calculated), nil
	})
}

// Approve reconciles the ledger before moving it to APPROVED.
func (s *Service) Approve(ctx context.Context, id int64) (Ledger, error) {
	return s.mutate(ctx, id, func(l Ledger) (Ledger, bool, error) {
		if l.Status == StatusApproved {
			return l, false, nil
		}
		if err := Validate(l); err != nil {
			return l, false, err
		}
		return Transition(l, StatusApproved)
	})
}

func (s *Service) Cancel(ctx context.Context, id int64) (Ledger, error) {
	return s.mutate(ctx, id, func(l Ledger) (Ledger, bool, error) {
		return Transition(l, StatusCancelled)
	})
}

// ProcessPayment marks an APPROVED ledger PAID, stamping the payment date
// (today when omitted) and reference (generated when omitted).
func (s *Service) ProcessPayment(ctx context.Context, id int64, in PaymentInput) (Ledger, error) {
	if err := validate.Struct(in); err != nil {
		return Ledger{}, err
	}
	paidOn := s.now()
	if in.Date != "" {
		parsed, err := time.Parse(DateLayout, in.Date)
		if err != nil {
			return Ledger{}, ErrInvalidDate
		}
		paidOn = parsed
	}
	paidOn = time.Date(paidOn.Year(), paidOn.Month(), paidOn.Day(), 0, 0, 0, 0, time.UTC)
	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		reference = "PAY-" + strings.ToUpper(uuid.NewString()[:8])
	}

	l, err := s.mutate(ctx, id, func(l Ledger) (Ledger, bool, error) {
		if l.Status != StatusApproved {
			return l, false, ErrNotApproved
		}
		if err := Validate(l); err != nil {
			return l, false, err
		}
		next, _, err := Transition(l, StatusPaid)
		if err != nil {
			return l, false, err
		}
		next.PaymentDate = &paidOn
		next.PaymentReference = reference
		return next, true, nil
	})
	if err != nil {
		return Ledger{}, err
	}

	s.logger.Info("payroll ledger paid",
		zap.Int64("ledgerId", l.ID),
		zap.Int64("employeeId", l.EmployeeID),
		zap.String("period", l.PayPeriod),
		zap.String("reference", l.PaymentReference),
	)
	s.notifyPaid(ctx, l)
	return l, nil
}

// ChangeStatus is the generic transition entry point. Targets with their
// own preconditions are routed to the dedicated operation.
func (s *Service) ChangeStatus(ctx context.Context, id int64, to Status) (Ledger, error) {
	switch to {
	case StatusPaid:
		return Ledger{}, ErrUsePayment
	case StatusCalculated:
		return s.Calculate(ctx, id)
	case StatusApproved:
		return s.Approve(ctx, id)
	case StatusDraft, StatusCancelled:
		return s.mutate(ctx, id, func(l Ledger) (Ledger, bool, error) {
			return Transition(l, to)
		})
	default:
		return Ledger{}, ErrInvalidStatus
	}
}

// mutate loads the ledger, applies fn and writes the result when fn reports
// a change, all inside one transaction.
func (s *Service) mutate(ctx context.Context, id int64, fn func(Ledger) (Ledger, bool, error)) (Ledger, error) {
	var out Ledger
	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		l, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		next, changed, err := fn(l)
		if err != nil {
			return err
		}
		out = next
		if !changed {
			return nil
		}
		if next.Status != l.Status {
			s.logger.Info("payroll ledger status changed",
				zap.Int64("ledgerId", id),
				zap.String("from", string(l.Status)),
				zap.String("to", string(next.Status)),
			)
		}
		return store.Update(ctx, next)
	})
	return out, err
}

func sameAmounts(a, b Ledger) bool {
	eq := func(x, y decimal.NullDecimal) bool {
		return x.Valid == y.Valid && x.Decimal.Equal(y.Decimal)
	}
	return eq(a.GrossSalary, b.GrossSalary) && eq(a.TotalDeductions, b.TotalDeductions) && eq(a.NetSalary, b.NetSalary)
}

// GenerateForPeriod creates a DRAFT ledger seeded from the current salary
// for every ACTIVE employee that has none for period.
func (s *Service) GenerateForPeriod(ctx context.Context, period string) (GenerateResult, error) {
	period = strings.TrimSpace(period)
	if _, err := ParsePeriod(period); err != nil {
		return GenerateResult{}, err
	}
	result := GenerateResult{Period: period}

	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		employees, err := store.ActiveEmployees(ctx)
		if err != nil {
			return err
		}
		existing, err := store.EmployeesWithLedger(ctx, period)
		if err != nil {
			return err
		}
		zero := valid(decimal.Zero)
		for _, e := range employees {
			if existing[e.ID] {
				result.Skipped++
				continue
			}
			l := Calculate(Ledger{
				EmployeeID:          e.ID,
				PayPeriod:           period,
				BaseSalary:          valid(e.Salary),
				Overtime:            zero,
				Bonus:               zero,
				Allowances:          zero,
				TaxDeductions:       zero,
				InsuranceDeductions: zero,
				OtherDeductions:     zero,
				Status:              StatusDraft,
			})
			if _, err := store.Create(ctx, l); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return GenerateResult{}, err
	}

	s.metrics.LedgersGenerated(result.Created)
	s.logger.Info("payroll period generated",
		zap.String("period", period),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// GenerateCurrentPeriod is the scheduled job body.
func (s *Service) GenerateCurrentPeriod(ctx context.Context) (any, error) {
	return s.GenerateForPeriod(ctx, PeriodOf(s.now()))
}

func (s *Service) Search(ctx context.Context, c Criteria, page search.Page) (search.Result[Ledger], error) {
	if err := c.Validate(); err != nil {
		return search.Result[Ledger]{}, err
	}
	items, total, err := s.store.Search(ctx, c.Spec(), page)
	if err != nil {
		return search.Result[Ledger]{}, err
	}
	return search.NewResult(items, total, page), nil
}

func (s *Service) PeriodSummary(ctx context.Context, period string) (PeriodSummary, error) {
	period = strings.TrimSpace(period)
	if _, err := ParsePeriod(period); err != nil {
		return PeriodSummary{}, err
	}
	totals, err := s.store.PeriodTotals(ctx, period)
	if err != nil {
		return PeriodSummary{}, err
	}
	summary := PeriodSummary{
		Period:          period,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		ByStatus:        []StatusTotal{},
	}
	for _, t := range totals {
		summary.ByStatus = append(summary.ByStatus, t)
		summary.LedgerCount += t.Count
		if t.Status == StatusCancelled {
			continue
		}
		summary.TotalGross = summary.TotalGross.Add(t.Gross)
		summary.TotalDeductions = summary.TotalDeductions.Add(t.Deductions)
		summary.TotalNet = summary.TotalNet.Add(t.Net)
	}
	return summary, nil
}
