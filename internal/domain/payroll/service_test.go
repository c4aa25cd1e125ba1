package payroll

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
	"hrms/internal/platform/email"
	"hrms/internal/platform/metrics"
)

type memStore struct {
	nextID    int64
	rows      map[int64]Ledger
	employees map[int64]ActiveEmployee
	emails    map[int64]string
	inactive  map[int64]bool
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 1,
		rows:   map[int64]Ledger{},
		employees: map[int64]ActiveEmployee{
			1: {ID: 1, Salary: decimal.RequireFromString("5000")},
			2: {ID: 2, Salary: decimal.RequireFromString("3200.50")},
			3: {ID: 3, Salary: decimal.RequireFromString("4100")},
		},
		emails:   map[int64]string{1: "one@example.com", 2: "two@example.com"},
		inactive: map[int64]bool{3: true},
	}
}

func (m *memStore) WithTx(_ context.Context, fn func(StoreAPI) error) error {
	snapshot := make(map[int64]Ledger, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.rows = snapshot
		return err
	}
	return nil
}

func (m *memStore) Create(_ context.Context, l Ledger) (int64, error) {
	l.ID = m.nextID
	m.nextID++
	l.EmployeeEmail = m.emails[l.EmployeeID]
	m.rows[l.ID] = l
	m.writes++
	return l.ID, nil
}

func (m *memStore) Get(_ context.Context, id int64) (Ledger, error) {
	l, ok := m.rows[id]
	if !ok {
		return Ledger{}, ErrNotFound
	}
	return l, nil
}

func (m *memStore) Update(_ context.Context, l Ledger) error {
	m.rows[l.ID] = l
	m.writes++
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *memStore) Exists(_ context.Context, employeeID int64, period string) (bool, error) {
	for _, l := range m.rows {
		if l.EmployeeID == employeeID && l.PayPeriod == period {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) EmployeeExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.employees[id]
	return ok, nil
}

func (m *memStore) Search(_ context.Context, _ search.Spec, _ search.Page) ([]Ledger, int, error) {
	var out []Ledger
	for _, l := range m.rows {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memStore) ActiveEmployees(context.Context) ([]ActiveEmployee, error) {
	var out []ActiveEmployee
	for id, e := range m.employees {
		if !m.inactive[id] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) EmployeesWithLedger(_ context.Context, period string) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, l := range m.rows {
		if l.PayPeriod == period {
			out[l.EmployeeID] = true
		}
	}
	return out, nil
}

func (m *memStore) PeriodTotals(_ context.Context, period string) ([]StatusTotal, error) {
	byStatus := map[Status]*StatusTotal{}
	for _, l := range m.rows {
		if l.PayPeriod != period {
			continue
		}
		t, ok := byStatus[l.Status]
		if !ok {
			t = &StatusTotal{Status: l.Status}
			byStatus[l.Status] = t
		}
		t.Count++
		t.Gross = t.Gross.Add(l.GrossSalary.Decimal)
		t.Deductions = t.Deductions.Add(l.TotalDeductions.Decimal)
		t.Net = t.Net.Add(l.NetSalary.Decimal)
	}
	var out []StatusTotal
	for _, t := range byStatus {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (m *memStore) PaidLedgers(_ context.Context, period string) ([]Ledger, error) {
	var out []Ledger
	for _, l := range m.rows {
		if l.PayPeriod == period && l.Status == StatusPaid {
			out = append(out, l)
		}
	}
	return out, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (r *recordingMailer) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

type recordingNotifier struct {
	employees []int64
}

func (r *recordingNotifier) NotifyEmployee(_ context.Context, employeeID int64, _, _, _ string) error {
	r.employees = append(r.employees, employeeID)
	return nil
}

type fixture struct {
	svc      *Service
	store    *memStore
	mailer   *recordingMailer
	notifier *recordingNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	renderer, err := email.NewRenderer()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	notifier := &recordingNotifier{}
	sender := email.NewSender(mailer, renderer, "hr@example.com", 2, zap.NewNop(), nil)
	store := newMemStore()
	svc := NewService(store, sender, notifier, metrics.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC) }
	return fixture{svc: svc, store: store, mailer: mailer, notifier: notifier}
}

func input(employeeID int64, period string) Input {
	return Input{
		EmployeeID:    employeeID,
		PayPeriod:     period,
		BaseSalary:    amount("5000"),
		Bonus:         amount("500"),
		TaxDeductions: amount("1100"),
	}
}

func TestCreateCalculatesAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, l.Status)
	assert.Equal(t, "4400", l.NetSalary.Decimal.String())

	_, err = f.svc.Create(ctx, input(1, "2024-05"))
	assert.ErrorIs(t, err, ErrDuplicatePeriod)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, input(99, "2024-05"))
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = f.svc.Create(ctx, input(1, "05/2024"))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	bad := input(2, "2024-05")
	bad.Overtime = amount("-3")
	_, err = f.svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrNegativeComponent)
}

func TestCreateRejectsUnstorableAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := map[string]func(*Input){
		"sub-cent bonus":      func(in *Input) { in.Bonus = amount("0.005") },
		"base at column max":  func(in *Input) { in.BaseSalary = amount("1000000000000") },
		"gross overflows sum": func(in *Input) { in.BaseSalary, in.Bonus = amount("999999999999"), amount("1") },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := input(1, "2024-06")
			mutate(&in)
			_, err := f.svc.Create(ctx, in)
			assert.ErrorIs(t, err, ErrAmountOutOfRange)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	assert.Empty(t, f.store.rows)
}

func TestFullWorkflowToPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)

	_, err = f.svc.ProcessPayment(ctx, l.ID, PaymentInput{})
	assert.ErrorIs(t, err, ErrNotApproved)

	l, err = f.svc.Calculate(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCalculated, l.Status)

	l, err = f.svc.Approve(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, l.Status)

	l, err = f.svc.ProcessPayment(ctx, l.ID, PaymentInput{Reference: "BANK-42"})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, l.Status)
	assert.Equal(t, "BANK-42", l.PaymentReference)
	require.NotNil(t, l.PaymentDate)
	assert.Equal(t, "2024-05-20", l.PaymentDate.Format(DateLayout))

	assert.Equal(t, []int64{1}, f.notifier.employees)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "one@example.com", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Body, "BANK-42")

	_, err = f.svc.Update(ctx, l.ID, input(1, "2024-05"))
	assert.ErrorIs(t, err, ErrNotEditable)
	assert.ErrorIs(t, f.svc.Delete(ctx, l.ID), ErrNotDeletable)
}

func TestPaymentDefaultsReferenceAndAcceptsDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(2, "2024-05"))
	require.NoError(t, err)
	_, err = f.svc.Calculate(ctx, l.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, l.ID)
	require.NoError(t, err)

	paid, err := f.svc.ProcessPayment(ctx, l.ID, PaymentInput{Date: "2024-05-31"})
	require.NoError(t, err)
	assert.Regexp(t, `^PAY-[0-9A-F]{8}$`, paid.PaymentReference)
	assert.Equal(t, "2024-05-31", paid.PaymentDate.Format(DateLayout))
}

func TestApproveRejectsTamperedNet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)
	l, err = f.svc.Calculate(ctx, l.ID)
	require.NoError(t, err)

	tampered := f.store.rows[l.ID]
	tampered.NetSalary = amount("9999")
	f.store.rows[l.ID] = tampered

	_, err = f.svc.Approve(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNetMismatch)
	assert.Equal(t, StatusCalculated, f.store.rows[l.ID].Status)
}

func TestUpdateSendsCalculatedBackToDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)
	_, err = f.svc.Calculate(ctx, l.ID)
	require.NoError(t, err)

	in := input(1, "2024-05")
	in.Bonus = amount("0")
	updated, err := f.svc.Update(ctx, l.ID, in)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, updated.Status)
	assert.Equal(t, "3900", updated.NetSalary.Decimal.String())

	_, err = f.svc.Create(ctx, input(2, "2024-05"))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, l.ID, input(2, "2024-05"))
	assert.ErrorIs(t, err, ErrDuplicatePeriod)
}

func TestSameStatusIsNoopWithoutWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)

	writes := f.store.writes
	same, err := f.svc.ChangeStatus(ctx, l.ID, StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, same.Status)
	assert.Equal(t, writes, f.store.writes)
}

func TestChangeStatusRouting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, l.ID, StatusPaid)
	assert.ErrorIs(t, err, ErrUsePayment)

	_, err = f.svc.ChangeStatus(ctx, l.ID, StatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	l, err = f.svc.ChangeStatus(ctx, l.ID, StatusCalculated)
	require.NoError(t, err)
	assert.Equal(t, StatusCalculated, l.Status)

	l, err = f.svc.ChangeStatus(ctx, l.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, l.Status)

	_, err = f.svc.ChangeStatus(ctx, l.ID, StatusDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.ChangeStatus(ctx, l.ID, Status("ARCHIVED"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteDraftOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, l.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, l.ID), ErrNotFound)
}

func TestGenerateForPeriodSkipsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, input(1, "2024-06"))
	require.NoError(t, err)

	result, err := f.svc.GenerateForPeriod(ctx, "2024-06")
	require.NoError(t, err)
	assert.Equal(t, GenerateResult{Period: "2024-06", Created: 1, Skipped: 1}, result)

	generated, err := f.store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), generated.EmployeeID)
	assert.Equal(t, StatusDraft, generated.Status)
	assert.Equal(t, "3200.5", generated.NetSalary.Decimal.String())
	assert.True(t, generated.Bonus.Valid)
	require.NoError(t, Validate(generated))

	again, err := f.svc.GenerateForPeriod(ctx, "2024-06")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)

	_, err = f.svc.GenerateForPeriod(ctx, "June")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestGenerateCurrentPeriodUsesClock(t *testing.T) {
	f := newFixture(t)
	details, err := f.svc.GenerateCurrentPeriod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-05", details.(GenerateResult).Period)
}

func TestPeriodSummaryExcludesCancelledFromTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, input(2, "2024-05"))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	summary, err := f.svc.PeriodSummary(ctx, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.LedgerCount)
	assert.Equal(t, "4400", summary.TotalNet.String())
	require.Len(t, summary.ByStatus, 2)
}

func TestNotifyPaidBulkEmails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		l, err := f.svc.Create(ctx, input(id, "2024-04"))
		require.NoError(t, err)
		paid := Calculate(l)
		paid.Status = StatusPaid
		paid.PaymentReference = "REF"
		f.store.rows[l.ID] = paid
	}

	result, err := f.svc.NotifyPaid(ctx, "2024-04")
	require.NoError(t, err)
	assert.Equal(t, email.BulkResult{Sent: 2}, result)
	assert.Len(t, f.mailer.sent, 2)
}

func TestPayslipRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l, err := f.svc.Create(ctx, input(1, "2024-05"))
	require.NoError(t, err)

	_, err = f.svc.Payslip(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNoPayslip)

	_, err = f.svc.Calculate(ctx, l.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, l.ID)
	require.NoError(t, err)

	pdf, err := f.svc.Payslip(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
