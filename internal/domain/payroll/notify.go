package payroll

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/platform/email"
)

func paidVars(l Ledger) map[string]any {
	return map[string]any{
		"Name":       l.EmployeeName,
		"Period":     l.PayPeriod,
		"Gross":      l.GrossSalary.Decimal.StringFixed(2),
		"Deductions": l.TotalDeductions.Decimal.StringFixed(2),
		"Net":        l.NetSalary.Decimal.StringFixed(2),
		"Reference":  l.PaymentReference,
	}
}

func paidSubject(period string) string {
	return "Salary paid for " + period
}

// notifyPaid tells one employee about a payment. Failures are logged and
// never undo the payment.
func (s *Service) notifyPaid(ctx context.Context, l Ledger) {
	if s.notifier != nil {
		body := fmt.Sprintf("Net salary %s paid, reference %s.", l.NetSalary.Decimal.StringFixed(2), l.PaymentReference)
		if err := s.notifier.NotifyEmployee(ctx, l.EmployeeID, NotificationPaid, paidSubject(l.PayPeriod), body); err != nil {
			s.logger.Warn("payroll notification failed", zap.Int64("ledgerId", l.ID), zap.Error(err))
		}
	}
	if s.sender == nil || l.EmployeeEmail == "" {
		return
	}
	if err := s.sender.SendTemplate(ctx, l.EmployeeEmail, paidSubject(l.PayPeriod), email.TemplatePayrollPaid, paidVars(l)); err != nil {
		s.logger.Warn("payroll email failed", zap.Int64("ledgerId", l.ID), zap.Error(err))
	}
}

// NotifyPaid emails every PAID employee of period that has an address.
func (s *Service) NotifyPaid(ctx context.Context, period string) (email.BulkResult, error) {
	period = strings.TrimSpace(period)
	if _, err := ParsePeriod(period); err != nil {
		return email.BulkResult{}, err
	}
	ledgers, err := s.store.PaidLedgers(ctx, period)
	if err != nil {
		return email.BulkResult{}, err
	}
	if s.sender == nil {
		return email.BulkResult{}, nil
	}

	recipients := make([]email.Recipient, 0, len(ledgers))
	for _, l := range ledgers {
		if l.EmployeeEmail == "" {
			continue
		}
		recipients = append(recipients, email.Recipient{Email: l.EmployeeEmail, Vars: paidVars(l)})
	}
	result := s.sender.SendBulk(ctx, recipients, paidSubject(period), email.TemplatePayrollPaid)
	s.logger.Info("payroll period notified",
		zap.String("period", period),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
