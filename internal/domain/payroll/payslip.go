package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Payslip renders an APPROVED or PAID ledger as a PDF.
func (s *Service) Payslip(ctx context.Context, id int64) ([]byte, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusApproved && l.Status != StatusPaid {
		return nil, ErrNoPayslip
	}
	return renderPayslip(l)
}

func renderPayslip(l Ledger) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+l.PayPeriod, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", l.EmployeeName, l.EmployeeNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", l.DepartmentName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", l.PayPeriod))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", l.Status))
	pdf.Ln(10)

	line := func(label string, v decimal.NullDecimal) {
		amount := decimal.Zero
		if v.Valid {
			amount = v.Decimal
		}
		pdf.CellFormat(80, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	line("Base salary", l.BaseSalary)
	line("Overtime", l.Overtime)
	line("Bonus", l.Bonus)
	line("Allowances", l.Allowances)
	pdf.SetFont("Helvetica", "B", 12)
	line("Gross", l.GrossSalary)
	pdf.SetFont("Helvetica", "", 12)
	line("Tax", l.TaxDeductions)
	line("Insurance", l.InsuranceDeductions)
	line("Other deductions", l.OtherDeductions)
	pdf.SetFont("Helvetica", "B", 12)
	line("Total deductions", l.TotalDeductions)
	line("Net", l.NetSalary)

	if l.Status == StatusPaid && l.PaymentDate != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Paid on %s, reference %s", l.PaymentDate.Format(DateLayout), l.PaymentReference))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
