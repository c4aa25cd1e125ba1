package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrms/internal/platform/validate"
)

func sum(values ...decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v.Valid {
			total = total.Add(v.Decimal)
		}
	}
	return total
}

func computeNet(l Ledger) (gross, deductions, net decimal.Decimal) {
	gross = sum(l.BaseSalary, l.Overtime, l.Bonus, l.Allowances)
	deductions = sum(l.TaxDeductions, l.InsuranceDeductions, l.OtherDeductions)
	return gross, deductions, gross.Sub(deductions)
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Calculate fills the derived amounts. Missing components count as zero.
func Calculate(l Ledger) Ledger {
	gross, deductions, net := computeNet(l)
	l.GrossSalary = valid(gross)
	l.TotalDeductions = valid(deductions)
	l.NetSalary = valid(net)
	return l
}

// Validate reconciles a ledger's stored net against its components.
func Validate(l Ledger) error {
	if err := checkComponents(l); err != nil {
		return err
	}
	if !l.NetSalary.Valid {
		return ErrNetMissing
	}
	if l.NetSalary.Decimal.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNetNegative, l.NetSalary.Decimal)
	}
	if _, _, net := computeNet(l); !net.Equal(l.NetSalary.Decimal) {
		return fmt.Errorf("%w: stored %s, computed %s", ErrNetMismatch, l.NetSalary.Decimal, net)
	}
	return nil
}

type component struct {
	name  string
	value decimal.NullDecimal
}

func components(l Ledger) []component {
	return []component{
		{"baseSalary", l.BaseSalary},
		{"overtime", l.Overtime},
		{"bonus", l.Bonus},
		{"allowances", l.Allowances},
		{"taxDeductions", l.TaxDeductions},
		{"insuranceDeductions", l.InsuranceDeductions},
		{"otherDeductions", l.OtherDeductions},
	}
}

func checkComponents(l Ledger) error {
	for _, c := range components(l) {
		if c.value.Valid && c.value.Decimal.IsNegative() {
			return fmt.Errorf("%w: %s is %s", ErrNegativeComponent, c.name, c.value.Decimal)
		}
	}
	return nil
}

// checkAmounts rejects components and totals that a NUMERIC(14,2) column
// cannot hold.
func checkAmounts(l Ledger) error {
	for _, c := range components(l) {
		if !c.value.Valid {
			continue
		}
		if reason := validate.Amount(c.value.Decimal); reason != "" {
			return fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, c.name, reason)
		}
	}
	gross, deductions, _ := computeNet(l)
	if gross.GreaterThanOrEqual(validate.MaxAmount) || deductions.GreaterThanOrEqual(validate.MaxAmount) {
		return fmt.Errorf("%w: totals must be less than %s", ErrAmountOutOfRange, validate.MaxAmount)
	}
	return nil
}
