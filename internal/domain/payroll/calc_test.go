package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/platform/apperr"
)

func amount(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func sampleLedger() Ledger {
	return Ledger{
		EmployeeID:          1,
		PayPeriod:           "2024-05",
		BaseSalary:          amount("5000.00"),
		Overtime:            amount("250.50"),
		Bonus:               amount("100"),
		TaxDeductions:       amount("800.25"),
		InsuranceDeductions: amount("120"),
		Status:              StatusDraft,
	}
}

func TestCalculateTreatsMissingAsZero(t *testing.T) {
	l := Calculate(sampleLedger())

	assert.Equal(t, "5350.5", l.GrossSalary.Decimal.String())
	assert.Equal(t, "920.25", l.TotalDeductions.Decimal.String())
	assert.Equal(t, "4430.25", l.NetSalary.Decimal.String())
	assert.True(t, l.NetSalary.Valid)
}

func TestCalculateIsIdempotent(t *testing.T) {
	once := Calculate(sampleLedger())
	twice := Calculate(once)
	assert.True(t, once.NetSalary.Decimal.Equal(twice.NetSalary.Decimal))
	assert.True(t, once.GrossSalary.Decimal.Equal(twice.GrossSalary.Decimal))
	assert.True(t, once.TotalDeductions.Decimal.Equal(twice.TotalDeductions.Decimal))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Calculate(sampleLedger())))

	tests := []struct {
		name   string
		mutate func(*Ledger)
		want   error
	}{
		{"net missing", func(l *Ledger) { l.NetSalary = decimal.NullDecimal{} }, ErrNetMissing},
		{"net mismatch", func(l *Ledger) { l.NetSalary = amount("4430.26") }, ErrNetMismatch},
		{"negative component", func(l *Ledger) { l.Bonus = amount("-1") }, ErrNegativeComponent},
		{"negative net", func(l *Ledger) {
			l.OtherDeductions = amount("10000")
			*l = Calculate(*l)
		}, ErrNetNegative},
		{"component changed after calculation", func(l *Ledger) { l.Allowances = amount("1") }, ErrNetMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := Calculate(sampleLedger())
			tc.mutate(&l)
			err := Validate(l)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, apperr.KindCalculation, apperr.KindOf(err))
		})
	}
}

func TestValidateComparesByValue(t *testing.T) {
	l := Calculate(sampleLedger())
	l.NetSalary = amount("4430.2500")
	assert.NoError(t, Validate(l))
}
