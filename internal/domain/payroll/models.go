package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ledger struct {
	ID                  int64               `json:"id"`
	EmployeeID          int64               `json:"employeeId"`
	EmployeeNumber      string              `json:"employeeNumber,omitempty"`
	EmployeeName        string              `json:"employeeName,omitempty"`
	EmployeeEmail       string              `json:"-"`
	DepartmentName      string              `json:"departmentName,omitempty"`
	PayPeriod           string              `json:"payPeriod"`
	BaseSalary          decimal.NullDecimal `json:"baseSalary"`
	Overtime            decimal.NullDecimal `json:"overtime"`
	Bonus               decimal.NullDecimal `json:"bonus"`
	Allowances          decimal.NullDecimal `json:"allowances"`
	TaxDeductions       decimal.NullDecimal `json:"taxDeductions"`
	InsuranceDeductions decimal.NullDecimal `json:"insuranceDeductions"`
	OtherDeductions     decimal.NullDecimal `json:"otherDeductions"`
	GrossSalary         decimal.NullDecimal `json:"grossSalary"`
	TotalDeductions     decimal.NullDecimal `json:"totalDeductions"`
	NetSalary           decimal.NullDecimal `json:"netSalary"`
	Status              Status              `json:"status"`
	PaymentDate         *time.Time          `json:"paymentDate,omitempty"`
	PaymentReference    string              `json:"paymentReference,omitempty"`
	Notes               string              `json:"notes"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// Input is the create/update payload. Derived amounts are never accepted
// from clients.
type Input struct {
	EmployeeID          int64               `json:"employeeId" validate:"required,gt=0"`
	PayPeriod           string              `json:"payPeriod" validate:"required"`
	BaseSalary          decimal.NullDecimal `json:"baseSalary"`
	Overtime            decimal.NullDecimal `json:"overtime"`
	Bonus               decimal.NullDecimal `json:"bonus"`
	Allowances          decimal.NullDecimal `json:"allowances"`
	TaxDeductions       decimal.NullDecimal `json:"taxDeductions"`
	InsuranceDeductions decimal.NullDecimal `json:"insuranceDeductions"`
	OtherDeductions     decimal.NullDecimal `json:"otherDeductions"`
	Notes               string              `json:"notes" validate:"max=1000"`
}

func (in Input) apply(l *Ledger) {
	l.EmployeeID = in.EmployeeID
	l.PayPeriod = in.PayPeriod
	l.BaseSalary = in.BaseSalary
	l.Overtime = in.Overtime
	l.Bonus = in.Bonus
	l.Allowances = in.Allowances
	l.TaxDeductions = in.TaxDeductions
	l.InsuranceDeductions = in.InsuranceDeductions
	l.OtherDeductions = in.OtherDeductions
	l.Notes = in.Notes
}

type PaymentInput struct {
	Reference string `json:"reference" validate:"max=100"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ActiveEmployee is what period generation needs to seed a ledger.
type ActiveEmployee struct {
	ID     int64
	Salary decimal.Decimal
}

type GenerateResult struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

type StatusTotal struct {
	Status     Status          `json:"status"`
	Count      int             `json:"count"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

type PeriodSummary struct {
	Period          string          `json:"period"`
	LedgerCount     int             `json:"ledgerCount"`
	TotalGross      decimal.Decimal `json:"totalGross"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	TotalNet        decimal.Decimal `json:"totalNet"`
	ByStatus        []StatusTotal   `json:"byStatus"`
}
