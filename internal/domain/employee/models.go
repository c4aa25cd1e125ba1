package employee

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/validate"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusOnLeave    Status = "ON_LEAVE"
	StatusProbation  Status = "PROBATION"
	StatusTerminated Status = "TERMINATED"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusOnLeave, StatusProbation, StatusTerminated}

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(value)))
	for _, s := range Statuses {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

type Employee struct {
	ID              int64           `json:"id"`
	EmployeeNumber  string          `json:"employeeNumber"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Gender          string          `json:"gender,omitempty"`
	BirthDate       *time.Time      `json:"birthDate,omitempty"`
	HireDate        time.Time       `json:"hireDate"`
	TerminationDate *time.Time      `json:"terminationDate,omitempty"`
	DepartmentID    int64           `json:"departmentId"`
	DepartmentName  string          `json:"departmentName,omitempty"`
	PositionID      *int64          `json:"positionId,omitempty"`
	PositionTitle   string          `json:"positionTitle,omitempty"`
	Status          Status          `json:"status"`
	Salary          decimal.Decimal `json:"salary"`
	BankAccount     string          `json:"bankAccount,omitempty"`
	Address         string          `json:"address,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Input is the create/update payload. Dates travel as YYYY-MM-DD strings.
type Input struct {
	EmployeeNumber  string          `json:"employeeNumber" validate:"required,max=50"`
	FirstName       string          `json:"firstName" validate:"required,max=100"`
	LastName        string          `json:"lastName" validate:"required,max=100"`
	Email           string          `json:"email" validate:"omitempty,email,max=254"`
	Phone           string          `json:"phone" validate:"max=50"`
	Gender          string          `json:"gender" validate:"max=20"`
	BirthDate       string          `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	HireDate        string          `json:"hireDate" validate:"required,datetime=2006-01-02"`
	TerminationDate string          `json:"terminationDate" validate:"omitempty,datetime=2006-01-02"`
	DepartmentID    int64           `json:"departmentId" validate:"required,gt=0"`
	PositionID      *int64          `json:"positionId"`
	Status          string          `json:"status"`
	Salary          decimal.Decimal `json:"salary"`
	BankAccount     string          `json:"bankAccount" validate:"max=100"`
	Address         string          `json:"address" validate:"max=500"`
}

func (in *Input) normalize() {
	in.EmployeeNumber = strings.TrimSpace(in.EmployeeNumber)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.TrimSpace(in.Gender)
}

// toEmployee converts an already tag-validated input. It reports the first
// field that fails the checks tags cannot express.
func (in Input) toEmployee() (Employee, error) {
	e := Employee{
		EmployeeNumber: in.EmployeeNumber,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Gender:         in.Gender,
		DepartmentID:   in.DepartmentID,
		PositionID:     in.PositionID,
		Salary:         in.Salary,
		BankAccount:    in.BankAccount,
		Address:        in.Address,
		Status:         StatusActive,
	}
	if in.Status != "" {
		status, ok := ParseStatus(in.Status)
		if !ok {
			return Employee{}, fieldError("status", "is not a known status")
		}
		e.Status = status
	}
	if reason := validate.Amount(in.Salary); reason != "" {
		return Employee{}, fieldError("salary", reason)
	}

	var err error
	if e.HireDate, err = time.Parse(DateLayout, in.HireDate); err != nil {
		return Employee{}, fieldError("hireDate", "must be YYYY-MM-DD")
	}
	if e.BirthDate, err = optionalDate(in.BirthDate); err != nil {
		return Employee{}, fieldError("birthDate", "must be YYYY-MM-DD")
	}
	if e.TerminationDate, err = optionalDate(in.TerminationDate); err != nil {
		return Employee{}, fieldError("terminationDate", "must be YYYY-MM-DD")
	}
	if e.TerminationDate != nil && e.TerminationDate.Before(e.HireDate) {
		return Employee{}, fieldError("terminationDate", "must not be before hire date")
	}
	return e, nil
}

func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func fieldError(field, reason string) error {
	return apperr.WithDetails(apperr.KindValidation, "payload validation failed", map[string]any{
		"fields": map[string]string{field: reason},
	})
}

var (
	ErrNotFound           = apperr.NotFound("employee not found")
	ErrNumberTaken        = apperr.Conflict("employee number already exists")
	ErrEmailTaken         = apperr.Conflict("employee email already exists")
	ErrDepartmentNotFound = apperr.NotFound("department not found")
	ErrPositionNotFound   = apperr.NotFound("position not found")
	ErrHasLedgers         = apperr.IllegalState("employee has payroll ledgers")
	ErrInvalidRange       = apperr.Validation("range start is after range end")
)
