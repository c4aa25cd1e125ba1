package employee

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/validate"
)

// Columns is the fixed import/export layout. A trailing * marks a required
// column.
var Columns = []string{
	"Employee Number*", "First Name*", "Last Name*", "Email", "Phone",
	"Gender", "Birth Date", "Hire Date*", "Termination Date",
	"Department*", "Position", "Status*", "Salary*", "Bank Account", "Address",
}

const (
	colNumber = iota
	colFirstName
	colLastName
	colEmail
	colPhone
	colGender
	colBirthDate
	colHireDate
	colTerminationDate
	colDepartment
	colPosition
	colStatus
	colSalary
	colBankAccount
	colAddress
)

const sheetName = "Employees"

var (
	ErrImportRejected = apperr.Validation("import rejected")
	ErrBadWorkbook    = apperr.Validation("file is not a readable xlsx workbook")
	ErrEmptyWorkbook  = apperr.Validation("workbook has no rows")
)

type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportError carries the per-row report of a rejected import.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import rejected: %d row(s) with errors", len(e.Rows))
}

func (e *ImportError) Unwrap() error {
	return ErrImportRejected
}

type ImportResult struct {
	Imported int `json:"imported"`
}

func normalizeHeader(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "*", "")
}

func checkHeader(header []string) error {
	for i, want := range Columns {
		got := ""
		if i < len(header) {
			got = header[i]
		}
		if normalizeHeader(got) != normalizeHeader(want) {
			return apperr.WithDetails(apperr.KindValidation,
				fmt.Sprintf("header column %d is %q, expected %q", i+1, got, want),
				map[string]any{"expected": Columns})
		}
	}
	return nil
}

type parsedRow struct {
	line     int
	employee Employee
}

// Import reads an xlsx workbook and inserts every row, or nothing when any
// row fails.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, ErrBadWorkbook
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return ImportResult{}, ErrEmptyWorkbook
	}
	if err := checkHeader(rows[0]); err != nil {
		return ImportResult{}, err
	}

	departments, err := s.store.DepartmentIDsByName(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	positions, err := s.store.PositionIDsByName(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	var (
		parsed    []parsedRow
		rowErrors = map[int][]string{}
		numbers   = map[string]int{}
		emails    = map[string]int{}
	)
	for i, cells := range rows[1:] {
		line := i + 2
		if blank(cells) {
			continue
		}
		e, errs := parseRow(pad(cells), departments, positions)
		if prev, ok := numbers[e.EmployeeNumber]; ok && e.EmployeeNumber != "" {
			errs = append(errs, fmt.Sprintf("employee number %s repeats row %d", e.EmployeeNumber, prev))
		} else if e.EmployeeNumber != "" {
			numbers[e.EmployeeNumber] = line
		}
		if prev, ok := emails[e.Email]; ok && e.Email != "" {
			errs = append(errs, fmt.Sprintf("email %s repeats row %d", e.Email, prev))
		} else if e.Email != "" {
			emails[e.Email] = line
		}
		if len(errs) > 0 {
			rowErrors[line] = errs
		}
		parsed = append(parsed, parsedRow{line: line, employee: e})
	}
	if len(parsed) == 0 {
		return ImportResult{}, ErrEmptyWorkbook
	}

	existingNumbers, err := s.store.ExistingNumbers(ctx, keys(numbers))
	if err != nil {
		return ImportResult{}, err
	}
	existingEmails, err := s.store.ExistingEmails(ctx, keys(emails))
	if err != nil {
		return ImportResult{}, err
	}
	for _, p := range parsed {
		if existingNumbers[p.employee.EmployeeNumber] {
			rowErrors[p.line] = append(rowErrors[p.line], "employee number "+p.employee.EmployeeNumber+" already exists")
		}
		if p.employee.Email != "" && existingEmails[p.employee.Email] {
			rowErrors[p.line] = append(rowErrors[p.line], "email "+p.employee.Email+" already exists")
		}
	}

	if len(rowErrors) > 0 {
		report := &ImportError{}
		for _, p := range parsed {
			if errs, ok := rowErrors[p.line]; ok {
				report.Rows = append(report.Rows, RowError{Row: p.line, Errors: errs})
			}
		}
		s.logger.Info("employee import rejected", zap.Int("rows", len(parsed)), zap.Int("badRows", len(report.Rows)))
		return ImportResult{}, report
	}

	err = s.store.WithTx(ctx, func(store StoreAPI) error {
		for _, p := range parsed {
			if _, err := store.Create(ctx, p.employee); err != nil {
				return fmt.Errorf("row %d: %w", p.line, err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.logger.Info("employees imported", zap.Int("count", len(parsed)))
	return ImportResult{Imported: len(parsed)}, nil
}

func parseRow(cells []string, departments, positions map[string]int64) (Employee, []string) {
	var errs []string
	required := func(col int) string {
		if cells[col] == "" {
			errs = append(errs, Columns[col]+" is required")
		}
		return cells[col]
	}
	date := func(col int) *time.Time {
		if cells[col] == "" {
			return nil
		}
		parsed, err := time.Parse(DateLayout, cells[col])
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s %q is not a YYYY-MM-DD date", strings.TrimSuffix(Columns[col], "*"), cells[col]))
			return nil
		}
		return &parsed
	}

	e := Employee{
		EmployeeNumber:  required(colNumber),
		FirstName:       required(colFirstName),
		LastName:        required(colLastName),
		Email:           strings.ToLower(cells[colEmail]),
		Phone:           cells[colPhone],
		Gender:          cells[colGender],
		BirthDate:       date(colBirthDate),
		TerminationDate: date(colTerminationDate),
		BankAccount:     cells[colBankAccount],
		Address:         cells[colAddress],
	}

	if required(colHireDate) != "" {
		if hire := date(colHireDate); hire != nil {
			e.HireDate = *hire
		}
	}
	if e.TerminationDate != nil && !e.HireDate.IsZero() && e.TerminationDate.Before(e.HireDate) {
		errs = append(errs, "Termination Date is before Hire Date")
	}

	if name := required(colDepartment); name != "" {
		id, ok := departments[strings.ToLower(name)]
		if !ok {
			errs = append(errs, "department "+name+" does not exist")
		}
		e.DepartmentID = id
	}
	if name := cells[colPosition]; name != "" {
		id, ok := positions[strings.ToLower(name)]
		if !ok {
			errs = append(errs, "position "+name+" does not exist")
		} else {
			e.PositionID = &id
		}
	}

	if value := required(colStatus); value != "" {
		status, ok := ParseStatus(value)
		if !ok {
			errs = append(errs, "status "+value+" is not a known status")
		}
		e.Status = status
	}

	if value := required(colSalary); value != "" {
		salary, err := decimal.NewFromString(value)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("salary %q is not a number", value))
		case validate.Amount(salary) != "":
			errs = append(errs, "salary "+validate.Amount(salary))
		default:
			e.Salary = salary
		}
	}
	return e, append(errs, fieldErrors(cells)...)
}

// fieldErrors runs the API's tag rules over a row's text columns. Missing
// values and dates are reported by parseRow itself.
func fieldErrors(cells []string) []string {
	in := Input{
		EmployeeNumber: cells[colNumber],
		FirstName:      cells[colFirstName],
		LastName:       cells[colLastName],
		Email:          strings.ToLower(cells[colEmail]),
		Phone:          cells[colPhone],
		Gender:         cells[colGender],
		HireDate:       DateLayout,
		DepartmentID:   1,
		BankAccount:    cells[colBankAccount],
		Address:        cells[colAddress],
	}
	fields := validate.Fields(validate.Struct(in))
	names := make([]string, 0, len(fields))
	for name, reason := range fields {
		if reason != "is required" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	errs := make([]string, 0, len(names))
	for _, name := range names {
		errs = append(errs, name+" "+fields[name])
	}
	return errs
}

func pad(cells []string) []string {
	out := make([]string, len(Columns))
	for i := range out {
		if i < len(cells) {
			out[i] = strings.TrimSpace(cells[i])
		}
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Export writes every employee matching c as an xlsx workbook.
func (s *Service) Export(ctx context.Context, c Criteria, w io.Writer) error {
	employees, err := s.all(ctx, c)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return err
	}

	for i, e := range employees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(e)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func exportRow(e Employee) []any {
	return []any{
		e.EmployeeNumber, e.FirstName, e.LastName, e.Email, e.Phone,
		e.Gender, formatDate(e.BirthDate), e.HireDate.Format(DateLayout), formatDate(e.TerminationDate),
		e.DepartmentName, e.PositionTitle, string(e.Status), e.Salary.StringFixed(2), e.BankAccount, e.Address,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
