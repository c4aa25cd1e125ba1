package employee

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
	"hrms/internal/platform/db"
)

type Store struct {
	DB   db.Querier
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool, pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(StoreAPI) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

const employeeSelect = `
    SELECT e.id, e.employee_number, e.first_name, e.last_name,
           COALESCE(e.email, ''), COALESCE(e.phone, ''), COALESCE(e.gender, ''),
           e.birth_date, e.hire_date, e.termination_date,
           e.department_id, d.name, e.position_id, COALESCE(p.title, ''),
           e.status, e.salary, COALESCE(e.bank_account, ''), COALESCE(e.address, ''),
           e.created_at, e.updated_at
    FROM employees e
    JOIN departments d ON d.id = e.department_id
    LEFT JOIN positions p ON p.id = e.position_id
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.EmployeeNumber, &e.FirstName, &e.LastName,
		&e.Email, &e.Phone, &e.Gender,
		&e.BirthDate, &e.HireDate, &e.TerminationDate,
		&e.DepartmentID, &e.DepartmentName, &e.PositionID, &e.PositionTitle,
		&e.Status, &e.Salary, &e.BankAccount, &e.Address,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (s *Store) Create(ctx context.Context, e Employee) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      employee_number, first_name, last_name, email, phone, gender,
      birth_date, hire_date, termination_date, department_id, position_id,
      status, salary, bank_account, address
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `,
		e.EmployeeNumber, e.FirstName, e.LastName, db.NullIfEmpty(e.Email), db.NullIfEmpty(e.Phone), db.NullIfEmpty(e.Gender),
		e.BirthDate, e.HireDate, e.TerminationDate, e.DepartmentID, e.PositionID,
		string(e.Status), e.Salary, db.NullIfEmpty(e.BankAccount), db.NullIfEmpty(e.Address),
	).Scan(&id)
	return id, apperr.FromPG(err)
}

func (s *Store) Get(ctx context.Context, id int64) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, employeeSelect+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Update(ctx context.Context, e Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1, first_name = $2, last_name = $3, email = $4, phone = $5, gender = $6,
        birth_date = $7, hire_date = $8, termination_date = $9, department_id = $10, position_id = $11,
        status = $12, salary = $13, bank_account = $14, address = $15, updated_at = now()
    WHERE id = $16
  `,
		e.EmployeeNumber, e.FirstName, e.LastName, db.NullIfEmpty(e.Email), db.NullIfEmpty(e.Phone), db.NullIfEmpty(e.Gender),
		e.BirthDate, e.HireDate, e.TerminationDate, e.DepartmentID, e.PositionID,
		string(e.Status), e.Salary, db.NullIfEmpty(e.BankAccount), db.NullIfEmpty(e.Address), e.ID,
	)
	if err != nil {
		return apperr.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return apperr.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Search(ctx context.Context, spec search.Spec, page search.Page) ([]Employee, int, error) {
	where, args := search.Where(spec)

	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees e
    JOIN departments d ON d.id = e.department_id
    `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	paging, pageArgs := page.LimitOffset(args)
	rows, err := s.DB.Query(ctx, employeeSelect+where+" "+page.OrderBy(sortColumns, "e.id")+" "+paging, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (s *Store) NumberExists(ctx context.Context, number string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE employee_number = $1 AND id <> $2
  `, number, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2
  `, email, excludeID).Scan(&count)
	return count > 0, err
}

func (s *Store) ExistingNumbers(ctx context.Context, numbers []string) (map[string]bool, error) {
	return s.existing(ctx, "SELECT employee_number FROM employees WHERE employee_number = ANY($1)", numbers)
}

func (s *Store) ExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	return s.existing(ctx, "SELECT LOWER(email) FROM employees WHERE LOWER(email) = ANY($1)", emails)
}

func (s *Store) existing(ctx context.Context, query string, values []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(values) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, query, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out[value] = true
	}
	return out, rows.Err()
}

func (s *Store) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE id = $1", id).Scan(&count)
	return count > 0, err
}

func (s *Store) PositionExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM positions WHERE id = $1", id).Scan(&count)
	return count > 0, err
}

func (s *Store) DepartmentPath(ctx context.Context, id int64) (string, error) {
	var path string
	err := s.DB.QueryRow(ctx, "SELECT dep_path FROM departments WHERE id = $1", id).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrDepartmentNotFound
	}
	return path, err
}

func (s *Store) DepartmentIDsByName(ctx context.Context) (map[string]int64, error) {
	return s.idsByName(ctx, "SELECT id, name FROM departments")
}

func (s *Store) PositionIDsByName(ctx context.Context) (map[string]int64, error) {
	return s.idsByName(ctx, "SELECT id, title FROM positions")
}

// idsByName keys the result by lower-cased name.
func (s *Store) idsByName(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = id
	}
	return out, rows.Err()
}

func (s *Store) CountLedgers(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll_ledgers WHERE employee_id = $1", id).Scan(&count)
	return count, err
}
