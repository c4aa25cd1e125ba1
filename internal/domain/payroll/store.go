package payroll

import (
	"context"
	"errors"

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

const ledgerFrom = `
    FROM payroll_ledgers l
    JOIN employees e ON e.id = l.employee_id
    JOIN departments d ON d.id = e.department_id
`

const ledgerSelect = `
    SELECT l.id, l.employee_id, e.employee_number, e.first_name || ' ' || e.last_name,
           COALESCE(e.email, ''), d.name, l.pay_period,
           l.base_salary, l.overtime, l.bonus, l.allowances,
           l.tax_deductions, l.insurance_deductions, l.other_deductions,
           l.gross_salary, l.total_deductions, l.net_salary,
           l.status, l.payment_date, COALESCE(l.payment_reference, ''), l.notes,
           l.created_at, l.updated_at
` + ledgerFrom

func scanLedger(row pgx.Row) (Ledger, error) {
	var l Ledger
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.EmployeeNumber, &l.EmployeeName,
		&l.EmployeeEmail, &l.DepartmentName, &l.PayPeriod,
		&l.BaseSalary, &l.Overtime, &l.Bonus, &l.Allowances,
		&l.TaxDeductions, &l.InsuranceDeductions, &l.OtherDeductions,
		&l.GrossSalary, &l.TotalDeductions, &l.NetSalary,
		&l.Status, &l.PaymentDate, &l.PaymentReference, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collect(rows pgx.Rows) ([]Ledger, error) {
	defer rows.Close()
	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, l Ledger) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_ledgers (
      employee_id, pay_period, base_salary, overtime, bonus, allowances,
      tax_deductions, insurance_deductions, other_deductions,
      gross_salary, total_deductions, net_salary, status, notes
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id
  `,
		l.EmployeeID, l.PayPeriod, l.BaseSalary, l.Overtime, l.Bonus, l.Allowances,
		l.TaxDeductions, l.InsuranceDeductions, l.OtherDeductions,
		l.GrossSalary, l.TotalDeductions, l.NetSalary, string(l.Status), l.Notes,
	).Scan(&id)
	return id, apperr.FromPG(err)
}

func (s *Store) Get(ctx context.Context, id int64) (Ledger, error) {
	l, err := scanLedger(s.DB.QueryRow(ctx, ledgerSelect+" WHERE l.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ledger{}, ErrNotFound
	}
	return l, err
}

func (s *Store) Update(ctx context.Context, l Ledger) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_ledgers
    SET employee_id = $1, pay_period = $2, base_salary = $3, overtime = $4, bonus = $5, allowances = $6,
        tax_deductions = $7, insurance_deductions = $8, other_deductions = $9,
        gross_salary = $10, total_deductions = $11, net_salary = $12,
        status = $13, payment_date = $14, payment_reference = $15, notes = $16, updated_at = now()
    WHERE id = $17
  `,
		l.EmployeeID, l.PayPeriod, l.BaseSalary, l.Overtime, l.Bonus, l.Allowances,
		l.TaxDeductions, l.InsuranceDeductions, l.OtherDeductions,
		l.GrossSalary, l.TotalDeductions, l.NetSalary,
		string(l.Status), l.PaymentDate, db.NullIfEmpty(l.PaymentReference), l.Notes, l.ID,
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
	tag, err := s.DB.Exec(ctx, "DELETE FROM payroll_ledgers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, employeeID int64, period string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM payroll_ledgers WHERE employee_id = $1 AND pay_period = $2
  `, employeeID, period).Scan(&count)
	return count > 0, err
}

func (s *Store) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE id = $1", id).Scan(&count)
	return count > 0, err
}

func (s *Store) Search(ctx context.Context, spec search.Spec, page search.Page) ([]Ledger, int, error) {
	where, args := search.Where(spec)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) "+ledgerFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, pageArgs := page.LimitOffset(args)
	rows, err := s.DB.Query(ctx, ledgerSelect+where+" "+page.OrderBy(sortColumns, "l.id")+" "+paging, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]ActiveEmployee, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, salary FROM employees WHERE status = 'ACTIVE' ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActiveEmployee
	for rows.Next() {
		var e ActiveEmployee
		if err := rows.Scan(&e.ID, &e.Salary); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) EmployeesWithLedger(ctx context.Context, period string) (map[int64]bool, error) {
	rows, err := s.DB.Query(ctx, "SELECT employee_id FROM payroll_ledgers WHERE pay_period = $1", period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *Store) PeriodTotals(ctx context.Context, period string) ([]StatusTotal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1),
           COALESCE(SUM(gross_salary), 0), COALESCE(SUM(total_deductions), 0), COALESCE(SUM(net_salary), 0)
    FROM payroll_ledgers
    WHERE pay_period = $1
    GROUP BY status
    ORDER BY status
  `, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusTotal
	for rows.Next() {
		var t StatusTotal
		if err := rows.Scan(&t.Status, &t.Count, &t.Gross, &t.Deductions, &t.Net); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) PaidLedgers(ctx context.Context, period string) ([]Ledger, error) {
	rows, err := s.DB.Query(ctx, ledgerSelect+" WHERE l.pay_period = $1 AND l.status = 'PAID' ORDER BY l.id", period)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}
