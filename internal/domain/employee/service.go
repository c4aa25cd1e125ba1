package employee

import (
	"context"

	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/email"
	"hrms/internal/platform/validate"
)

// TemplateSender delivers a rendered email template. *email.Sender
// satisfies it.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to, subject, template string, vars map[string]any) error
}

type Service struct {
	store   StoreAPI
	welcome TemplateSender
	logger  *zap.Logger
}

func NewService(store StoreAPI, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// WithWelcome makes Create send the welcome email to new employees that
// have an address.
func (s *Service) WithWelcome(sender TemplateSender) *Service {
	s.welcome = sender
	return s
}

func (s *Service) Create(ctx context.Context, in Input) (Employee, error) {
	e, err := s.prepare(ctx, in, 0)
	if err != nil {
		return Employee{}, err
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	s.logger.Info("employee created", zap.Int64("employeeId", id), zap.String("employeeNumber", e.EmployeeNumber))

	created, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	s.sendWelcome(ctx, created)
	return created, nil
}

func (s *Service) sendWelcome(ctx context.Context, e Employee) {
	if s.welcome == nil || e.Email == "" {
		return
	}
	vars := map[string]any{
		"Name":           e.FullName(),
		"EmployeeNumber": e.EmployeeNumber,
		"HireDate":       e.HireDate.Format(DateLayout),
		"Department":     e.DepartmentName,
	}
	if err := s.welcome.SendTemplate(ctx, e.Email, "Welcome to the team", email.TemplateWelcome, vars); err != nil {
		s.logger.Warn("welcome email failed", zap.Int64("employeeId", e.ID), zap.Error(err))
	}
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Employee, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return Employee{}, err
	}
	e, err := s.prepare(ctx, in, id)
	if err != nil {
		return Employee{}, err
	}
	e.ID = id
	if err := s.store.Update(ctx, e); err != nil {
		return Employee{}, err
	}
	return s.store.Get(ctx, id)
}

// prepare validates in and runs the uniqueness and reference checks.
// excludeID is the employee being updated, zero on create.
func (s *Service) prepare(ctx context.Context, in Input, excludeID int64) (Employee, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return Employee{}, err
	}
	e, err := in.toEmployee()
	if err != nil {
		return Employee{}, err
	}

	taken, err := s.store.NumberExists(ctx, e.EmployeeNumber, excludeID)
	if err != nil {
		return Employee{}, err
	}
	if taken {
		return Employee{}, ErrNumberTaken
	}
	if e.Email != "" {
		taken, err := s.store.EmailExists(ctx, e.Email, excludeID)
		if err != nil {
			return Employee{}, err
		}
		if taken {
			return Employee{}, ErrEmailTaken
		}
	}

	ok, err := s.store.DepartmentExists(ctx, e.DepartmentID)
	if err != nil {
		return Employee{}, err
	}
	if !ok {
		return Employee{}, ErrDepartmentNotFound
	}
	if e.PositionID != nil {
		ok, err := s.store.PositionExists(ctx, *e.PositionID)
		if err != nil {
			return Employee{}, err
		}
		if !ok {
			return Employee{}, ErrPositionNotFound
		}
	}
	return e, nil
}

// Delete refuses employees that already have payroll history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountLedgers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasLedgers
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.Int64("employeeId", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, c Criteria, page search.Page) (search.Result[Employee], error) {
	spec, err := s.spec(ctx, c)
	if err != nil {
		return search.Result[Employee]{}, err
	}
	items, total, err := s.store.Search(ctx, spec, page)
	if err != nil {
		return search.Result[Employee]{}, err
	}
	return search.NewResult(items, total, page), nil
}

func (s *Service) spec(ctx context.Context, c Criteria) (search.Spec, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	deptPath := ""
	if c.DepartmentID != nil && c.IncludeSubDepartments {
		path, err := s.store.DepartmentPath(ctx, *c.DepartmentID)
		if err != nil {
			return nil, err
		}
		deptPath = path
	}
	return c.Spec(deptPath), nil
}

// all pages through every employee matching c.
func (s *Service) all(ctx context.Context, c Criteria) ([]Employee, error) {
	spec, err := s.spec(ctx, c)
	if err != nil {
		return nil, err
	}
	page := search.Page{Number: 1, Size: search.MaxPageSize, Sort: "employeeNumber"}
	var out []Employee
	for {
		items, total, err := s.store.Search(ctx, spec, page)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) < page.Size || len(out) >= total {
			return out, nil
		}
		page.Number++
	}
}
