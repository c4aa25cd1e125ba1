package department

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/platform/apperr"
	"hrms/internal/platform/validate"
)

type Service struct {
	store  StoreAPI
	logger *zap.Logger
}

func NewService(store StoreAPI, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create inserts the department and then fills in its path, which needs the
// generated id.
func (s *Service) Create(ctx context.Context, in CreateInput) (Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return Department{}, err
	}

	var id int64
	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		taken, err := store.NameExists(ctx, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}

		parentPath := ""
		var parent Department
		if in.ParentID != nil {
			parent, err = store.Get(ctx, *in.ParentID)
			if err != nil {
				return parentErr(err)
			}
			parentPath = parent.DepPath
		}

		enabled := true
		if in.Enabled != nil {
			enabled = *in.Enabled
		}
		id, err = store.Create(ctx, Department{Name: in.Name, ParentID: in.ParentID, Enabled: enabled})
		if err != nil {
			return err
		}
		if err := store.UpdatePath(ctx, id, PathFor(parentPath, id)); err != nil {
			return err
		}
		if in.ParentID != nil && !parent.IsParent {
			return store.SetIsParent(ctx, parent.ID, true)
		}
		return nil
	})
	if err != nil {
		return Department{}, err
	}

	s.logger.Info("department created", zap.Int64("departmentId", id), zap.String("name", in.Name))
	return s.store.Get(ctx, id)
}

// Update renames and/or moves a department. A move rewrites the path of
// every descendant and refreshes isParent on both the old and new parent.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Department, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
		if trimmed == "" {
			return Department{}, apperr.WithDetails(apperr.KindValidation, "payload validation failed", map[string]any{"fields": map[string]string{"name": "is required"}})
		}
	}
	if err := validate.Struct(in); err != nil {
		return Department{}, err
	}

	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		d, err := store.Get(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil && *in.Name != d.Name {
			taken, err := store.NameExists(ctx, *in.Name, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrNameTaken
			}
			d.Name = *in.Name
		}
		if in.Enabled != nil {
			d.Enabled = *in.Enabled
		}

		if !in.ParentID.Set || sameParent(d.ParentID, in.ParentID.ID) {
			return store.Update(ctx, d)
		}
		return s.move(ctx, store, d, in.ParentID.ID)
	})
	if err != nil {
		return Department{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) move(ctx context.Context, store StoreAPI, d Department, newParentID *int64) error {
	parentPath := ""
	var parent Department
	if newParentID != nil {
		if *newParentID == d.ID {
			return ErrSelfParent
		}
		var err error
		parent, err = store.Get(ctx, *newParentID)
		if err != nil {
			return parentErr(err)
		}
		cycle, err := wouldCreateCycle(ctx, store, d.ID, *newParentID)
		if err != nil {
			return err
		}
		if cycle {
			return ErrCycle
		}
		parentPath = parent.DepPath
	}

	oldParentID := d.ParentID
	oldPath := d.DepPath
	d.ParentID = newParentID
	d.DepPath = PathFor(parentPath, d.ID)
	if err := store.Update(ctx, d); err != nil {
		return err
	}
	if err := rewriteDescendantPaths(ctx, store, d); err != nil {
		return err
	}

	if oldParentID != nil {
		if err := refreshIsParent(ctx, store, *oldParentID); err != nil {
			return err
		}
	}
	if newParentID != nil && !parent.IsParent {
		if err := store.SetIsParent(ctx, parent.ID, true); err != nil {
			return err
		}
	}

	s.logger.Info("department moved",
		zap.Int64("departmentId", d.ID),
		zap.String("from", oldPath),
		zap.String("to", d.DepPath),
	)
	return nil
}

// wouldCreateCycle walks up from the candidate parent, reading each ancestor
// from the store, and reports whether it reaches the department being moved.
func wouldCreateCycle(ctx context.Context, store StoreAPI, departmentID, candidateParentID int64) (bool, error) {
	current := &candidateParentID
	for current != nil {
		if *current == departmentID {
			return true, nil
		}
		ancestor, err := store.Get(ctx, *current)
		if err != nil {
			return false, fmt.Errorf("load ancestor %d: %w", *current, err)
		}
		current = ancestor.ParentID
	}
	return false, nil
}

func rewriteDescendantPaths(ctx context.Context, store StoreAPI, parent Department) error {
	children, err := store.ListChildren(ctx, parent.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		child.DepPath = PathFor(parent.DepPath, child.ID)
		if err := store.UpdatePath(ctx, child.ID, child.DepPath); err != nil {
			return err
		}
		if err := rewriteDescendantPaths(ctx, store, child); err != nil {
			return err
		}
	}
	return nil
}

func refreshIsParent(ctx context.Context, store StoreAPI, id int64) error {
	count, err := store.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	return store.SetIsParent(ctx, id, count > 0)
}

// Delete removes a leaf department with no employees.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(store StoreAPI) error {
		d, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		children, err := store.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return ErrHasChildren
		}
		employees, err := store.CountEmployees(ctx, id)
		if err != nil {
			return err
		}
		if employees > 0 {
			return ErrHasEmployees
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		if d.ParentID != nil {
			return refreshIsParent(ctx, store, *d.ParentID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("department deleted", zap.Int64("departmentId", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Department, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Department, error) {
	return s.store.List(ctx)
}

func (s *Service) Children(ctx context.Context, id int64) ([]Department, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListChildren(ctx, id)
}

// Subtree returns every descendant of id, ordered by path.
func (s *Service) Subtree(ctx context.Context, id int64) ([]Department, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListByPathPrefix(ctx, d.DepPath)
	if err != nil {
		return nil, err
	}
	out := make([]Department, 0, len(all))
	for _, item := range all {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out, nil
}

// Tree returns the root departments with children nested.
func (s *Service) Tree(ctx context.Context) ([]Department, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

func BuildTree(all []Department) []Department {
	byParent := make(map[int64][]Department)
	var roots []Department
	for _, d := range all {
		if d.ParentID == nil {
			roots = append(roots, d)
			continue
		}
		byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
	}
	var attach func(nodes []Department) []Department
	attach = func(nodes []Department) []Department {
		for i := range nodes {
			if kids, ok := byParent[nodes[i].ID]; ok {
				nodes[i].Children = attach(kids)
			}
		}
		return nodes
	}
	if roots == nil {
		return []Department{}
	}
	return attach(roots)
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func parentErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrParentNotFound
	}
	return err
}
