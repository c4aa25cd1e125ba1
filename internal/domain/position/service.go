package position

import (
	"context"
	"strings"

	"hrms/internal/platform/validate"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in Input) (Position, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return Position{}, err
	}
	taken, err := s.store.TitleExists(ctx, in.Title, 0)
	if err != nil {
		return Position{}, err
	}
	if taken {
		return Position{}, ErrTitleTaken
	}
	p := Position{Title: in.Title, Description: in.Description, Enabled: in.Enabled == nil || *in.Enabled}
	id, err := s.store.Create(ctx, p)
	if err != nil {
		return Position{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (Position, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return Position{}, err
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Position{}, err
	}
	if !strings.EqualFold(p.Title, in.Title) {
		taken, err := s.store.TitleExists(ctx, in.Title, id)
		if err != nil {
			return Position{}, err
		}
		if taken {
			return Position{}, ErrTitleTaken
		}
	}
	p.Title = in.Title
	p.Description = in.Description
	if in.Enabled != nil {
		p.Enabled = *in.Enabled
	}
	if err := s.store.Update(ctx, p); err != nil {
		return Position{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountEmployees(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasEmployees
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Position, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Position, error) {
	return s.store.List(ctx)
}
