package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
)

var ErrInvalidRange = apperr.Validation("range start is after range end")

type Service struct {
	store  StoreAPI
	logger *zap.Logger
}

func NewService(store StoreAPI, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record stores e. A failure is logged and swallowed: the audited request
// has already succeeded.
func (s *Service) Record(ctx context.Context, e Event) {
	if err := s.store.Record(ctx, e); err != nil {
		s.logger.Warn("audit record failed",
			zap.String("route", e.Route),
			zap.String("requestId", e.RequestID),
			zap.Error(err),
		)
	}
}

func (f Filter) spec() search.Spec {
	var specs []search.Spec
	if f.ActorID != nil {
		specs = append(specs, search.Eq("a.actor_user_id", *f.ActorID))
	}
	if f.Action != "" {
		specs = append(specs, search.Eq("a.action", strings.ToUpper(f.Action)))
	}
	if f.Route != "" {
		specs = append(specs, search.HasPrefix("a.route", f.Route))
	}
	if f.EntityID != nil {
		specs = append(specs, search.Eq("a.entity_id", *f.EntityID))
	}
	var from, to any
	if f.From != nil {
		from = *f.From
	}
	if f.To != nil {
		to = *f.To
	}
	specs = append(specs, search.Between("a.created_at", from, to))
	return search.And(specs...)
}

func (s *Service) Search(ctx context.Context, f Filter, page search.Page) (search.Result[Event], error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return search.Result[Event]{}, ErrInvalidRange
	}
	items, total, err := s.store.Search(ctx, f.spec(), page)
	if err != nil {
		return search.Result[Event]{}, err
	}
	return search.NewResult(items, total, page), nil
}
