package audit

import (
	"context"

	"github.com/jackc/pgx/v5"

	"hrms/internal/domain/search"
	"hrms/internal/platform/db"
)

type StoreAPI interface {
	Record(ctx context.Context, e Event) error
	Search(ctx context.Context, spec search.Spec, page search.Page) ([]Event, int, error)
}

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

var sortColumns = map[string]string{
	"createdAt": "a.created_at",
	"route":     "a.route",
	"actor":     "u.username",
}

const eventFrom = `
    FROM audit_events a
    LEFT JOIN users u ON u.id = a.actor_user_id
  `

func (s *Store) Record(ctx context.Context, e Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, route, entity_id, status, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, e.ActorID, e.Action, e.Route, e.EntityID, e.Status, e.RequestID, e.IP)
	return err
}

func (s *Store) Search(ctx context.Context, spec search.Spec, page search.Page) ([]Event, int, error) {
	where, args := search.Where(spec)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) "+eventFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	paging, pageArgs := page.LimitOffset(args)
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.actor_user_id, COALESCE(u.username, ''), a.action, a.route, a.entity_id,
           a.status, a.request_id, a.ip, a.created_at
  `+eventFrom+where+" "+page.OrderBy(sortColumns, "a.id")+" "+paging, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var e Event
		err := row.Scan(&e.ID, &e.ActorID, &e.Actor, &e.Action, &e.Route, &e.EntityID,
			&e.Status, &e.RequestID, &e.IP, &e.CreatedAt)
		return e, err
	})
	return events, total, err
}
