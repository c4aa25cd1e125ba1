package audit

import "time"

// Event is one successful mutating API call.
type Event struct {
	ID        int64     `json:"id"`
	ActorID   *int64    `json:"actorId,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Action    string    `json:"action"`
	Route     string    `json:"route"`
	EntityID  *int64    `json:"entityId,omitempty"`
	Status    int       `json:"status"`
	RequestID string    `json:"requestId"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

type Filter struct {
	ActorID  *int64
	Action   string
	Route    string
	EntityID *int64
	From     *time.Time
	To       *time.Time
}
