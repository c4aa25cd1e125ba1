package department

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

type Department struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	ParentID  *int64       `json:"parentId"`
	DepPath   string       `json:"depPath"`
	IsParent  bool         `json:"isParent"`
	Enabled   bool         `json:"enabled"`
	CreatedAt time.Time    `json:"createdAt"`
	Children  []Department `json:"children,omitempty"`
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	ParentID *int64 `json:"parentId"`
	Enabled  *bool  `json:"enabled"`
}

type UpdateInput struct {
	Name     *string  `json:"name" validate:"omitempty,max=100"`
	ParentID ParentID `json:"parentId"`
	Enabled  *bool    `json:"enabled"`
}

// ParentID tells an absent parentId apart from an explicit null, which moves
// the department to the root.
type ParentID struct {
	Set bool
	ID  *int64
}

func (p *ParentID) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.ID = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	p.ID = &id
	return nil
}

func MoveTo(id int64) ParentID {
	return ParentID{Set: true, ID: &id}
}

func MoveToRoot() ParentID {
	return ParentID{Set: true}
}

// PathFor is the materialized path of id under parentPath ("" for a root).
func PathFor(parentPath string, id int64) string {
	if parentPath == "" {
		parentPath = "/"
	}
	return parentPath + strconv.FormatInt(id, 10) + "/"
}
