package search

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 200

	// MaxPageNumber keeps Offset far from int overflow.
	MaxPageNumber = 1_000_000
)

// Page is a 1-based page request passed through to the store.
type Page struct {
	Number int
	Size   int
	Sort   string
	Desc   bool
}

type Result[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

func NewResult[T any](items []T, total int, p Page) Result[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Total: total, Page: p.Number, Size: p.Size}
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Limit() int {
	return p.Normalize().Size
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// OrderBy maps the requested sort key through allowed (API name -> column).
// Unknown keys fall back to fallback so user input never reaches the SQL.
func (p Page) OrderBy(allowed map[string]string, fallback string) string {
	column, ok := allowed[p.Sort]
	if !ok {
		column = fallback
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + column + " " + dir
}

// LimitOffset renders the paging clause with placeholders appended to args.
func (p Page) LimitOffset(args []any) (string, []any) {
	args = append(args, p.Limit(), p.Offset())
	n := len(args)
	return "LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n), args
}
