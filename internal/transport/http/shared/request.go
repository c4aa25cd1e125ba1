package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/search"
	"hrms/internal/platform/apperr"
)

var (
	ErrInvalidPayload = apperr.Validation("invalid request payload")
	ErrBodyTooLarge   = apperr.Validation("request body too large")
)

// DecodeJSON reads one JSON document into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return ErrInvalidPayload
		}
		return apperr.WithDetails(apperr.KindValidation, ErrInvalidPayload.Message, map[string]any{"reason": err.Error()})
	}
	return nil
}

// IDParam parses a positive int64 URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.KindValidation, "invalid %s", name)
	}
	return id, nil
}

// ParsePage reads page, size, sort and order (asc|desc) from the query.
// Bad numbers fall back to the defaults.
func ParsePage(r *http.Request) search.Page {
	q := r.URL.Query()
	page := search.Page{Sort: strings.TrimSpace(q.Get("sort"))}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Number = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil {
		page.Size = v
	}
	page.Desc = strings.EqualFold(q.Get("order"), "desc")
	return page.Normalize()
}
