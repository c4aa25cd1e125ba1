package shared

import (
	"net/http"

	"hrms/internal/platform/apperr"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
)

// Respond writes data as a 200 envelope, or the error envelope for err.
func Respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	requestID := requestctx.GetRequestID(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, data, requestID)
}

// RespondCreated is Respond with a 201 on success.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any, err error) {
	requestID := requestctx.GetRequestID(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Created(w, data, requestID)
}

// WithID parses the named URL parameter and responds with fn's result.
func WithID(w http.ResponseWriter, r *http.Request, name string, fn func(id int64) (any, error)) {
	id, err := IDParam(r, name)
	if err != nil {
		api.FailErr(w, err, requestctx.GetRequestID(r.Context()))
		return
	}
	data, err := fn(id)
	Respond(w, r, data, err)
}

// Fail writes the error envelope for err.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	api.FailErr(w, err, requestctx.GetRequestID(r.Context()))
}

var ErrUnauthenticated = apperr.New(apperr.KindUnauthorized, "authentication required")

// CurrentUser returns the authenticated principal or an unauthorized error.
func CurrentUser(r *http.Request) (requestctx.Principal, error) {
	p, ok := requestctx.GetPrincipal(r.Context())
	if !ok {
		return requestctx.Principal{}, ErrUnauthenticated
	}
	return p, nil
}
