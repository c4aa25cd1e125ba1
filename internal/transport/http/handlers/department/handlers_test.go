package departmenthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/department"
)

type fakeService struct {
	created department.CreateInput
	updated department.UpdateInput
	deleted int64
}

func (f *fakeService) Create(_ context.Context, in department.CreateInput) (department.Department, error) {
	f.created = in
	return department.Department{ID: 5, Name: in.Name, DepPath: "/5/"}, nil
}

func (f *fakeService) Update(_ context.Context, id int64, in department.UpdateInput) (department.Department, error) {
	f.updated = in
	return department.Department{ID: id}, nil
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	if id == 2 {
		return department.ErrHasChildren
	}
	f.deleted = id
	return nil
}

func (f *fakeService) Get(_ context.Context, id int64) (department.Department, error) {
	if id != 5 {
		return department.Department{}, department.ErrNotFound
	}
	return department.Department{ID: 5, Name: "Finance", DepPath: "/5/"}, nil
}

func (f *fakeService) List(context.Context) ([]department.Department, error) {
	return []department.Department{{ID: 5}}, nil
}

func (f *fakeService) Children(context.Context, int64) ([]department.Department, error) {
	return nil, nil
}

func (f *fakeService) Subtree(context.Context, int64) ([]department.Department, error) {
	return []department.Department{{ID: 6, DepPath: "/5/6/"}}, nil
}

func (f *fakeService) Tree(context.Context) ([]department.Department, error) {
	return []department.Department{{ID: 5, Children: []department.Department{{ID: 6}}}}, nil
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewBufferString(body)))
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestCreateAndGet(t *testing.T) {
	svc := &fakeService{}
	h := newRouter(svc)

	code, env := do(t, h, http.MethodPost, "/departments", `{"name":"Finance"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Finance", svc.created.Name)
	assert.Equal(t, "/5/", env["data"].(map[string]any)["depPath"])

	code, _ = do(t, h, http.MethodGet, "/departments/5", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, h, http.MethodGet, "/departments/6", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env["error"].(map[string]any)["code"])

	code, _ = do(t, h, http.MethodGet, "/departments/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUpdateDistinguishesNullParent(t *testing.T) {
	svc := &fakeService{}
	h := newRouter(svc)

	code, _ := do(t, h, http.MethodPut, "/departments/3", `{"parentId":null}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, svc.updated.ParentID.Set)
	assert.Nil(t, svc.updated.ParentID.ID)

	code, _ = do(t, h, http.MethodPut, "/departments/3", `{"name":"Ops"}`)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, svc.updated.ParentID.Set)
}

func TestDeleteMapsIllegalState(t *testing.T) {
	svc := &fakeService{}
	h := newRouter(svc)

	code, env := do(t, h, http.MethodDelete, "/departments/2", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "illegal_state", env["error"].(map[string]any)["code"])

	code, _ = do(t, h, http.MethodDelete, "/departments/3", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(3), svc.deleted)
}

func TestTreeAndSubtree(t *testing.T) {
	h := newRouter(&fakeService{})

	code, env := do(t, h, http.MethodGet, "/departments/tree", "")
	assert.Equal(t, http.StatusOK, code)
	roots := env["data"].([]any)
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].(map[string]any)["children"], 1)

	code, env = do(t, h, http.MethodGet, "/departments/5/subtree", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, env["data"], 1)
}
