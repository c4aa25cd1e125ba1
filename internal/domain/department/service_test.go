package department

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/platform/apperr"
)

type memStore struct {
	nextID    int64
	rows      map[int64]Department
	employees map[int64]int
	gets      int
}

func newMemStore(startID int64) *memStore {
	return &memStore{nextID: startID, rows: map[int64]Department{}, employees: map[int64]int{}}
}

func (m *memStore) WithTx(ctx context.Context, fn func(StoreAPI) error) error { return fn(m) }

func (m *memStore) Create(_ context.Context, d Department) (int64, error) {
	d.ID = m.nextID
	m.nextID++
	d.CreatedAt = time.Now()
	m.rows[d.ID] = d
	return d.ID, nil
}

func (m *memStore) Get(_ context.Context, id int64) (Department, error) {
	m.gets++
	d, ok := m.rows[id]
	if !ok {
		return Department{}, ErrNotFound
	}
	return d, nil
}

func (m *memStore) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, d := range m.rows {
		if strings.EqualFold(d.Name, name) && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Update(_ context.Context, d Department) error {
	if _, ok := m.rows[d.ID]; !ok {
		return ErrNotFound
	}
	m.rows[d.ID] = d
	return nil
}

func (m *memStore) UpdatePath(_ context.Context, id int64, path string) error {
	d := m.rows[id]
	d.DepPath = path
	m.rows[id] = d
	return nil
}

func (m *memStore) SetIsParent(_ context.Context, id int64, isParent bool) error {
	d := m.rows[id]
	d.IsParent = isParent
	m.rows[id] = d
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *memStore) sorted(keep func(Department) bool) []Department {
	var out []Department
	for _, d := range m.rows {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepPath < out[j].DepPath })
	return out
}

func (m *memStore) List(context.Context) ([]Department, error) {
	return m.sorted(func(Department) bool { return true }), nil
}

func (m *memStore) ListChildren(_ context.Context, parentID int64) ([]Department, error) {
	return m.sorted(func(d Department) bool { return d.ParentID != nil && *d.ParentID == parentID }), nil
}

func (m *memStore) ListByPathPrefix(_ context.Context, prefix string) ([]Department, error) {
	return m.sorted(func(d Department) bool { return strings.HasPrefix(d.DepPath, prefix) }), nil
}

func (m *memStore) CountChildren(ctx context.Context, id int64) (int, error) {
	kids, _ := m.ListChildren(ctx, id)
	return len(kids), nil
}

func (m *memStore) CountEmployees(_ context.Context, id int64) (int, error) {
	return m.employees[id], nil
}

func ptr[T any](v T) *T { return &v }

func newService(startID int64) (*Service, *memStore) {
	store := newMemStore(startID)
	return NewService(store, zap.NewNop()), store
}

func TestCreateAssignsMaterializedPath(t *testing.T) {
	svc, _ := newService(5)
	ctx := context.Background()

	finance, err := svc.Create(ctx, CreateInput{Name: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), finance.ID)
	assert.Equal(t, "/5/", finance.DepPath)
	assert.True(t, finance.Enabled)

	accounting, err := svc.Create(ctx, CreateInput{Name: "Accounting", ParentID: ptr(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, "/5/6/", accounting.DepPath)

	parent, err := svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, parent.IsParent)
}

func TestCreateRejectsDuplicateAndMissingParent(t *testing.T) {
	svc, _ := newService(1)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Finance"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "  finance "})
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Create(ctx, CreateInput{Name: "Payroll", ParentID: ptr(int64(99))})
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Create(ctx, CreateInput{Name: "   "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// buildOrg creates 1:/1/, 2:/1/2/, 3:/1/2/3/, 4:/4/.
func buildOrg(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Name: "Head Office"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Finance", ParentID: ptr(int64(1))})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Accounting", ParentID: ptr(int64(2))})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Branch"})
	require.NoError(t, err)
}

func TestMoveRewritesDescendantPaths(t *testing.T) {
	svc, store := newService(1)
	buildOrg(t, svc)
	ctx := context.Background()

	moved, err := svc.Update(ctx, 2, UpdateInput{ParentID: MoveTo(4)})
	require.NoError(t, err)
	assert.Equal(t, "/4/2/", moved.DepPath)
	assert.Equal(t, "/4/2/3/", store.rows[3].DepPath)
	assert.False(t, store.rows[1].IsParent, "old parent lost its only child")
	assert.True(t, store.rows[4].IsParent)

	for _, d := range store.rows {
		assert.True(t, strings.HasSuffix(d.DepPath, PathFor("", d.ID)[1:]))
		if d.ParentID == nil {
			assert.Equal(t, PathFor("", d.ID), d.DepPath)
			continue
		}
		assert.True(t, strings.HasPrefix(d.DepPath, store.rows[*d.ParentID].DepPath))
	}
}

func TestMoveToRoot(t *testing.T) {
	svc, store := newService(1)
	buildOrg(t, svc)

	moved, err := svc.Update(context.Background(), 3, UpdateInput{ParentID: MoveToRoot()})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "/3/", moved.DepPath)
	assert.False(t, store.rows[2].IsParent)
}

func TestMoveRejectsCyclesAndSelf(t *testing.T) {
	svc, store := newService(1)
	buildOrg(t, svc)
	ctx := context.Background()

	_, err := svc.Update(ctx, 1, UpdateInput{ParentID: MoveTo(3)})
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, "/1/", store.rows[1].DepPath)

	_, err = svc.Update(ctx, 2, UpdateInput{ParentID: MoveTo(2)})
	assert.ErrorIs(t, err, ErrSelfParent)

	_, err = svc.Update(ctx, 2, UpdateInput{ParentID: MoveTo(42)})
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestCycleCheckReadsAncestorsFromStore(t *testing.T) {
	svc, store := newService(1)
	buildOrg(t, svc)

	store.gets = 0
	cycle, err := wouldCreateCycle(context.Background(), store, 4, 3)
	require.NoError(t, err)
	assert.False(t, cycle)
	assert.Equal(t, 3, store.gets, "one read per ancestor of the candidate parent")
}

func TestRenameOnly(t *testing.T) {
	svc, _ := newService(1)
	buildOrg(t, svc)
	ctx := context.Background()

	updated, err := svc.Update(ctx, 4, UpdateInput{Name: ptr("Regional Branch")})
	require.NoError(t, err)
	assert.Equal(t, "Regional Branch", updated.Name)
	assert.Equal(t, "/4/", updated.DepPath)

	_, err = svc.Update(ctx, 4, UpdateInput{Name: ptr("Finance")})
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = svc.Update(ctx, 77, UpdateInput{Name: ptr("Nope")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePreconditions(t *testing.T) {
	svc, store := newService(1)
	buildOrg(t, svc)
	ctx := context.Background()

	err := svc.Delete(ctx, 2)
	assert.ErrorIs(t, err, ErrHasChildren)
	assert.Equal(t, apperr.KindIllegalState, apperr.KindOf(err))

	store.employees[3] = 2
	assert.ErrorIs(t, svc.Delete(ctx, 3), ErrHasEmployees)

	store.employees[3] = 0
	require.NoError(t, svc.Delete(ctx, 3))
	assert.False(t, store.rows[2].IsParent)

	assert.ErrorIs(t, svc.Delete(ctx, 3), ErrNotFound)
}

func TestTreeAndSubtree(t *testing.T) {
	svc, _ := newService(1)
	buildOrg(t, svc)
	ctx := context.Background()

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Head Office", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "Accounting", tree[0].Children[0].Children[0].Name)

	sub, err := svc.Subtree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sub, 2)
	assert.Equal(t, int64(2), sub[0].ID)
	assert.Equal(t, int64(3), sub[1].ID)

	kids, err := svc.Children(ctx, 2)
	require.NoError(t, err)
	require.Len(t, kids, 1)

	_, err = svc.Children(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParentIDUnmarshal(t *testing.T) {
	var in UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &in))
	assert.False(t, in.ParentID.Set)

	in = UpdateInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"parentId":null}`), &in))
	assert.True(t, in.ParentID.Set)
	assert.Nil(t, in.ParentID.ID)

	in = UpdateInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"parentId":7}`), &in))
	require.NotNil(t, in.ParentID.ID)
	assert.Equal(t, int64(7), *in.ParentID.ID)
}
