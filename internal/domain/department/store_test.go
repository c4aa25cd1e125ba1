package department

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/platform/db/dbtest"
)

func TestStoreTreeLifecycle(t *testing.T) {
	pool := dbtest.Open(t)
	svc := NewService(NewStore(pool), zap.NewNop())
	ctx := context.Background()

	finance, err := svc.Create(ctx, CreateInput{Name: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, PathFor("", finance.ID), finance.DepPath)

	accounting, err := svc.Create(ctx, CreateInput{Name: "Accounting", ParentID: &finance.ID})
	require.NoError(t, err)
	assert.Equal(t, PathFor(finance.DepPath, accounting.ID), accounting.DepPath)

	payables, err := svc.Create(ctx, CreateInput{Name: "Payables", ParentID: &accounting.ID})
	require.NoError(t, err)

	finance, err = svc.Get(ctx, finance.ID)
	require.NoError(t, err)
	assert.True(t, finance.IsParent)

	_, err = svc.Create(ctx, CreateInput{Name: "finance"})
	assert.ErrorIs(t, err, ErrNameTaken)

	subtree, err := svc.Subtree(ctx, finance.ID)
	require.NoError(t, err)
	require.Len(t, subtree, 2)
	assert.Equal(t, accounting.ID, subtree[0].ID)
	assert.Equal(t, payables.ID, subtree[1].ID)

	ops, err := svc.Create(ctx, CreateInput{Name: "Operations"})
	require.NoError(t, err)

	moved, err := svc.Update(ctx, accounting.ID, UpdateInput{ParentID: ParentID{Set: true, ID: &ops.ID}})
	require.NoError(t, err)
	assert.Equal(t, PathFor(ops.DepPath, accounting.ID), moved.DepPath)

	payables, err = svc.Get(ctx, payables.ID)
	require.NoError(t, err)
	assert.Equal(t, PathFor(moved.DepPath, payables.ID), payables.DepPath, "descendant paths follow the move")

	finance, err = svc.Get(ctx, finance.ID)
	require.NoError(t, err)
	assert.False(t, finance.IsParent, "old parent lost its only child")

	_, err = svc.Update(ctx, ops.ID, UpdateInput{ParentID: ParentID{Set: true, ID: &payables.ID}})
	assert.ErrorIs(t, err, ErrCycle)

	require.NoError(t, svc.Delete(ctx, finance.ID))
	_, err = svc.Get(ctx, finance.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
