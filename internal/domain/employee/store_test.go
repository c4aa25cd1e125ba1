package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hrms/internal/domain/search"
	"hrms/internal/platform/db/dbtest"
)

func seedDepartment(t *testing.T, pool *pgxpool.Pool, name, parentPath string, parentID *int64) (int64, string) {
	t.Helper()
	ctx := context.Background()
	var id int64
	var path string
	err := pool.QueryRow(ctx, `INSERT INTO departments (name, parent_id) VALUES ($1, $2) RETURNING id`, name, parentID).Scan(&id)
	require.NoError(t, err)
	err = pool.QueryRow(ctx, `
    UPDATE departments SET dep_path = $2 || id::text || '/' WHERE id = $1 RETURNING dep_path
  `, id, parentPath).Scan(&path)
	require.NoError(t, err)
	return id, path
}

func TestStoreSearchAndImport(t *testing.T) {
	pool := dbtest.Open(t)
	svc := NewService(NewStore(pool), zap.NewNop())
	ctx := context.Background()

	financeID, financePath := seedDepartment(t, pool, "Finance", "/", nil)
	accountingID, _ := seedDepartment(t, pool, "Accounting", financePath, &financeID)
	salesID, _ := seedDepartment(t, pool, "Sales", "/", nil)
	_, err := pool.Exec(ctx, `INSERT INTO positions (title) VALUES ('Engineer')`)
	require.NoError(t, err)

	for i, deptID := range []int64{financeID, accountingID, salesID} {
		in := validInput()
		in.EmployeeNumber = fmt.Sprintf("E-%03d", i+1)
		in.Email = ""
		in.DepartmentID = deptID
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	subtree, err := svc.Search(ctx, Criteria{DepartmentID: &financeID, IncludeSubDepartments: true}, search.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, subtree.Total)

	direct, err := svc.Search(ctx, Criteria{DepartmentID: &financeID}, search.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, direct.Total)
	assert.Equal(t, "Finance", direct.Items[0].DepartmentName)

	rejected := workbook(t,
		header(),
		row("E-10", "x@example.com", "Finance", "ACTIVE", "1000"),
		row("E-001", "", "Finance", "ACTIVE", "1000"),
	)
	_, err = svc.Import(ctx, rejected)
	var report *ImportError
	require.True(t, errors.As(err, &report))
	assert.Equal(t, []string{"employee number E-001 already exists"}, report.Rows[0].Errors)

	accepted := workbook(t,
		header(),
		row("E-10", "x@example.com", "Finance", "ACTIVE", "1000"),
		row("E-11", "", "accounting", "PROBATION", "2500.75"),
	)
	result, err := svc.Import(ctx, accepted)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	all, err := svc.Search(ctx, Criteria{}, search.Page{})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total, "the rejected workbook wrote nothing")
}
