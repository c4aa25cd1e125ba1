package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()
	for _, path := range [][]string{{"serve"}, {"migrate"}, {"seed"}, {"payroll", "generate"}, {"payroll", "notify"}, {"mail", "test"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestNotifyRequiresPeriod(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"payroll", "notify"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period")
}

func TestBootstrapRejectsMissingDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")

	_, _, err := bootstrap(&RootOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestMailTestWithEmailDisabled(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://unused")
	t.Setenv("EMAIL_ENABLED", "false")

	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"mail", "test", "--to", "ops@example.com"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "nothing sent")
}
