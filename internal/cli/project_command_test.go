package cli

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronotrakr/internal/errors"
)

func TestProjectCommand_Add(t *testing.T) {
	ta := setupTestAppWithMockBusinessAPI(t, "")
	cmd := NewProjectCommand(ta.app)
	ctx := context.Background()

	t.Run("successful project creation", func(t *testing.T) {
		err := cmd.Add(ctx, []string{"Acme"})
		require.NoError(t, err)
		assert.Contains(t, ta.out.String(), "Added project Acme")
		require.Len(t, ta.mock.projects, 1)
	})

	t.Run("validation error is reported", func(t *testing.T) {
		err := cmd.Add(ctx, []string{"  "})
		require.Error(t, err)
		assert.Equal(t, "failed to add project: project name is required", err.Error())
	})

	t.Run("wrong argument count", func(t *testing.T) {
		err := cmd.Add(ctx, []string{})
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
	})
}

func TestProjectCommand_RenameAndDelete(t *testing.T) {
	ta := setupTestAppWithMockBusinessAPI(t, "")
	ta.mock.seed(t, "Acme", "Design", "Review")
	ta.mock.seed(t, "Globex", "Build")
	cmd := NewProjectCommand(ta.app)
	ctx := context.Background()

	require.NoError(t, cmd.Rename(ctx, []string{"acme", "Acme Corp"}))
	assert.Contains(t, ta.out.String(), "Project is now Acme Corp")

	require.NoError(t, cmd.Delete(ctx, []string{"Acme Corp"}))
	assert.Contains(t, ta.out.String(), "Deleted project Acme Corp and its tasks")
	require.Len(t, ta.mock.tasks, 1)
	assert.Equal(t, "Build", ta.mock.tasks[0].Name)

	err := cmd.Delete(ctx, []string{"Acme Corp"})
	require.Error(t, err)
	assert.Equal(t, "failed to delete project: project not found: Acme Corp", err.Error())
}

func TestProjectCommand_List(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		ta := setupTestAppWithMockBusinessAPI(t, "")
		require.NoError(t, NewProjectCommand(ta.app).List(context.Background(), nil))
		assert.Contains(t, ta.out.String(), "No projects yet")
	})

	t.Run("totals per project", func(t *testing.T) {
		ta := setupTestAppWithMockBusinessAPI(t, "")
		ta.mock.seed(t, "Acme", "Design", "Review")
		ta.mock.logTime(t, "Design", 1800)
		ta.mock.logTime(t, "Review", 3600)
		ta.mock.seed(t, "Globex")

		require.NoError(t, NewProjectCommand(ta.app).List(context.Background(), nil))
		out := ta.out.String()
		assert.Contains(t, out, "PROJECT")
		assert.Contains(t, out, "TOTAL")
		assert.Regexp(t, `Acme\s+2\s+01:30`, out)
		assert.Regexp(t, `Globex\s+0\s+00:00`, out)
	})
}

func TestProjectCommand_WarnsWhenChangesAreNotSaved(t *testing.T) {
	ta := setupTestAppWithMockBusinessAPI(t, "")
	ta.mock.persisted = errors.NewDatabaseError("put", stderrors.New("disk full"))

	require.NoError(t, NewProjectCommand(ta.app).Add(context.Background(), []string{"Acme"}))
	assert.Contains(t, ta.out.String(), "Added project Acme")
	assert.Contains(t, ta.errOut.String(), "warning: A storage error occurred")
}
