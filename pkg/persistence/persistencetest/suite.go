// Package persistencetest holds the behaviour every persistence.Persistence
// implementation must share, run against each store from its own tests.
package persistencetest

import (
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) persistence.Persistence) {
	t.Helper()

	t.Run("save and load keep the document", func(t *testing.T) {
		store := newStore(t)
		workflow := testutil.CreateTestWorkflowWithNodes()

		require.NoError(t, store.SaveWorkflow(t.Context(), workflow))
		assert.False(t, workflow.CreatedAt.IsZero())
		assert.False(t, workflow.UpdatedAt.IsZero())

		loaded, err := store.WorkflowByID(t.Context(), workflow.ID)
		require.NoError(t, err)

		assert.Equal(t, workflow.ID, loaded.ID)
		assert.Equal(t, workflow.Name, loaded.Name)
		assert.Equal(t, workflow.Description, loaded.Description)
		assert.Equal(t, workflow.Owner, loaded.Owner)
		assert.Equal(t, models.WorkflowStatusDraft, loaded.Status)
		assert.Equal(t, workflow.Document, loaded.Document)
		assert.Nil(t, loaded.PublishedAt)
	})

	t.Run("save replaces and keeps created_at", func(t *testing.T) {
		store := newStore(t)
		created := time.Date(2024, 11, 5, 10, 0, 0, 0, time.UTC)
		workflow := testutil.CreateTestWorkflowWithNodes(func(w *models.Workflow) { w.CreatedAt = created })

		require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

		workflow.Name = "Renamed"
		workflow.Document.Nodes = workflow.Document.Nodes[:1]
		workflow.Document.Edges = []models.Edge{}
		publishedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		workflow.Status = models.WorkflowStatusPublished
		workflow.PublishedAt = &publishedAt

		require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

		loaded, err := store.WorkflowByID(t.Context(), workflow.ID)
		require.NoError(t, err)

		assert.Equal(t, "Renamed", loaded.Name)
		assert.Len(t, loaded.Document.Nodes, 1)
		assert.Empty(t, loaded.Document.Edges)
		assert.True(t, created.Equal(loaded.CreatedAt))
		assert.True(t, loaded.UpdatedAt.After(created))
		assert.Equal(t, models.WorkflowStatusPublished, loaded.Status)
		require.NotNil(t, loaded.PublishedAt)
		assert.True(t, publishedAt.Equal(*loaded.PublishedAt))
	})

	t.Run("missing workflow", func(t *testing.T) {
		store := newStore(t)

		workflow, err := store.WorkflowByID(t.Context(), "00000000-0000-0000-0000-000000000000")
		assert.Nil(t, workflow)
		assert.True(t, persistence.IsWorkflowNotFound(err))

		err = store.DeleteWorkflow(t.Context(), "00000000-0000-0000-0000-000000000000")
		assert.True(t, persistence.IsWorkflowNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		workflow := testutil.CreateTestWorkflow()

		require.NoError(t, store.SaveWorkflow(t.Context(), workflow))
		require.NoError(t, store.DeleteWorkflow(t.Context(), workflow.ID))

		_, err := store.WorkflowByID(t.Context(), workflow.ID)
		assert.True(t, persistence.IsWorkflowNotFound(err))

		result, err := store.ListWorkflows(t.Context(), persistence.ListWorkflowsOptions{})
		require.NoError(t, err)
		assert.Empty(t, result.Workflows)
	})

	t.Run("list filters and paginates", func(t *testing.T) {
		store := newStore(t)
		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		for i, name := range []string{"Alpha", "Bravo", "Charlie"} {
			workflow := testutil.CreateTestWorkflow(func(w *models.Workflow) {
				w.Name = name
				w.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			})
			if name == "Bravo" {
				workflow.Owner = "someone-else"
			}

			require.NoError(t, store.SaveWorkflow(t.Context(), workflow))
		}

		result, err := store.ListWorkflows(t.Context(), persistence.ListWorkflowsOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.TotalCount)
		assert.True(t, result.HasNextPage)
		require.Len(t, result.Workflows, 2)
		assert.Equal(t, "Charlie", result.Workflows[0].Name)
		assert.Equal(t, "Bravo", result.Workflows[1].Name)

		result, err = store.ListWorkflows(t.Context(), persistence.ListWorkflowsOptions{
			Owner:     "test-user",
			SortBy:    persistence.SortByName,
			SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalCount)
		assert.False(t, result.HasNextPage)
		require.Len(t, result.Workflows, 2)
		assert.Equal(t, "Alpha", result.Workflows[0].Name)
		assert.Equal(t, "Charlie", result.Workflows[1].Name)
	})

	t.Run("list rejects unknown sort fields", func(t *testing.T) {
		store := newStore(t)

		_, err := store.ListWorkflows(t.Context(), persistence.ListWorkflowsOptions{SortBy: "name; DROP TABLE workflows; --"})
		assert.True(t, persistence.IsInvalidSortField(err))
	})

	t.Run("health check", func(t *testing.T) {
		store := newStore(t)

		assert.NoError(t, store.HealthCheck(t.Context()))
	})
}
