package services

import (
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence/file"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/dukex/leadflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishing_PublishWorkflow(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	bus := newRecordingBus()
	publishing := NewPublishing(store, WithEventBus(bus))
	publishing.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	workflow := testutil.CreateTestWorkflowWithNodes()
	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	published, result, err := publishing.PublishWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)

	assert.True(t, result.IsValid)
	assert.Equal(t, models.WorkflowStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), *published.PublishedAt)

	stored, err := store.WorkflowByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusPublished, stored.Status)
	assert.False(t, stored.IsEditable())

	require.Equal(t, []events.EventType{events.WorkflowPublishedEvent}, bus.PublishedTypes())

	event := bus.Calls[0].Arguments.Get(2).(*events.WorkflowPublished)
	assert.Equal(t, workflow.ID, event.WorkflowID)
	assert.Equal(t, testutil.LeadIntakeDocument(), event.Document)

	_, _, err = publishing.PublishWorkflow(t.Context(), workflow.ID)
	assert.ErrorIs(t, err, ErrAlreadyPublished)
	assert.True(t, IsConflictError(err))
}

func TestPublishing_RefusesGraphWithErrors(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	bus := newRecordingBus()
	publishing := NewPublishing(store, WithEventBus(bus))

	// No trigger: the graph cannot start anywhere.
	workflow := testutil.CreateTestWorkflow(func(w *models.Workflow) {
		w.Document.Nodes = []models.Node{testutil.CreateTestNode(testutil.WithID("action-1"))}
	})
	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	published, result, err := publishing.PublishWorkflow(t.Context(), workflow.ID)
	require.Error(t, err)
	assert.Nil(t, published)

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, IsConflictError(err))

	var publishErr *PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, workflow.ID, publishErr.WorkflowID)
	assert.Len(t, publishErr.Result.ErrorsWithCode(validation.CodeNoTrigger), 1)
	assert.False(t, result.IsValid)

	stored, err := store.WorkflowByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDraft, stored.Status)
	assert.Empty(t, bus.PublishedTypes())
}

func TestPublishing_WarningsDoNotBlock(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	publishing := NewPublishing(store)

	workflow := testutil.CreateTestWorkflowWithNodes(func(w *models.Workflow) {
		w.Document.Nodes = append(w.Document.Nodes, testutil.CreateTestNode(testutil.WithID("stray")))
	})
	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	published, result, err := publishing.PublishWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusPublished, published.Status)
	assert.NotEmpty(t, result.Warnings)
}

func TestPublishing_UnpublishWorkflow(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	publishing := NewPublishing(store)
	editor := NewEditor(store)

	workflow := testutil.CreateTestWorkflowWithNodes()
	require.NoError(t, store.SaveWorkflow(t.Context(), workflow))

	_, err := publishing.UnpublishWorkflow(t.Context(), workflow.ID)
	require.ErrorIs(t, err, ErrNotPublished)

	_, _, err = publishing.PublishWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)

	unpublished, err := publishing.UnpublishWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusUnpublished, unpublished.Status)
	assert.NotNil(t, unpublished.PublishedAt)
	assert.True(t, unpublished.IsEditable())

	_, err = editor.RemoveNode(t.Context(), workflow.ID, "action-2")
	require.NoError(t, err)

	republished, _, err := publishing.PublishWorkflow(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Len(t, republished.Document.Nodes, 3)
}

func TestPublishing_MissingWorkflow(t *testing.T) {
	publishing := NewPublishing(file.NewPersistence(t.TempDir()))

	_, _, err := publishing.PublishWorkflow(t.Context(), "missing")
	assert.True(t, IsNotFoundError(err))

	_, err = publishing.UnpublishWorkflow(t.Context(), "missing")
	assert.True(t, IsNotFoundError(err))
}
