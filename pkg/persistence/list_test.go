package persistence_test

import (
	"testing"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFixture() []*models.Workflow {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	return []*models.Workflow{
		{ID: "w1", Name: "Zillow intake", Owner: "ana", Status: models.WorkflowStatusDraft, CreatedAt: base, UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "w2", Name: "Open house follow-up", Owner: "ana", Status: models.WorkflowStatusPublished, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "w3", Name: "Cold lead nurture", Owner: "bruno", Status: models.WorkflowStatusDraft, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(result *persistence.WorkflowListResult) []string {
	out := make([]string, 0, len(result.Workflows))
	for _, w := range result.Workflows {
		out = append(out, w.ID)
	}

	return out
}

func TestListWorkflowsOptions_Normalize(t *testing.T) {
	opts, err := persistence.ListWorkflowsOptions{Limit: 500, Offset: -3}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, persistence.DefaultListLimit, opts.Limit)
	assert.Equal(t, 0, opts.Offset)
	assert.Equal(t, persistence.SortByCreatedAt, opts.SortBy)
	assert.Equal(t, "desc", opts.SortOrder)

	tests := []persistence.ListWorkflowsOptions{
		{SortBy: "name; DROP TABLE workflows; --"},
		{SortBy: "owner"},
		{SortBy: "name", SortOrder: "sideways"},
	}

	for _, tt := range tests {
		_, err := tt.Normalize()
		assert.True(t, persistence.IsInvalidSortField(err), tt.SortBy)
	}
}

func TestApplyListOptions(t *testing.T) {
	draft := models.WorkflowStatusDraft

	tests := []struct {
		name     string
		opts     persistence.ListWorkflowsOptions
		expected []string
		total    int64
		hasNext  bool
	}{
		{
			name:     "default order is newest first",
			opts:     persistence.ListWorkflowsOptions{},
			expected: []string{"w3", "w2", "w1"},
			total:    3,
		},
		{
			name:     "by name ascending",
			opts:     persistence.ListWorkflowsOptions{SortBy: persistence.SortByName, SortOrder: "asc"},
			expected: []string{"w3", "w2", "w1"},
			total:    3,
		},
		{
			name:     "by updated_at descending",
			opts:     persistence.ListWorkflowsOptions{SortBy: persistence.SortByUpdatedAt},
			expected: []string{"w1", "w3", "w2"},
			total:    3,
		},
		{
			name:     "owner filter",
			opts:     persistence.ListWorkflowsOptions{Owner: "ana", SortOrder: "asc"},
			expected: []string{"w1", "w2"},
			total:    2,
		},
		{
			name:     "status filter",
			opts:     persistence.ListWorkflowsOptions{Status: &draft},
			expected: []string{"w3", "w1"},
			total:    2,
		},
		{
			name:     "first page",
			opts:     persistence.ListWorkflowsOptions{Limit: 2},
			expected: []string{"w3", "w2"},
			total:    3,
			hasNext:  true,
		},
		{
			name:     "second page",
			opts:     persistence.ListWorkflowsOptions{Limit: 2, Offset: 2},
			expected: []string{"w1"},
			total:    3,
		},
		{
			name:     "offset past the end",
			opts:     persistence.ListWorkflowsOptions{Offset: 10},
			expected: []string{},
			total:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.opts.Normalize()
			require.NoError(t, err)

			result := persistence.ApplyListOptions(listFixture(), opts)

			assert.Equal(t, tt.expected, ids(result))
			assert.Equal(t, tt.total, result.TotalCount)
			assert.Equal(t, tt.hasNext, result.HasNextPage)
		})
	}
}
