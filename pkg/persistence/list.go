package persistence

import (
	"slices"
	"strings"

	"github.com/dukex/leadflow/pkg/models"
)

// ApplyListOptions filters, sorts and paginates workflows in memory. It is used by
// stores that cannot push these operations down to the backend. opts must
// already be normalized.
func ApplyListOptions(workflows []*models.Workflow, opts ListWorkflowsOptions) *WorkflowListResult {
	filtered := make([]*models.Workflow, 0, len(workflows))

	for _, workflow := range workflows {
		if opts.Owner != "" && workflow.Owner != opts.Owner {
			continue
		}

		if opts.Status != nil && workflow.Status != *opts.Status {
			continue
		}

		filtered = append(filtered, workflow)
	}

	slices.SortStableFunc(filtered, func(a, b *models.Workflow) int {
		var cmp int

		switch opts.SortBy {
		case SortByUpdatedAt:
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		case SortByName:
			cmp = strings.Compare(a.Name, b.Name)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}

		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}

		if opts.SortOrder == "desc" {
			return -cmp
		}

		return cmp
	})

	total := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &WorkflowListResult{
			Workflows:  make([]*models.Workflow, 0),
			TotalCount: total,
		}
	}

	end := min(opts.Offset+opts.Limit, len(filtered))

	return &WorkflowListResult{
		Workflows:   filtered[opts.Offset:end],
		TotalCount:  total,
		HasNextPage: end < len(filtered),
	}
}
