package web_test

import (
	"errors"
	"testing"

	"github.com/dukex/leadflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func stringPtr(s string) *string {
	return &s
}

// failedFields returns the struct field names rejected by v.
func failedFields(t *testing.T, err error) []string {
	t.Helper()

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
	}

	return fields
}

func TestCreateWorkflowRequest_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name      string
		request   web.CreateWorkflowRequest
		errFields []string
	}{
		{
			name:    "valid request",
			request: web.CreateWorkflowRequest{Name: "Lead intake", Owner: "agent-7"},
		},
		{
			name:      "missing name",
			request:   web.CreateWorkflowRequest{Owner: "agent-7"},
			errFields: []string{"Name"},
		},
		{
			name:      "name too short",
			request:   web.CreateWorkflowRequest{Name: "Le", Owner: "agent-7"},
			errFields: []string{"Name"},
		},
		{
			name:      "missing owner",
			request:   web.CreateWorkflowRequest{Name: "Lead intake"},
			errFields: []string{"Owner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.request)
			if len(tt.errFields) == 0 {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.ElementsMatch(t, tt.errFields, failedFields(t, err))
		})
	}
}

func TestNodeRequests_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())
	origin := web.PositionRequest{X: float64Ptr(0), Y: float64Ptr(0)}

	tests := []struct {
		name      string
		request   any
		errFields []string
	}{
		{
			name:    "valid node",
			request: web.CreateNodeRequest{Kind: "delay", Position: origin, Config: map[string]any{"delayMs": 1000}},
		},
		{
			name:      "unknown kind",
			request:   web.CreateNodeRequest{Kind: "webhook", Position: origin},
			errFields: []string{"Kind"},
		},
		{
			name:      "missing position",
			request:   web.CreateNodeRequest{Kind: "action"},
			errFields: []string{"X", "Y"},
		},
		{
			name:      "config required",
			request:   web.UpdateNodeConfigRequest{},
			errFields: []string{"Config"},
		},
		{
			name:    "edge without handles",
			request: web.ConnectRequest{Source: "a", Target: "b"},
		},
		{
			name:      "edge without target",
			request:   web.ConnectRequest{Source: "a"},
			errFields: []string{"Target"},
		},
		{
			name:      "edge patch with blank source",
			request:   web.UpdateEdgeRequest{Source: stringPtr("")},
			errFields: []string{"Source"},
		},
		{
			name:    "edge patch clearing label",
			request: web.UpdateEdgeRequest{Label: stringPtr("")},
		},
		{
			name:      "layout direction",
			request:   web.LayoutRequest{Direction: "diagonal"},
			errFields: []string{"Direction"},
		},
		{
			name:      "negative spacing",
			request:   web.LayoutRequest{NodeSpacing: -1},
			errFields: []string{"NodeSpacing"},
		},
		{
			name:    "empty layout",
			request: web.LayoutRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.request)
			if len(tt.errFields) == 0 {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.ElementsMatch(t, tt.errFields, failedFields(t, err))
		})
	}
}
