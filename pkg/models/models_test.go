package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	tags := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		tags[fieldErr.Field()] = fieldErr.Tag()
	}

	return tags
}

func TestNode_Validation(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name string
		node Node
		want map[string]string
	}{
		{
			name: "valid action",
			node: Node{ID: "action-1", Kind: NodeKindAction, Config: map[string]any{ConfigActionType: "send_sms"}},
		},
		{
			name: "missing id",
			node: Node{Kind: NodeKindTrigger},
			want: map[string]string{"ID": "required"},
		},
		{
			name: "unknown kind",
			node: Node{ID: "n1", Kind: "webhook"},
			want: map[string]string{"Kind": "oneof"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.node)
			if tt.want == nil {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.want, failedTags(t, err))
		})
	}
}

func TestEdge_Validation(t *testing.T) {
	validate := validator.New()

	require.NoError(t, validate.Struct(Edge{ID: "edge-1", Source: "a", Target: "b"}))

	err := validate.Struct(Edge{ID: "edge-1"})
	assert.Equal(t, map[string]string{"Source": "required", "Target": "required"}, failedTags(t, err))
}

func TestNodeKind_IsValid(t *testing.T) {
	for _, kind := range NodeKinds {
		assert.True(t, kind.IsValid(), kind)
	}

	assert.False(t, NodeKind("").IsValid())
	assert.False(t, NodeKind("Trigger").IsValid())
}

func TestNode_CloneIsIndependent(t *testing.T) {
	node := Node{
		ID:     "action-1",
		Kind:   NodeKindAction,
		Config: map[string]any{ConfigActionType: "send_email"},
	}

	clone := node.Clone()
	clone.Config[ConfigActionType] = "send_sms"

	assert.Equal(t, "send_email", node.Config[ConfigActionType])

	empty := Node{ID: "n"}.Clone()
	assert.NotNil(t, empty.Config)
}

func TestEdge_CloneIsIndependent(t *testing.T) {
	edge := Edge{ID: "edge-1", Source: "a", Target: "b", SourceHandle: StringPtr(HandleTrue), Label: StringPtr("hot lead")}

	clone := edge.Clone()
	*clone.SourceHandle = HandleFalse
	*clone.Label = "cold lead"

	assert.Equal(t, HandleTrue, edge.SourceHandleName())
	assert.Equal(t, "hot lead", *edge.Label)
	assert.Nil(t, clone.TargetHandle)
	assert.Empty(t, clone.TargetHandleName())
}

func TestEdge_References(t *testing.T) {
	edge := Edge{ID: "edge-1", Source: "a", Target: "b"}

	assert.True(t, edge.References("a"))
	assert.True(t, edge.References("b"))
	assert.False(t, edge.References("c"))
}

func TestEdge_JSONKeepsUnsetHandlesAsNull(t *testing.T) {
	data, err := json.Marshal(Edge{ID: "edge-1", Source: "a", Target: "b"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"edge-1","source":"a","target":"b","sourceHandle":null,"targetHandle":null,"label":null}`, string(data))
}

func TestHandles(t *testing.T) {
	tests := []struct {
		kind      NodeKind
		direction PortDirection
		handle    string
		want      bool
	}{
		{NodeKindCondition, PortDirectionOutput, HandleTrue, true},
		{NodeKindCondition, PortDirectionOutput, HandleDefault, true},
		{NodeKindCondition, PortDirectionOutput, HandleBody, false},
		{NodeKindLoop, PortDirectionOutput, HandleBody, true},
		{NodeKindLoop, PortDirectionOutput, HandleDone, true},
		{NodeKindTrigger, PortDirectionInput, HandleIn, false},
		{NodeKindAction, PortDirectionInput, HandleIn, true},
		{NodeKindAction, PortDirectionOutput, "", true},
		{NodeKindDelay, "sideways", HandleOut, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.direction)+"/"+tt.handle, func(t *testing.T) {
			assert.Equal(t, tt.want, HasHandle(tt.kind, tt.direction, tt.handle))
		})
	}

	handles := OutputHandles(NodeKindCondition)
	handles[0] = "mutated"
	assert.Equal(t, []string{HandleTrue, HandleFalse, HandleDefault}, OutputHandles(NodeKindCondition))
	assert.Empty(t, InputHandles(NodeKindTrigger))
}

func TestTypedConfigs(t *testing.T) {
	condition := Node{Kind: NodeKindCondition, Config: map[string]any{
		ConfigConditionType: "lead_score",
		ConfigRules:         []any{map[string]any{"field": "score", "op": "gt", "value": float64(70)}},
		ConfigDefaultPath:   HandleFalse,
	}}

	cfg := condition.ConditionConfig()
	assert.Equal(t, "lead_score", cfg.ConditionType)
	assert.Len(t, cfg.Rules, 1)
	require.NotNil(t, cfg.DefaultPath)
	assert.Equal(t, HandleFalse, *cfg.DefaultPath)

	blankDefault := Node{Config: map[string]any{ConfigDefaultPath: ""}}
	assert.Nil(t, blankDefault.ConditionConfig().DefaultPath)

	loop := Node{Kind: NodeKindLoop, Config: map[string]any{ConfigLoopType: "retry", ConfigMaxIterations: float64(3)}}
	assert.Equal(t, LoopConfig{LoopType: "retry", MaxIterations: 3}, loop.LoopConfig())

	missing := Node{Kind: NodeKindLoop, Config: map[string]any{}}
	assert.Equal(t, int64(0), missing.LoopConfig().MaxIterations)

	delay := Node{Kind: NodeKindDelay, Config: map[string]any{ConfigDelayMs: "soon"}}
	assert.Equal(t, int64(0), delay.DelayConfig().DelayMs)

	trigger := Node{Kind: NodeKindTrigger, Config: map[string]any{ConfigTriggerType: TriggerTypeSchedule, ConfigCron: "0 9 * * 1"}}
	assert.Equal(t, TriggerConfig{TriggerType: "schedule", Cron: "0 9 * * 1"}, trigger.TriggerConfig())

	action := Node{Kind: NodeKindAction, Config: map[string]any{ConfigActionType: "assign_agent", ConfigParameters: map[string]any{"team": "inside-sales"}}}
	assert.Equal(t, "inside-sales", action.ActionConfig().Parameters["team"])
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int", 5, 5, true},
		{"int64", int64(-2), -2, true},
		{"uint64 overflow", uint64(1 << 63), 1<<63 - 1, true},
		{"float64 truncates", 2.9, 2, true},
		{"float64 above int64", 1e19, math.MaxInt64, true},
		{"float64 below int64", -1e19, math.MinInt64, true},
		{"float32", float32(7), 7, true},
		{"NaN", math.NaN(), 0, false},
		{"string", "5", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntValue(map[string]any{"n": tt.value}, "n")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestWorkflow_Lifecycle(t *testing.T) {
	for _, status := range WorkflowStatuses {
		assert.True(t, status.IsValid())
	}

	assert.False(t, WorkflowStatus("archived").IsValid())

	workflow := &Workflow{Status: WorkflowStatusDraft}
	assert.True(t, workflow.IsDraft())
	assert.True(t, workflow.IsEditable())

	workflow.Status = WorkflowStatusPublished
	assert.False(t, workflow.IsEditable())

	workflow.Status = WorkflowStatusUnpublished
	assert.False(t, workflow.IsDraft())
	assert.True(t, workflow.IsEditable())
}

func TestWorkflow_Validation(t *testing.T) {
	validate := validator.New()

	require.NoError(t, validate.Struct(Workflow{Name: "Open house", Status: WorkflowStatusDraft}))

	err := validate.Struct(Workflow{Name: "ab"})
	assert.Equal(t, map[string]string{"Name": "min", "Status": "required"}, failedTags(t, err))
}
