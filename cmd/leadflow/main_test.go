package main

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/events"
	"github.com/dukex/leadflow/pkg/mocks"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name string, doc models.Document) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	format, err := document.ParseFormat(filepath.Ext(name))
	require.NoError(t, err)

	data, err := document.Marshal(doc, format)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	command := newCommand()
	command.Writer = &out
	command.ErrWriter = &out

	err := command.Run(t.Context(), append([]string{"leadflow"}, args...))

	return out.String(), err
}

func TestValidate(t *testing.T) {
	noTrigger := models.Document{
		Nodes: []models.Node{testutil.CreateTestNode(testutil.WithID("action-1"))},
		Edges: []models.Edge{},
	}

	withStray := testutil.LeadIntakeDocument()
	withStray.Nodes = append(withStray.Nodes, testutil.CreateTestNode(testutil.WithID("stray")))

	tests := []struct {
		name     string
		file     string
		doc      models.Document
		args     []string
		wantErr  bool
		contains string
	}{
		{name: "valid json", file: "lead.json", doc: testutil.LeadIntakeDocument(), contains: "valid (4 nodes, 3 edges"},
		{name: "valid yaml", file: "lead.yml", doc: testutil.LeadIntakeDocument(), contains: "valid (4 nodes, 3 edges"},
		{name: "missing trigger", file: "broken.json", doc: noTrigger, wantErr: true, contains: "no_trigger"},
		{name: "warnings pass", file: "stray.json", doc: withStray, contains: "warning"},
		{name: "warnings fail when strict", file: "stray.json", doc: withStray, args: []string{"--strict"}, wantErr: true, contains: "unreachable_node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.doc)

			args := append([]string{"validate"}, tt.args...)
			out, err := run(t, append(args, path)...)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidWorkflow)
			} else {
				require.NoError(t, err)
			}

			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestValidate_BadInput(t *testing.T) {
	_, err := run(t, "validate")
	require.Error(t, err)

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	data, err := document.Marshal(testutil.LeadIntakeDocument(), document.FormatJSON)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lead.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = run(t, "validate", path)
	require.ErrorContains(t, err, "unsupported document format")

	_, err = run(t, "validate", "--format", "json", path)
	require.NoError(t, err)
}

func TestValidate_AgreesWithImport(t *testing.T) {
	doc := testutil.LeadIntakeDocument()
	doc.Nodes = append(doc.Nodes, doc.Nodes[3])

	_, err := run(t, "validate", writeFixture(t, "dup.json", doc))
	require.ErrorIs(t, err, ErrInvalidWorkflow)

	doc = testutil.LeadIntakeDocument()
	doc.Nodes[1].Position = models.Position{X: math.NaN()}

	_, err = run(t, "validate", writeFixture(t, "nan.yaml", doc))
	require.ErrorIs(t, err, ErrInvalidWorkflow)
	assert.ErrorContains(t, err, "non-finite position")
}

func TestLayout(t *testing.T) {
	doc := testutil.LeadIntakeDocument()
	doc.Nodes[2].Position = models.Position{X: 900, Y: 900}

	path := writeFixture(t, "lead.yaml", doc)

	out, err := run(t, "layout", path)
	require.NoError(t, err)
	assert.Contains(t, out, "moved 1 of 4 nodes")

	arranged, err := readDocumentFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, testutil.LeadIntakeDocument(), arranged)

	output := filepath.Join(t.TempDir(), "vertical.json")

	_, err = run(t, "layout", "--direction", "vertical", "--output", output, path)
	require.NoError(t, err)

	vertical, err := readDocumentFile(output, "")
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 0, Y: 250}, vertical.Nodes[1].Position)
	assert.Equal(t, models.Position{X: 120, Y: 500}, vertical.Nodes[3].Position)

	_, err = run(t, "layout", "--direction", "diagonal", path)
	require.ErrorContains(t, err, "unsupported direction")
}

func TestLayout_RejectsMalformedDocument(t *testing.T) {
	doc := models.Document{
		Nodes: []models.Node{testutil.CreateTestNode(testutil.WithTriggerNode(), testutil.WithID("T1"))},
		Edges: []models.Edge{testutil.CreateTestEdge("T1", "missing")},
	}

	_, err := run(t, "layout", writeFixture(t, "dangling.json", doc))
	require.Error(t, err)
	assert.True(t, document.IsMalformedDocument(err))
}

func TestConvert(t *testing.T) {
	input := writeFixture(t, "lead.json", testutil.LeadIntakeDocument())
	dir := t.TempDir()

	cborPath := filepath.Join(dir, "lead.cbor")
	yamlPath := filepath.Join(dir, "lead.yaml")

	out, err := run(t, "convert", input, cborPath)
	require.NoError(t, err)
	assert.Contains(t, out, "-> "+cborPath)

	_, err = run(t, "convert", cborPath, yamlPath)
	require.NoError(t, err)

	converted, err := readDocumentFile(yamlPath, "")
	require.NoError(t, err)
	assert.Equal(t, testutil.LeadIntakeDocument(), converted)

	plain := filepath.Join(dir, "lead.out")

	_, err = run(t, "convert", "--to", "yaml", input, plain)
	require.NoError(t, err)

	converted, err = readDocumentFile(plain, "yaml")
	require.NoError(t, err)
	assert.Equal(t, testutil.LeadIntakeDocument(), converted)

	_, err = run(t, "convert", input)
	require.Error(t, err)
}

func TestWatch(t *testing.T) {
	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handlers := make(map[events.EventType]eventbus.EventHandler)

	bus := &mocks.MockEventBus{}
	bus.On("Handle", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		handlers[args.Get(0).(events.EventType)] = args.Get(1).(eventbus.EventHandler)
	}).Return(nil)
	bus.On("Subscribe", mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.NoError(t, watch(ctx, bus, logger))
	bus.AssertNumberOfCalls(t, "Handle", len(watchedEvents))
	bus.AssertCalled(t, "Subscribe", mock.Anything)

	published := &events.WorkflowPublished{
		BaseEvent: events.NewBaseEvent(events.WorkflowPublishedEvent, "wf-1"),
		Document:  testutil.LeadIntakeDocument(),
	}

	require.NoError(t, handlers[events.WorkflowPublishedEvent](t.Context(), published))
	assert.Contains(t, logs.String(), "Workflow published")
	assert.Contains(t, logs.String(), "workflow_id=wf-1")
	assert.Contains(t, logs.String(), "nodes=4")

	require.NoError(t, handlers[events.WorkflowDeletedEvent](t.Context(), &events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, "wf-2"),
	}))
	assert.Contains(t, logs.String(), "workflow_id=wf-2")
}
