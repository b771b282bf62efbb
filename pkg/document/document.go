// Package document converts between the editable graph and its transport-safe
// document form.
//
// Export and Import are inverse: Import(Export(g)) yields a graph with the same
// nodes and edges, field for field, including canvas positions. Import refuses
// inconsistent documents as a whole rather than dropping the offending parts.
package document

import (
	"errors"
	"fmt"

	"github.com/dukex/leadflow/pkg/graph"
	"github.com/dukex/leadflow/pkg/models"
)

// ErrMalformedDocument is matched by every MalformedDocumentError.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedDocumentError describes why a document could not be imported.
type MalformedDocumentError struct {
	Reason string // Short description of the inconsistency
	ID     string // Node or edge id involved, if any
	Err    error  // Underlying decode error, if any
}

func (e *MalformedDocumentError) Error() string {
	msg := "malformed document: " + e.Reason
	if e.ID != "" {
		msg += fmt.Sprintf(" (%s)", e.ID)
	}

	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}

	return msg
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// IsMalformedDocument checks if an error indicates a rejected import.
func IsMalformedDocument(err error) bool {
	return errors.Is(err, ErrMalformedDocument)
}

func malformed(reason, id string) *MalformedDocumentError {
	return &MalformedDocumentError{Reason: reason, ID: id}
}

// Export returns the document form of g. Only nodes and edges are carried over;
// editor state such as the dirty flag is not.
func Export(g *graph.Graph) models.Document {
	return g.Document()
}

// Import rebuilds an editable graph from doc. Graph options, such as the id
// generator, are passed through to the new graph.
func Import(doc models.Document, opts ...graph.Option) (*graph.Graph, error) {
	if err := Check(doc); err != nil {
		return nil, err
	}

	g, err := graph.Load(doc.Nodes, doc.Edges, opts...)
	if err != nil {
		return nil, &MalformedDocumentError{Reason: "inconsistent graph", Err: err}
	}

	return g, nil
}

// Check reports the first structural inconsistency that would make doc
// unimportable: empty or duplicate ids, unknown node kinds, positions that are
// not finite and edges whose endpoints are missing.
func Check(doc models.Document) error {
	nodeIDs := make(map[string]bool, len(doc.Nodes))

	for _, node := range doc.Nodes {
		if node.ID == "" {
			return malformed("node without id", "")
		}

		if nodeIDs[node.ID] {
			return malformed("duplicate node id", node.ID)
		}

		if !node.Kind.IsValid() {
			return malformed(fmt.Sprintf("unknown node kind %q", node.Kind), node.ID)
		}

		if !node.Position.IsFinite() {
			return malformed("non-finite position", node.ID)
		}

		nodeIDs[node.ID] = true
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))

	for _, edge := range doc.Edges {
		if edge.ID == "" {
			return malformed("edge without id", "")
		}

		if edgeIDs[edge.ID] {
			return malformed("duplicate edge id", edge.ID)
		}

		if !nodeIDs[edge.Source] {
			return malformed(fmt.Sprintf("edge source %q does not exist", edge.Source), edge.ID)
		}

		if !nodeIDs[edge.Target] {
			return malformed(fmt.Sprintf("edge target %q does not exist", edge.Target), edge.ID)
		}

		edgeIDs[edge.ID] = true
	}

	return nil
}
