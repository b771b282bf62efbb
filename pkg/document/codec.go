package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc" // JSON with comments and trailing commas; decode only differs
	FormatYAML  Format = "yaml"
	FormatCBOR  Format = "cbor"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatJSONC, FormatYAML, FormatCBOR}

// cborDecMode decodes nested CBOR maps as map[string]any so configs stay
// representable as JSON.
var cborDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decode mode: %v", err))
	}

	return mode
}()

// ParseFormat resolves a format name or file extension such as ".yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "json":
		return FormatJSON, nil
	case "jsonc":
		return FormatJSONC, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unsupported document format %q", name)
	}
}

// ContentType returns the MIME type used when serving a format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCBOR:
		return "application/cbor"
	default:
		return "application/json"
	}
}

// Marshal encodes doc in the given format.
func Marshal(doc models.Document, format Format) ([]byte, error) {
	doc = normalizeLists(doc)

	switch format {
	case FormatJSON, FormatJSONC:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}

		return data, nil
	case FormatYAML:
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}

		return buf.Bytes(), nil
	case FormatCBOR:
		data, err := cbor.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode cbor: %w", err)
		}

		return data, nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// Unmarshal decodes a document. Decoding failures are reported as
// MalformedDocumentError; structural checks are left to Import.
func Unmarshal(data []byte, format Format) (models.Document, error) {
	var doc models.Document

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "invalid json", Err: err}
		}

		return normalizeLists(doc), nil
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "invalid jsonc", Err: err}
		}

		return normalizeLists(doc), nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "invalid yaml", Err: err}
		}
	case FormatCBOR:
		if err := cborDecMode.Unmarshal(data, &doc); err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "invalid cbor", Err: err}
		}
	default:
		return models.Document{}, fmt.Errorf("unsupported document format %q", format)
	}

	return normalizeConfigs(normalizeLists(doc))
}

// Read decodes a document from r.
func Read(r io.Reader, format Format) (models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("read document: %w", err)
	}

	return Unmarshal(data, format)
}

// Write encodes doc to w.
func Write(w io.Writer, doc models.Document, format Format) error {
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return nil
}

// normalizeConfigs passes node configs through JSON so that every codec yields
// the same value types (float64 numbers, map[string]any objects) as JSON does.
func normalizeConfigs(doc models.Document) (models.Document, error) {
	for i := range doc.Nodes {
		if doc.Nodes[i].Config == nil {
			continue
		}

		data, err := json.Marshal(doc.Nodes[i].Config)
		if err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "config is not representable as json", ID: doc.Nodes[i].ID, Err: err}
		}

		var config map[string]any
		if err := json.Unmarshal(data, &config); err != nil {
			return models.Document{}, &MalformedDocumentError{Reason: "config is not representable as json", ID: doc.Nodes[i].ID, Err: err}
		}

		doc.Nodes[i].Config = config
	}

	return doc, nil
}

// normalizeLists replaces nil lists with empty ones so every encoding emits [].
func normalizeLists(doc models.Document) models.Document {
	if doc.Nodes == nil {
		doc.Nodes = make([]models.Node, 0)
	}

	if doc.Edges == nil {
		doc.Edges = make([]models.Edge, 0)
	}

	return doc
}

// IsSupported reports whether f is a known format.
func IsSupported(f Format) bool {
	return slices.Contains(Formats, f)
}
