package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/models"
	cli "github.com/urfave/cli/v3"
)

var formatFlagUsage = "Document format (json, jsonc, yaml, cbor); inferred from the file extension when empty"

// resolveFormat returns the named format, or the one implied by path's extension.
func resolveFormat(name, path string) (document.Format, error) {
	if name != "" {
		return document.ParseFormat(name)
	}

	return document.ParseFormat(filepath.Ext(path))
}

func readDocumentFile(path, formatName string) (models.Document, error) {
	format, err := resolveFormat(formatName, path)
	if err != nil {
		return models.Document{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := document.Read(file, format)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

func writeDocumentFile(path, formatName string, doc models.Document) error {
	format, err := resolveFormat(formatName, path)
	if err != nil {
		return err
	}

	data, err := document.Marshal(doc, format)
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func requireArgs(command *cli.Command, n int) error {
	if command.Args().Len() != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", command.Name, n, command.Args().Len())
	}

	return nil
}
