package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/leadflow/pkg/document"
	"github.com/dukex/leadflow/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

var ErrInvalidWorkflow = errors.New("workflow has structural errors")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a workflow document for structural errors and warnings",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: formatFlagUsage,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat warnings as errors",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if err := requireArgs(command, 1); err != nil {
				return err
			}

			path := command.Args().First()

			doc, err := readDocumentFile(path, command.String("format"))
			if err != nil {
				return err
			}

			result := validation.ValidateDocument(doc)
			out := command.Root().Writer

			for _, issue := range result.Errors {
				_, _ = fmt.Fprintf(out, "error   %s\n", issue)
			}

			for _, issue := range result.Warnings {
				_, _ = fmt.Fprintf(out, "warning %s\n", issue)
			}

			// Anything the validator accepts but import refuses, such as a NaN position.
			if err := document.Check(doc); err != nil && result.IsValid {
				return fmt.Errorf("%s: %w: %v", path, ErrInvalidWorkflow, err)
			}

			if !result.IsValid || (command.Bool("strict") && len(result.Warnings) > 0) {
				return fmt.Errorf("%s: %w (%d errors, %d warnings)", path, ErrInvalidWorkflow, len(result.Errors), len(result.Warnings))
			}

			_, _ = fmt.Fprintf(out, "%s: valid (%d nodes, %d edges, %d warnings)\n", path, len(doc.Nodes), len(doc.Edges), len(result.Warnings))

			return nil
		},
	}
}
