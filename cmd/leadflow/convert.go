package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
)

func NewConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Re-encode a workflow document in another format",
		ArgsUsage: "<input> <output>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Input format; inferred from the input extension when empty",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Output format; inferred from the output extension when empty",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			if err := requireArgs(command, 2); err != nil {
				return err
			}

			input, output := command.Args().Get(0), command.Args().Get(1)

			doc, err := readDocumentFile(input, command.String("from"))
			if err != nil {
				return err
			}

			if err := writeDocumentFile(output, command.String("to"), doc); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(command.Root().Writer, "%s -> %s\n", input, output)

			return nil
		},
	}
}
