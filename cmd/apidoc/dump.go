package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/source"
)

func newDumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Serialize the documentation model as JSON",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write to a file instead of stdout"},
		},
		Action: dumpAction,
	}
}

func dumpAction(ctx context.Context, cmd *cli.Command) error {
	doc, _, err := loadDocumentation(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.Code("JSON_ERROR").Wrapf(err, "encoding documentation model")
	}

	data = append(data, '\n')

	outPath := cmd.String("out")
	if outPath == "" {
		_, writeErr := os.Stdout.Write(data)
		return writeErr
	}

	if writeErr := source.WriteFileAtomic(outPath, data); writeErr != nil {
		return writeErr
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)

	return nil
}
