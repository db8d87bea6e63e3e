package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/ui"
)

func newClassesCommand() *cli.Command {
	return &cli.Command{
		Name:  "classes",
		Usage: "List parsed classes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON output"},
		},
		Action: classesAction,
	}
}

func classesAction(ctx context.Context, cmd *cli.Command) error {
	doc, _, err := loadDocumentation(ctx, cmd)
	if err != nil {
		return err
	}

	return ui.RenderClassList(doc.Classes, cmd.Bool("json"))
}
