package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/ui"
)

func newMembersCommand() *cli.Command {
	return &cli.Command{
		Name:      "members",
		Usage:     "List the members of one class",
		ArgsUsage: "<class>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON output"},
		},
		Action: membersAction,
	}
}

func membersAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: apidoc members <class>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	className := cmd.Args().Get(0)

	doc, _, err := loadDocumentation(ctx, cmd)
	if err != nil {
		return err
	}

	class := doc.Class(className)
	if class == nil {
		return oops.
			Code("CLASS_NOT_FOUND").
			With("class", className).
			Hint("Run 'apidoc classes' to see available classes").
			Errorf("class %q not found", className)
	}

	return ui.RenderMemberList(class, cmd.Bool("json"))
}
