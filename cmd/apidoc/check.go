package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/ui"
)

func newCheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Parse the configured grammar sources and report the result",
		Flags:  []cli.Flag{configFlag()},
		Action: checkAction,
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	printer := ui.NewPrinter()

	doc, _, err := loadDocumentation(ctx, cmd)
	if err != nil {
		printer.Failure("grammar check failed")
		return err
	}

	members := 0
	for _, class := range doc.Classes {
		members += len(class.Members)
	}

	printer.Success("parsed %d classes, %d members", len(doc.Classes), members)

	return nil
}
