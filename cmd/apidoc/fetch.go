package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/config"
	"github.com/g5becks/apidoc/internal/source"
	"github.com/g5becks/apidoc/internal/ui"
)

const defaultParallel = 4

func newFetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download configured remote grammar sources into the docs directory",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Refetch even when the remote is unchanged"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Maximum parallel downloads", Value: defaultParallel},
		},
		Action: fetchAction,
	}
}

func fetchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	printer := ui.NewPrinter()

	if len(cfg.Remotes) == 0 {
		printer.Info("no remote sources configured")
		return nil
	}

	return source.FetchRemotes(ctx, cfg, source.FetchOptions{
		Force:       cmd.Bool("force"),
		MaxParallel: int(cmd.Int("parallel")),
		OnResult:    printer.HandleFetchResult,
	})
}
