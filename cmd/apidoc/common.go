package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidoc/internal/config"
	"github.com/g5becks/apidoc/internal/grammar"
	"github.com/g5becks/apidoc/internal/model"
	"github.com/g5becks/apidoc/internal/source"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file",
	}
}

// loadDocumentation runs the full pipeline: config, source loading, macro
// expansion and the three grammar passes.
func loadDocumentation(ctx context.Context, cmd *cli.Command) (*model.Documentation, *config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	corpus, err := source.LoadDir(ctx, cfg.DocsDir(), source.LoadOptions{
		Patterns:   cfg.Patterns,
		Exclude:    cfg.Exclude,
		ParamsFile: cfg.ParamsPath(),
	})
	if err != nil {
		return nil, nil, err
	}

	doc, err := grammar.Parse(corpus.Body, corpus.Params, grammar.Options{
		Languages: cfg.Languages,
	})
	if err != nil {
		return nil, nil, err
	}

	return doc, cfg, nil
}
