package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

const starterConfig = `# apidoc configuration
docs = "docs/api"
params = "params.md"
patterns = ["**/*.md"]
exclude = []
# languages = ["js", "python", "java", "csharp"]

# [remotes.example]
# url = "https://example.com/docs/page.md"
# filename = "page.md"
`

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a starter apidoc.toml in the current directory",
		Action: initAction,
	}
}

func initAction(_ context.Context, _ *cli.Command) error {
	const configName = "apidoc.toml"

	if _, err := os.Stat(configName); err == nil {
		return oops.
			Code("CONFIG_EXISTS").
			With("path", configName).
			Hint("Edit the existing file instead").
			Errorf("%s already exists", configName)
	} else if !errors.Is(err, os.ErrNotExist) {
		return oops.Wrapf(err, "checking for existing config")
	}

	if err := os.WriteFile(configName, []byte(starterConfig), 0o644); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", configName).
			Wrapf(err, "writing starter config")
	}

	fmt.Printf("created %s\n", configName)

	return nil
}
