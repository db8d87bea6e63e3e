package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// DefaultPatterns matches the grammar-bearing files inside the docs
// directory.
func DefaultPatterns() []string {
	return []string{"**/*.md"}
}

// Config describes where the API grammar sources live and how to read them.
type Config struct {
	// Docs is the directory holding the grammar-bearing markdown files,
	// relative to the config file unless absolute.
	Docs string `koanf:"docs" validate:"required"`
	// Params names the template fragments file inside Docs. Optional.
	Params string `koanf:"params"`
	// Patterns and Exclude select grammar files within Docs (doublestar).
	Patterns []string `koanf:"patterns"`
	Exclude  []string `koanf:"exclude"`
	// Languages restricts the language names accepted in langs: bullets.
	// Empty accepts anything.
	Languages []string `koanf:"languages"`
	// Remotes are grammar files fetched over HTTP into Docs before parsing.
	Remotes map[string]Remote `koanf:"remotes" validate:"omitempty,dive"`

	ConfigDir string `koanf:"-"`
}

// Remote is one HTTP-fetched grammar source.
type Remote struct {
	URL      string `koanf:"url"      validate:"required,url"`
	Filename string `koanf:"filename"`
}

func (c *Config) ApplyDefaults() {
	if len(c.Patterns) == 0 {
		c.Patterns = DefaultPatterns()
	}
}

// DocsDir returns the absolute docs directory.
func (c *Config) DocsDir() string {
	if filepath.IsAbs(c.Docs) {
		return filepath.Clean(c.Docs)
	}
	return filepath.Clean(filepath.Join(c.ConfigDir, c.Docs))
}

// ParamsPath returns the absolute path of the params file, or "" when none
// is configured.
func (c *Config) ParamsPath() string {
	if c.Params == "" {
		return ""
	}
	if filepath.IsAbs(c.Params) {
		return filepath.Clean(c.Params)
	}
	return filepath.Join(c.DocsDir(), c.Params)
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return oops.
				Code("CONFIG_INVALID").
				Wrapf(err, "validating config")
		}

		for _, fe := range validationErrors {
			return mapValidationError(fe)
		}
	}

	for name, remote := range c.Remotes {
		if remote.Filename != "" && remote.Filename != filepath.Base(remote.Filename) {
			return oops.
				Code("CONFIG_INVALID").
				With("remote", name).
				With("filename", remote.Filename).
				Hint("Remote filenames must not contain path separators").
				Errorf("invalid filename %q for remote %q", remote.Filename, name)
		}
	}

	return nil
}

func mapValidationError(fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case fe.Tag() == "required" && field == "docs":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "docs").
			Hint("Set docs to the directory holding the API grammar files").
			Errorf("missing docs directory in config")

	case fe.Tag() == "required" && field == "url":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "url").
			Hint("Set url for every remote source").
			Errorf("missing url for remote source")

	case fe.Tag() == "url":
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("value", fe.Value()).
			Hint("Remote url must be a valid absolute URL").
			Errorf("invalid remote url %v", fe.Value())

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for config field %q", field)
	}
}
