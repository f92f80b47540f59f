package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"storyline-cli/internal/format"
	"storyline-cli/internal/store"
)

// Config holds the process-wide defaults. Command-line flags override every field.
type Config struct {
	Dir    string `env:"STORYLINE_DIR"`
	Format string `env:"STORYLINE_FORMAT" envDefault:"json"`
	Pretty bool   `env:"STORYLINE_PRETTY"`

	// MarkdownStyle picks the glamour style: auto, dark or light.
	MarkdownStyle string `env:"STORYLINE_MARKDOWN_STYLE" envDefault:"auto"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom parses vars instead of the process environment. Tests use it to avoid t.Setenv.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = "json"
	}
	ok := false
	for _, f := range format.Formats {
		if c.Format == f {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("STORYLINE_FORMAT: unknown format %q (expected %s)", c.Format, strings.Join(format.Formats, "|"))
	}

	c.MarkdownStyle = strings.ToLower(strings.TrimSpace(c.MarkdownStyle))
	switch c.MarkdownStyle {
	case "":
		c.MarkdownStyle = "auto"
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("STORYLINE_MARKDOWN_STYLE: unknown style %q (expected auto|dark|light)", c.MarkdownStyle)
	}
	return nil
}

// ResolveDir returns the configured store dir, or the one discovered from the working directory.
func (c Config) ResolveDir() (string, error) {
	if d := strings.TrimSpace(c.Dir); d != "" {
		return os.ExpandEnv(d), nil
	}
	return store.DefaultDir()
}
