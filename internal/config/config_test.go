package config

import (
	"strings"
	"testing"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Format != "json" || cfg.Pretty || cfg.MarkdownStyle != "auto" || cfg.Dir != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(map[string]string{
		"STORYLINE_DIR":            "/tmp/story",
		"STORYLINE_FORMAT":         " EDN ",
		"STORYLINE_PRETTY":         "true",
		"STORYLINE_MARKDOWN_STYLE": "Light",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Dir != "/tmp/story" || cfg.Format != "edn" || !cfg.Pretty || cfg.MarkdownStyle != "light" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	dir, err := cfg.ResolveDir()
	if err != nil || dir != "/tmp/story" {
		t.Fatalf("ResolveDir = %q, %v", dir, err)
	}
}

func TestLoadFrom_RejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []map[string]string{
		{"STORYLINE_FORMAT": "yaml"},
		{"STORYLINE_MARKDOWN_STYLE": "neon"},
	}
	for _, vars := range cases {
		if _, err := LoadFrom(vars); err == nil {
			t.Fatalf("expected error for %v", vars)
		}
	}

	_, err := LoadFrom(map[string]string{"STORYLINE_PRETTY": "maybe"})
	if err == nil || !strings.HasPrefix(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error; got %v", err)
	}
}

func TestParseEnv_ReadsProcessEnv(t *testing.T) {
	t.Setenv("STORYLINE_FORMAT", "edn")

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.Format != "edn" {
		t.Fatalf("Format = %q; want edn", cfg.Format)
	}
}
