// Package config loads pwkeep settings. Values are layered from built-in
// defaults, an optional YAML file and PWKEEP_* environment variables, each
// layer overriding the previous one. Command-line options are applied last by
// the caller, since the loaded values seed the option destinations.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	pwio "github.com/pwkeep/pwkeep/io"
)

// SourceType identifies the layer a setting was last taken from.
type SourceType int

const (
	SourceDefaults SourceType = iota
	SourceFile
	SourceEnv
)

func (s SourceType) String() string {
	switch s {
	case SourceDefaults:
		return "default"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	default:
		return "unknown"
	}
}

// Config is the content of '${XDG_CONFIG_HOME}/pwkeep/config.yaml'.
type Config struct {
	Database string `yaml:"database"`
	Editor   string `yaml:"editor"`
	Length   uint   `yaml:"length"`
	Pager    bool   `yaml:"pager"`
	Color    string `yaml:"color"`
	Trace    bool   `yaml:"trace"`
	Theme    Theme  `yaml:"theme"`

	origin map[string]SourceType
}

// Theme holds diagnostic colors as hex strings ("#rrggbb" or "#rgb").
// Empty entries keep the built-in color.
type Theme struct {
	Error   string `yaml:"error,omitempty"`
	Warning string `yaml:"warning,omitempty"`
	Hint    string `yaml:"hint,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Database: filepath.Join(dataHome(), "pwkeep", "records.db"),
		Editor:   "vi",
		Length:   20,
		Pager:    true,
		Color:    string(pwio.ColorModeAuto),
		origin:   map[string]SourceType{},
	}
}

// DefaultPath returns $PWKEEP_CONFIG when set, otherwise config.yaml in the
// pwkeep directory under $XDG_CONFIG_HOME or ~/.config.
func DefaultPath() string {
	if p := os.Getenv("PWKEEP_CONFIG"); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pwkeep", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "pwkeep", "config.yaml")
	}
	return filepath.Join(home, ".config", "pwkeep", "config.yaml")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share"
	}
	return filepath.Join(home, ".local", "share")
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. A missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return err
	}
	for k := range keys {
		c.origin[k] = SourceFile
	}
	return nil
}

type envBinding struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"PWKEEP_DATABASE", "database", func(c *Config, v string) error { c.Database = v; return nil }},
	{"PWKEEP_EDITOR", "editor", func(c *Config, v string) error { c.Editor = v; return nil }},
	{"PWKEEP_LENGTH", "length", func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, strconv.IntSize)
		if err != nil {
			return err
		}
		c.Length = uint(n)
		return nil
	}},
	{"PWKEEP_PAGER", "pager", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Pager = b
		return err
	}},
	{"PWKEEP_COLOR", "color", func(c *Config, v string) error { c.Color = v; return nil }},
	{"PWKEEP_TRACE", "trace", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Trace = b
		return err
	}},
}

func (c *Config) loadEnv() error {
	for _, b := range envBindings {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("invalid %s value %q: %w", b.name, v, err)
		}
		c.origin[b.key] = SourceEnv
	}
	return nil
}

// Validate normalizes the color mode and checks it along with the theme
// colors.
func (c *Config) Validate() error {
	c.Color = strings.ToLower(c.Color)
	switch pwio.ColorMode(c.Color) {
	case pwio.ColorModeAuto, pwio.ColorModeAlways, pwio.ColorModeNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color)
	}
	if _, err := c.Theme.Resolve(); err != nil {
		return err
	}
	return nil
}

// Origin reports which layer last set the top-level key.
func (c *Config) Origin(key string) SourceType {
	return c.origin[key]
}

// Resolve converts the hex colors into a theme suitable for
// pwio.Theme.Merge; unset entries stay zero.
func (t Theme) Resolve() (pwio.Theme, error) {
	var out pwio.Theme
	for _, e := range []struct {
		name string
		hex  string
		dst  *pwio.ColorSpec
	}{
		{"error", t.Error, &out.Error},
		{"warning", t.Warning, &out.Warning},
		{"hint", t.Hint, &out.Hint},
	} {
		if e.hex == "" {
			continue
		}
		c, err := pwio.Hex(e.hex)
		if err != nil {
			return pwio.Theme{}, fmt.Errorf("theme.%s: %w", e.name, err)
		}
		*e.dst = c
	}
	return out, nil
}
