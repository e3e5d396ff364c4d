// Package pwio manages the process streams, terminal color capability and
// the diagnostic logger used to report command-line errors.
package pwio

import (
	"fmt"
	stdio "io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ColorMode selects how color support is decided.
type ColorMode string

const (
	ColorModeAuto   ColorMode = "auto"
	ColorModeAlways ColorMode = "always"
	ColorModeNever  ColorMode = "never"
)

// IOManager centralizes IO and terminal capabilities
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	forceColor         bool
	noColor            bool
	forceColorLevel    int
	hasForceColorLevel bool
}

// New returns a manager bound to process stdio
func New() *IOManager {
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// WithIn sets the input reader used by the manager and returns the manager for chaining.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; return m }

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor forces color output on, regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.forceColor = true; m.noColor = false; return m }

// NoColor disables color output, regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.noColor = true; m.forceColor = false; return m }

// ColorAuto uses environment heuristics to determine color support.
func (m *IOManager) ColorAuto() *IOManager { m.noColor = false; m.forceColor = false; return m }

// ForceColorLevel forces a specific color level (0=none, 1=16, 2=256, 3=truecolor).
func (m *IOManager) ForceColorLevel(level int) *IOManager {
	m.forceColorLevel = level
	m.hasForceColorLevel = true
	return m
}

// SetColorMode applies a mode by name, as found in configuration files.
func (m *IOManager) SetColorMode(mode ColorMode) error {
	switch ColorMode(strings.ToLower(string(mode))) {
	case ColorModeAuto, "":
		m.ColorAuto()
	case ColorModeAlways:
		m.ForceColor()
	case ColorModeNever:
		m.NoColor()
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
	return nil
}

// In returns the configured input reader.
func (m *IOManager) In() stdio.Reader { return m.in }

// Out returns the configured standard output writer.
func (m *IOManager) Out() stdio.Writer { return m.out }

// Err returns the configured standard error writer.
func (m *IOManager) Err() stdio.Writer { return m.err }

// IsTerminal reports whether w is a file connected to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SupportsColor reports whether ANSI colors may be written to the output writer.
func (m *IOManager) SupportsColor() bool { return m.SupportsColorOn(m.out) }

// SupportsColorOn reports whether ANSI colors may be written to w.
func (m *IOManager) SupportsColorOn(w stdio.Writer) bool {
	if m.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if m.forceColor || os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if !IsTerminal(w) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// ColorLevel returns 0 for none, 1 for basic, 2 for 256 colors, and 3 for
// truecolor, for the output writer.
func (m *IOManager) ColorLevel() int { return m.ColorLevelOn(m.out) }

// ColorLevelOn is ColorLevel for an arbitrary writer.
func (m *IOManager) ColorLevelOn(w stdio.Writer) int {
	if m.hasForceColorLevel {
		return m.forceColorLevel
	}
	if !m.SupportsColorOn(w) {
		return 0
	}
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return 3
	}
	term := os.Getenv("TERM")
	if strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") {
		return 3
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "vscode", "zed", "iTerm.app", "WezTerm":
		return 3
	}
	if strings.Contains(term, "256color") {
		return 2
	}
	return 1
}
