// Command pwkeep is the command-line front end of the pwkeep password
// manager. It parses the command line against the configuration and prints
// the resulting request.
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pwkeep/pwkeep/internal/config"
	pwio "github.com/pwkeep/pwkeep/io"
	"github.com/pwkeep/pwkeep/parseopt"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	iom := pwio.New().WithOut(stdout).WithErr(stderr)
	diag := pwio.NewLogger(iom).WithProgram("pwkeep")

	path := config.DefaultPath()
	cfg, err := config.Load(path)
	if err != nil {
		diag.Fatal("%v", err)
		return 128
	}
	if err := iom.SetColorMode(pwio.ColorMode(cfg.Color)); err != nil {
		diag.Fatal("%v", err)
		return 128
	}
	theme, err := cfg.Theme.Resolve()
	if err != nil {
		diag.Fatal("%v", err)
		return 128
	}

	trace := traceLogger(cfg, iom)
	trace.Debug().Str("path", path).Msg("configuration loaded")

	c := newCLI(cfg)
	p := parseopt.New("pwkeep", c.options(), usage).
		WithIO(iom).
		WithTheme(theme).
		WithLogger(trace)
	p.ErrorHandler().SuggestOptions(true)
	if wd, err := os.Getwd(); err == nil {
		p.WithPrefix(wd)
	}

	sites, err := p.Parse(args)
	if err != nil {
		return p.Report(err)
	}

	if c.dumpConfig {
		if err := dumpConfig(stdout, cfg); err != nil {
			return p.Report(err)
		}
		return 0
	}

	req, err := c.request(p, sites)
	if err != nil {
		return p.Report(err)
	}
	if err := writeYAML(stdout, req); err != nil {
		return p.Report(err)
	}
	return 0
}

// traceLogger returns a console logger on stderr when tracing is enabled,
// and a disabled logger otherwise.
func traceLogger(cfg *config.Config, iom *pwio.IOManager) zerolog.Logger {
	if !cfg.Trace {
		return zerolog.Nop()
	}
	w := zerolog.ConsoleWriter{
		Out:        iom.Err(),
		NoColor:    !iom.SupportsColorOn(iom.Err()),
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// dumpConfig prints the effective configuration, each top-level key
// annotated with the layer it came from.
func dumpConfig(w io.Writer, cfg *config.Config) error {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return err
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		key.LineComment = "# " + cfg.Origin(key.Value).String()
	}
	return writeYAML(w, &doc)
}
