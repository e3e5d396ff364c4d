package main

import (
	"github.com/pwkeep/pwkeep/internal/config"
	"github.com/pwkeep/pwkeep/parseopt"
)

type action int

const (
	actionNone action = iota
	actionCreate
	actionRead
	actionUpdate
	actionDelete
)

func (a action) String() string {
	switch a {
	case actionCreate:
		return "create"
	case actionRead:
		return "read"
	case actionUpdate:
		return "update"
	case actionDelete:
		return "delete"
	default:
		return "none"
	}
}

var usage = []string{
	"pwkeep [<options>] (-c | -r | -u | -d) [<site>...]",
	"pwkeep --dump-config",
}

// cli holds the option destinations. Values loaded from the configuration
// are stored before parsing, so the command line overrides them.
type cli struct {
	mode       int
	sitename   string
	siteurl    string
	username   string
	file       string
	length     uint
	verbose    bool
	noPager    bool
	editor     string
	database   string
	dumpConfig bool

	defaultEditor string
}

func newCLI(cfg *config.Config) *cli {
	return &cli{
		length:        cfg.Length,
		noPager:       !cfg.Pager,
		database:      cfg.Database,
		defaultEditor: cfg.Editor,
	}
}

func (c *cli) options() []parseopt.Option {
	return []parseopt.Option{
		parseopt.Group("Actions"),
		parseopt.CmdMode('c', "create", &c.mode, int(actionCreate), "create a new record"),
		parseopt.CmdMode('r', "read", &c.mode, int(actionRead), "show a record"),
		parseopt.CmdMode('u', "update", &c.mode, int(actionUpdate), "update a record"),
		parseopt.CmdMode('d', "delete", &c.mode, int(actionDelete), "delete a record"),

		parseopt.Group("Record"),
		parseopt.String('s', "sitename", &c.sitename, "name", "name of the site"),
		parseopt.String(0, "siteurl", &c.siteurl, "url", "address of the site"),
		parseopt.String('n', "username", &c.username, "name", "account name on the site"),
		parseopt.Filename('f', "file", &c.file, "path", "read the record from <path>").
			With(parseopt.FlagExistingFile),
		parseopt.Uint('l', "length", &c.length, "n", "length of generated passwords"),

		parseopt.Group("Behaviour"),
		parseopt.Bool('v', "verbose", &c.verbose, "be verbose"),
		parseopt.Bool(0, "no-pager", &c.noPager, "do not pipe output into a pager"),
		parseopt.OptString(0, "editor", &c.editor, c.defaultEditor, "cmd", "edit the record with <cmd>"),
		parseopt.String(0, "database", &c.database, "path", "record database to use"),
		parseopt.Bool(0, "dump-config", &c.dumpConfig, "print the effective configuration").
			With(parseopt.FlagHidden).Without(parseopt.FlagNegatable),
		parseopt.End(),
	}
}

// request is what a successful invocation asks for.
type request struct {
	Action   string   `yaml:"action"`
	Sites    []string `yaml:"sites,omitempty"`
	Sitename string   `yaml:"sitename,omitempty"`
	Siteurl  string   `yaml:"siteurl,omitempty"`
	Username string   `yaml:"username,omitempty"`
	File     string   `yaml:"file,omitempty"`
	Length   uint     `yaml:"length"`
	Verbose  bool     `yaml:"verbose"`
	Pager    bool     `yaml:"pager"`
	Editor   string   `yaml:"editor,omitempty"`
	Database string   `yaml:"database"`
}

// request validates the parsed options against the chosen action.
func (c *cli) request(p *parseopt.Parser, sites []string) (*request, error) {
	a := action(c.mode)
	switch a {
	case actionNone:
		return nil, p.UsageError("no action given")
	case actionCreate, actionUpdate, actionDelete:
		if c.sitename == "" && len(sites) == 0 {
			return nil, p.UsageError("%s needs a site", a)
		}
	case actionRead:
	}
	if a == actionCreate && c.length == 0 {
		return nil, p.UsageError("password length must be positive")
	}

	return &request{
		Action:   a.String(),
		Sites:    sites,
		Sitename: c.sitename,
		Siteurl:  c.siteurl,
		Username: c.username,
		File:     c.file,
		Length:   c.length,
		Verbose:  c.verbose,
		Pager:    !c.noPager,
		Editor:   c.editor,
		Database: c.database,
	}, nil
}
