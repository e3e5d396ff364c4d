package parseopt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	pwio "github.com/pwkeep/pwkeep/io"
)

// ParseFlags alter how the parser treats non-option tokens and help requests.
type ParseFlags uint8

const (
	// StopAtNonOption ends parsing at the first non-option token; it and
	// everything after it are returned untouched.
	StopAtNonOption ParseFlags = 1 << iota
	// AbortOnNonOption fails with ErrorTypeNonOption on a non-option token.
	AbortOnNonOption
	// OneShot stops after the first token and its value, if any.
	OneShot
	// NoShortHelp disables -h as a help request.
	NoShortHelp
)

// parsedAs records how an option was written on the command line.
type parsedAs uint8

const (
	asLong  parsedAs = 0
	asShort parsedAs = 1 << iota
	asUnset
)

// Parser holds an option table together with its presentation and exit
// settings. A Parser is not safe for concurrent use: Parse writes through the
// destinations bound in the table.
type Parser struct {
	name    string
	options []Option
	usage   []string
	flags   ParseFlags
	prefix  string

	io           *pwio.IOManager
	theme        *pwio.Theme
	render       RenderConfig
	trace        zerolog.Logger
	errorHandler *ErrorHandler
	exitCodes    *ExitCodeManager
	exit         func(int)
}

// New returns a parser for options. An empty name defaults to the base name
// of the running executable. New panics if the table fails Check.
func New(name string, options []Option, usage []string) *Parser {
	if err := Check(options); err != nil {
		panic("parseopt: " + err.Error())
	}
	if name == "" && len(os.Args) > 0 {
		name = filepath.Base(os.Args[0])
	}
	return &Parser{
		name:         name,
		options:      options,
		usage:        usage,
		io:           pwio.New(),
		render:       DefaultRenderConfig(),
		trace:        zerolog.Nop(),
		errorHandler: NewErrorHandler(),
		exitCodes:    newExitCodeManager(),
		exit:         os.Exit,
	}
}

// Parse is the one-call form: it parses args against options with a
// throwaway parser and returns the residual positional arguments.
func Parse(args []string, prefix string, options []Option, usage []string, flags ParseFlags) ([]string, error) {
	return New("", options, usage).WithPrefix(prefix).WithFlags(flags).Parse(args)
}

// Name returns the program name used in diagnostics.
func (p *Parser) Name() string { return p.name }

// WithFlags sets the parse flags and returns the parser for chaining.
func (p *Parser) WithFlags(f ParseFlags) *Parser { p.flags = f; return p }

// WithPrefix sets the directory relative filenames are resolved against.
func (p *Parser) WithPrefix(dir string) *Parser { p.prefix = dir; return p }

// WithIO sets the streams used for help and diagnostics.
func (p *Parser) WithIO(m *pwio.IOManager) *Parser { p.io = m; return p }

// WithTheme overrides the diagnostic colors.
func (p *Parser) WithTheme(t pwio.Theme) *Parser { p.theme = &t; return p }

// WithRender replaces the usage layout.
func (p *Parser) WithRender(cfg RenderConfig) *Parser { p.render = cfg; return p }

// WithLogger sets the logger that receives a debug trace of each parse.
func (p *Parser) WithLogger(l zerolog.Logger) *Parser { p.trace = l; return p }

// WithExit replaces os.Exit in ParseOrExit.
func (p *Parser) WithExit(f func(int)) *Parser { p.exit = f; return p }

// IO returns the parser's stream manager.
func (p *Parser) IO() *pwio.IOManager { return p.io }

// ErrorHandler returns the handler used by Report.
func (p *Parser) ErrorHandler() *ErrorHandler { return p.errorHandler }

// ExitCodes returns the exit code mapping used by Report.
func (p *Parser) ExitCodes() *ExitCodeManager { return p.exitCodes }

// Parse consumes args (without the program name), writing option values
// into their destinations. The residual positional arguments are packed into
// the front of args, in their original order, and returned as a prefix of
// it. A help request prints usage to the output stream and returns
// ErrHelpShown.
//
// Since args is reordered in place, the same slice cannot be parsed a second
// time; pass a copy when the original vector is still needed.
func (p *Parser) Parse(args []string) ([]string, error) {
	ctx := &parseContext{
		p:     p,
		args:  args,
		modes: newModeSet(p.options),
	}
	if err := ctx.run(); err != nil {
		p.trace.Debug().Err(err).Int("pos", ctx.pos).Msg("parse failed")
		return nil, err
	}
	rest := ctx.finish()
	p.trace.Debug().Strs("rest", rest).Msg("parse complete")
	return rest, nil
}

// parseContext is the state of a single Parse call.
type parseContext struct {
	p     *Parser
	args  []string
	pos   int // index of the token being examined
	out   int // number of positionals packed so far
	opt   string
	inl   bool // opt holds an attached value or the rest of a short cluster
	modes *modeSet
}

func (ctx *parseContext) run() error {
	p := ctx.p
	for ctx.pos < len(ctx.args) {
		if p.flags&OneShot != 0 && ctx.pos > 0 {
			return nil
		}
		arg := ctx.args[ctx.pos]

		if len(arg) < 2 || arg[0] != '-' {
			stop, err := ctx.nonOption(arg)
			if err != nil || stop {
				return err
			}
			continue
		}

		if arg == "-h" && len(ctx.args) == 1 && p.flags&NoShortHelp == 0 {
			return p.help(false)
		}

		if arg[1] != '-' {
			p.trace.Debug().Str("token", arg).Msg("short cluster")
			if err := ctx.parseShort(arg); err != nil {
				return err
			}
			ctx.pos++
			continue
		}

		if arg == "--" {
			ctx.pos++
			return nil
		}

		switch arg {
		case "--help-all":
			return p.help(true)
		case "--help":
			return p.help(false)
		}

		p.trace.Debug().Str("token", arg).Msg("long option")
		if err := ctx.parseLong(arg[2:]); err != nil {
			return err
		}
		ctx.pos++
	}
	return nil
}

// finish appends the unparsed tail to the packed positionals.
func (ctx *parseContext) finish() []string {
	n := ctx.out + copy(ctx.args[ctx.out:], ctx.args[ctx.pos:])
	return ctx.args[:n]
}

func (ctx *parseContext) nonOption(arg string) (bool, error) {
	p := ctx.p
	if o := p.findNoDash(arg); o != nil {
		p.trace.Debug().Str("token", arg).Msg("nodash option")
		if err := ctx.getValue(o, asShort); err != nil {
			return true, err
		}
		ctx.pos++
		return false, nil
	}

	switch {
	case p.flags&AbortOnNonOption != 0:
		return true, &ParseError{
			Type:    ErrorTypeNonOption,
			Message: fmt.Sprintf("unexpected non-option argument '%s'", arg),
			Value:   arg,
		}
	case p.flags&StopAtNonOption != 0:
		return true, nil
	}

	p.trace.Debug().Str("token", arg).Msg("positional")
	ctx.args[ctx.out] = arg
	ctx.out++
	ctx.pos++
	return false, nil
}

func (ctx *parseContext) parseShort(arg string) error {
	p := ctx.p
	ctx.setInline(arg[1:])
	first := true
	for ctx.inl {
		r, size := utf8.DecodeRuneInString(ctx.opt)
		o := p.findShort(r)
		if o == nil {
			if r == 'h' && p.flags&NoShortHelp == 0 {
				return p.help(false)
			}
			return unknownSwitch(r, arg)
		}
		ctx.setInline(ctx.opt[size:])
		if err := ctx.getValue(o, asShort); err != nil {
			return err
		}
		if first && ctx.inl && !p.allSwitches(arg[1:]) {
			if err := checkTypos(arg[1:], p.options); err != nil {
				return err
			}
		}
		first = false
	}
	return nil
}

func unknownSwitch(r rune, arg string) *ParseError {
	if r >= utf8.RuneSelf {
		return &ParseError{
			Type:    ErrorTypeUnknownSwitch,
			Message: fmt.Sprintf("unknown non-ascii option in string: '%s'", arg),
			Option:  arg[1:],
		}
	}
	return &ParseError{
		Type:    ErrorTypeUnknownSwitch,
		Message: fmt.Sprintf("unknown switch '%c'", r),
		Option:  string(r),
	}
}

// allSwitches reports whether every character of cluster is a declared
// switch, in which case it cannot be a mistyped long option.
func (p *Parser) allSwitches(cluster string) bool {
	for _, r := range cluster {
		o := p.findShort(r)
		if o == nil || !o.takesNoValue() {
			return false
		}
	}
	return true
}

// checkTypos catches a long option written with a single dash, such as
// -verbose, whose first letter happens to be a valid switch.
func checkTypos(cluster string, options []Option) error {
	if len(cluster) < 3 {
		return nil
	}
	typo := strings.HasPrefix(cluster, "no-")
	for _, o := range visible(options) {
		if o.Kind != KindGroup && strings.HasPrefix(o.Long, cluster) {
			typo = true
			break
		}
	}
	if !typo {
		return nil
	}
	return &ParseError{
		Type:    ErrorTypeDashTypo,
		Message: fmt.Sprintf("did you mean `--%s` (with two dashes)?", cluster),
		Option:  cluster,
	}
}

// getValue assigns o after checking that an attached value is permitted.
func (ctx *parseContext) getValue(o *Option, how parsedAs) error {
	if ctx.inl && (how&asUnset != 0 || (how&asShort == 0 && o.takesNoValue())) {
		return &ParseError{
			Type:    ErrorTypeValueForbidden,
			Message: optName(o, how) + " takes no value",
			Option:  o.nameFor(how),
			Value:   ctx.opt,
		}
	}
	if err := ctx.assign(o, how); err != nil {
		return err
	}
	ctx.p.trace.Debug().
		Str("option", o.nameFor(how)).
		Interface("value", o.dest.snapshot()).
		Msg("assigned")
	if o.has(FlagCmdMode) {
		return ctx.modes.check(o, how)
	}
	return nil
}

func (ctx *parseContext) setInline(s string) {
	ctx.opt = s
	ctx.inl = s != ""
}

func (ctx *parseContext) clearInline() {
	ctx.opt = ""
	ctx.inl = false
}

func (p *Parser) findShort(r rune) *Option {
	for i := range visible(p.options) {
		o := &p.options[i]
		if o.Kind != KindGroup && o.Short == r && !o.has(FlagNoDash) {
			return o
		}
	}
	return nil
}

func (p *Parser) findNoDash(arg string) *Option {
	r, size := utf8.DecodeRuneInString(arg)
	if size != len(arg) || size == 0 {
		return nil
	}
	for i := range visible(p.options) {
		o := &p.options[i]
		if o.has(FlagNoDash) && o.Short == r {
			return o
		}
	}
	return nil
}

func (p *Parser) help(full bool) error {
	if err := p.Usage(p.io.Out(), full); err != nil {
		return err
	}
	return ErrHelpShown
}

// optName renders an option the way diagnostics refer to it:
// "switch 'c'", "option 'no-name'" or "option 'name'".
func optName(o *Option, how parsedAs) string {
	if how&asShort != 0 {
		return fmt.Sprintf("switch '%c'", o.Short)
	}
	return fmt.Sprintf("option '%s'", o.nameFor(how))
}

// nameFor returns the option name as written, without dashes.
func (o *Option) nameFor(how parsedAs) string {
	switch {
	case how&asShort != 0 || o.Long == "":
		return string(o.Short)
	case how&asUnset != 0:
		if positive, ok := strings.CutPrefix(o.Long, "no-"); ok {
			return positive
		}
		return "no-" + o.Long
	default:
		return o.Long
	}
}
