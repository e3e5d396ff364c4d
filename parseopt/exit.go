package parseopt

import (
	"errors"
	"fmt"
	"reflect"

	pwio "github.com/pwkeep/pwkeep/io"
)

// ExitError requests a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds the codes used when no specific mapping matches.
type ExitCodeDefaults struct {
	Success      int // default: 0
	Help         int // default: 0
	GeneralError int // default: 1
	UsageError   int // default: 129
	FatalError   int // default: 128
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, Help: 0, GeneralError: 1, UsageError: 129, FatalError: 128}
}

// ExitCodeManager maps parse outcomes to process exit codes.
type ExitCodeManager struct {
	codesByType  map[reflect.Type]int
	codesByParse map[ErrorType]int
	defaults     ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	return &ExitCodeManager{
		codesByType:  make(map[reflect.Type]int),
		codesByParse: make(map[ErrorType]int),
		defaults:     defaultExitDefaults(),
	}
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. It is consulted after ExitError and parse error categories.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

// DefineType overrides the exit code for one parse error category.
func (e *ExitCodeManager) DefineType(typ ErrorType, code int) *ExitCodeManager {
	e.codesByParse[typ] = code
	return e
}

// Default replaces the manager's default codes.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager { e.defaults = d; return e }

// Defaults returns the manager's default codes.
func (e *ExitCodeManager) Defaults() ExitCodeDefaults { return e.defaults }

// resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. help request
//  3. FatalError
//  4. ParseError category mapping (DefineType), else the usage code
//  5. Concrete error type mapping (DefineError)
//  6. GeneralError
func (e *ExitCodeManager) resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, ErrHelpShown) {
		return e.defaults.Help
	}

	var fatal *FatalError
	if errors.As(err, &fatal) {
		return e.defaults.FatalError
	}

	var perr *ParseError
	if errors.As(err, &perr) {
		if code, ok := e.codesByParse[perr.Type]; ok {
			return code
		}
		return e.defaults.UsageError
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}
	return e.defaults.GeneralError
}

// Report prints the diagnostic for err, prefixed with the program name, to
// the error stream and returns the exit code for it. Usage follows the
// message for error types the ErrorHandler selects. A nil error or a help
// request prints nothing.
func (p *Parser) Report(err error) int {
	if err == nil || errors.Is(err, ErrHelpShown) {
		return p.exitCodes.resolve(err)
	}

	log := p.Diagnostics()

	var fatal *FatalError
	var perr *ParseError
	switch {
	case errors.As(err, &fatal):
		log.Fatal("%s", fatal.Message)
	case errors.As(err, &perr):
		perr = p.errorHandler.ProcessError(perr, p.options)
		log.Error("%s", perr.Message)
		for _, s := range perr.Suggestions {
			log.Hint("%s", s)
		}
		if p.errorHandler.usageFor(perr) {
			_ = p.Usage(p.io.Err(), false)
		}
	default:
		log.Error("%s", err)
	}
	return p.exitCodes.resolve(err)
}

// Diagnostics returns a logger that writes "<program>: <level>: ..." lines
// to the parser's error stream.
func (p *Parser) Diagnostics() *pwio.Logger {
	log := pwio.NewLogger(p.io).WithProgram(p.name)
	if p.theme != nil {
		log.WithTheme(pwio.DefaultTheme(p.io).Merge(*p.theme))
	}
	return log
}

// UsageError returns a usage error for an invocation the option table
// accepts but the program does not. Report prints it followed by the usage.
func (p *Parser) UsageError(format string, args ...any) *ParseError {
	return NewParseError(ErrorTypeUsage, fmt.Sprintf(format, args...))
}

// ParseOrExit parses args and returns the positionals. On any other outcome
// it reports and exits: 0 after help, 129 for usage errors, 128 for fatal
// errors.
func (p *Parser) ParseOrExit(args []string) []string {
	rest, err := p.Parse(args)
	if err == nil {
		return rest
	}
	p.exit(p.Report(err))
	return nil
}
