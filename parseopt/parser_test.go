package parseopt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	pwio "github.com/pwkeep/pwkeep/io"
)

// record is the set of destinations used by most tests.
type record struct {
	mode     int
	sitename string
	siteurl  string
	length   uint
	width    uint8
	file     string
	verbose  bool
	noPager  bool
	editor   string
	quiet    int
	dump     bool
	yes      bool
}

func (r *record) options() []Option {
	return []Option{
		Group("Actions"),
		CmdMode('c', "create", &r.mode, 1, "create a record"),
		CmdMode('r', "read", &r.mode, 2, "read a record"),
		Group("Record"),
		String('s', "sitename", &r.sitename, "name", "site name"),
		String(0, "siteurl", &r.siteurl, "url", "site url"),
		Uint('l', "length", &r.length, "n", "password length"),
		Uint(0, "width", &r.width, "n", "column width"),
		Filename('f', "file", &r.file, "path", "read the record from <path>"),
		Group("Behaviour"),
		Bool('v', "verbose", &r.verbose, "be verbose"),
		Bool(0, "no-pager", &r.noPager, "do not pipe output into a pager"),
		OptString('e', "editor", &r.editor, "vi", "cmd", "edit with <cmd>"),
		SetInt('q', "quiet", &r.quiet, 3, "suppress output"),
		Bool(0, "dump", &r.dump, "dump internal state").With(FlagHidden),
		Bool('y', "", &r.yes, "assume yes").With(FlagNoDash),
		End(),
	}
}

func newTestParser(r *record, out *bytes.Buffer) *Parser {
	iom := pwio.New().NoColor().WithOut(out).WithErr(out)
	return New("pwkeep", r.options(), []string{"pwkeep [<options>] [<site>...]"}).WithIO(iom)
}

func parseRecord(t *testing.T, args ...string) (*record, []string, error) {
	t.Helper()
	r := &record{}
	var out bytes.Buffer
	rest, err := newTestParser(r, &out).Parse(args)
	return r, rest, err
}

func requireParseError(t *testing.T, err error, typ ErrorType) *ParseError {
	t.Helper()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError of type %s, got %v", typ, err)
	}
	if perr.Type != typ {
		t.Fatalf("Expected error type %s, got %s (%s)", typ, perr.Type, perr.Message)
	}
	return perr
}

func TestParsePositionalsKeepOrder(t *testing.T) {
	r, rest, err := parseRecord(t, "alpha", "-v", "beta", "--", "-c", "gamma")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "-c", "gamma"}, rest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}
	if !r.verbose {
		t.Error("Expected verbose=true")
	}
	if r.mode != 0 {
		t.Errorf("Expected -c after -- to stay positional, got mode %d", r.mode)
	}
}

func TestParseReusesArgumentArray(t *testing.T) {
	args := []string{"-v", "alpha", "-q", "beta"}
	r := &record{}
	var out bytes.Buffer
	rest, err := newTestParser(r, &out).Parse(args)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rest) != 2 || &rest[0] != &args[0] {
		t.Fatalf("Expected residuals packed at the front of args, got %v", rest)
	}
	if diff := cmp.Diff([]string{"alpha", "beta"}, rest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyAndDash(t *testing.T) {
	_, rest, err := parseRecord(t)
	if err != nil || len(rest) != 0 {
		t.Fatalf("Expected empty success, got %v, %v", rest, err)
	}

	r, rest, err := parseRecord(t, "-", "-v", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]string{"-", ""}, rest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}
	if !r.verbose {
		t.Error("Expected verbose=true")
	}
}

func TestParseShortClusters(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		sitename string
		verbose  bool
		quiet    int
		rest     []string
	}{
		{"switches", []string{"-vq"}, "", true, 3, []string{}},
		{"attached value", []string{"-sexample"}, "example", false, 0, []string{}},
		{"value after switch", []string{"-vsexample"}, "example", true, 0, []string{}},
		{"value from next token", []string{"-vs", "example", "rest"}, "example", true, 0, []string{"rest"}},
		{"next token starting with dash", []string{"-s", "-v"}, "-v", false, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rest, err := parseRecord(t, tt.args...)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if r.sitename != tt.sitename || r.verbose != tt.verbose || r.quiet != tt.quiet {
				t.Errorf("Expected sitename=%q verbose=%v quiet=%d, got %q %v %d",
					tt.sitename, tt.verbose, tt.quiet, r.sitename, r.verbose, r.quiet)
			}
			if diff := cmp.Diff(tt.rest, rest); diff != "" {
				t.Errorf("residual mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMissingValue(t *testing.T) {
	_, _, err := parseRecord(t, "-s")
	perr := requireParseError(t, err, ErrorTypeMissingValue)
	if perr.Message != "switch 's' requires a value" {
		t.Errorf("Expected short-form message, got %q", perr.Message)
	}

	_, _, err = parseRecord(t, "--sitename")
	perr = requireParseError(t, err, ErrorTypeMissingValue)
	if perr.Message != "option 'sitename' requires a value" {
		t.Errorf("Expected long-form message, got %q", perr.Message)
	}
}

func TestParseUnknownSwitch(t *testing.T) {
	_, _, err := parseRecord(t, "-vx")
	perr := requireParseError(t, err, ErrorTypeUnknownSwitch)
	if perr.Message != "unknown switch 'x'" {
		t.Errorf("Expected unknown switch message, got %q", perr.Message)
	}
	if perr.Option != "x" {
		t.Errorf("Expected option x, got %q", perr.Option)
	}
}

func TestParseHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"-vh"}, {"-v", "-h"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			r := &record{}
			var out bytes.Buffer
			_, err := newTestParser(r, &out).Parse(args)
			if !errors.Is(err, ErrHelpShown) {
				t.Fatalf("Expected ErrHelpShown, got %v", err)
			}
			if !strings.HasPrefix(out.String(), "usage: pwkeep [<options>] [<site>...]\n") {
				t.Errorf("Expected usage on output, got:\n%s", out.String())
			}
			if strings.Contains(out.String(), "--[no-]dump") {
				t.Error("Hidden option listed by plain help")
			}
		})
	}
}

func TestParseHelpAllShowsHidden(t *testing.T) {
	r := &record{}
	var out bytes.Buffer
	_, err := newTestParser(r, &out).Parse([]string{"--help-all"})
	if !errors.Is(err, ErrHelpShown) {
		t.Fatalf("Expected ErrHelpShown, got %v", err)
	}
	if !strings.Contains(out.String(), "--[no-]dump") {
		t.Errorf("Expected hidden option in full help, got:\n%s", out.String())
	}
}

func TestParseNoShortHelp(t *testing.T) {
	r := &record{}
	var out bytes.Buffer
	_, err := newTestParser(r, &out).WithFlags(NoShortHelp).Parse([]string{"-h"})
	requireParseError(t, err, ErrorTypeUnknownSwitch)
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestParseShortHelpWinsOverDeclaredSwitch(t *testing.T) {
	var host bool
	opts := []Option{Bool('h', "host", &host, "use host")}
	var out bytes.Buffer
	p := New("prog", opts, []string{"prog"}).WithIO(pwio.New().NoColor().WithOut(&out))

	if _, err := p.Parse([]string{"-h"}); !errors.Is(err, ErrHelpShown) {
		t.Fatalf("Expected lone -h to request help, got %v", err)
	}
	if _, err := p.Parse([]string{"-h", "x"}); err != nil || !host {
		t.Fatalf("Expected -h among other tokens to set host, got %v (host=%v)", err, host)
	}
}

func TestParseNonOptionPolicies(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		r := &record{}
		var out bytes.Buffer
		rest, err := newTestParser(r, &out).WithFlags(StopAtNonOption).Parse([]string{"-v", "run", "-q"})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if diff := cmp.Diff([]string{"run", "-q"}, rest); diff != "" {
			t.Errorf("residual mismatch (-want +got):\n%s", diff)
		}
		if r.quiet != 0 {
			t.Errorf("Expected -q after stop to be untouched, got quiet=%d", r.quiet)
		}
	})

	t.Run("abort", func(t *testing.T) {
		r := &record{}
		var out bytes.Buffer
		_, err := newTestParser(r, &out).WithFlags(AbortOnNonOption).Parse([]string{"-v", "run"})
		perr := requireParseError(t, err, ErrorTypeNonOption)
		if perr.Value != "run" {
			t.Errorf("Expected value run, got %q", perr.Value)
		}
	})
}

func TestParseOneShot(t *testing.T) {
	tests := []struct {
		name string
		args []string
		rest []string
	}{
		{"switch", []string{"-v", "-q", "x"}, []string{"-q", "x"}},
		{"option with value", []string{"-s", "example", "-q"}, []string{"-q"}},
		{"positional", []string{"x", "-q"}, []string{"x", "-q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &record{}
			var out bytes.Buffer
			rest, err := newTestParser(r, &out).WithFlags(OneShot).Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(tt.rest, rest); diff != "" {
				t.Errorf("residual mismatch (-want +got):\n%s", diff)
			}
			if r.quiet != 0 {
				t.Errorf("Expected quiet untouched, got %d", r.quiet)
			}
		})
	}
}

func TestParseNoDash(t *testing.T) {
	r, rest, err := parseRecord(t, "y", "yes")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !r.yes {
		t.Error("Expected bare y to set the option")
	}
	if diff := cmp.Diff([]string{"yes"}, rest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}

	_, _, err = parseRecord(t, "-y")
	requireParseError(t, err, ErrorTypeUnknownSwitch)
}

func TestParseDashTypo(t *testing.T) {
	_, _, err := parseRecord(t, "-verbose")
	perr := requireParseError(t, err, ErrorTypeDashTypo)
	if perr.Message != "did you mean `--verbose` (with two dashes)?" {
		t.Errorf("Unexpected message %q", perr.Message)
	}

	r, _, err := parseRecord(t, "-vq")
	if err != nil || !r.verbose || r.quiet != 3 {
		t.Errorf("Short cluster misread as typo: %v", err)
	}
}

func TestParseSwitchClusterSpellingLongName(t *testing.T) {
	var verbose, extended, recursive bool
	opts := []Option{
		Bool('v', "verbose", &verbose, ""),
		Bool('e', "extended", &extended, ""),
		Bool('r', "recursive", &recursive, ""),
	}
	var out bytes.Buffer
	iom := pwio.New().NoColor().WithOut(&out).WithErr(&out)

	if _, err := New("prog", opts, nil).WithIO(iom).Parse([]string{"-ver"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !verbose || !extended || !recursive {
		t.Errorf("Expected all three switches set, got %v %v %v", verbose, extended, recursive)
	}

	_, err := New("prog", opts, nil).WithIO(iom).Parse([]string{"-verb"})
	perr := requireParseError(t, err, ErrorTypeDashTypo)
	if perr.Option != "verb" {
		t.Errorf("Expected typo for verb, got %q", perr.Option)
	}
}

func TestParseIdempotentRepeats(t *testing.T) {
	r, _, err := parseRecord(t, "-v", "-v", "--verbose", "-c", "--create", "--cr")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !r.verbose || r.mode != 1 {
		t.Errorf("Expected verbose=true mode=1, got %v %d", r.verbose, r.mode)
	}
}

func TestParseSameVectorTwice(t *testing.T) {
	vector := []string{"a", "--verbose", "b", "-s", "x", "c"}
	parse := func() (record, []string) {
		t.Helper()
		r := &record{}
		var out bytes.Buffer
		rest, err := newTestParser(r, &out).Parse(append([]string(nil), vector...))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		return *r, rest
	}

	first, firstRest := parse()
	second, secondRest := parse()
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("destinations differ between parses (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstRest, secondRest); diff != "" {
		t.Errorf("residuals differ between parses (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, firstRest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}
	if !first.verbose || first.sitename != "x" {
		t.Errorf("Expected verbose and sitename=x, got %v %q", first.verbose, first.sitename)
	}
}

func TestParseLastValueWins(t *testing.T) {
	r, _, err := parseRecord(t, "-s", "one", "--sitename=two", "--no-verbose", "-v")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.sitename != "two" || !r.verbose {
		t.Errorf("Expected sitename=two verbose=true, got %q %v", r.sitename, r.verbose)
	}
}

func TestParseOptionalArgument(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		editor string
		rest   []string
	}{
		{"default", []string{"--editor"}, "vi", []string{}},
		{"inline", []string{"--editor=nano"}, "nano", []string{}},
		{"inline empty", []string{"--editor="}, "", []string{}},
		{"never the next token", []string{"--editor", "nano"}, "vi", []string{"nano"}},
		{"short attached", []string{"-enano"}, "nano", []string{}},
		{"short detached", []string{"-e", "nano"}, "vi", []string{"nano"}},
		{"negated", []string{"--editor=nano", "--no-editor"}, "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rest, err := parseRecord(t, tt.args...)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if r.editor != tt.editor {
				t.Errorf("Expected editor=%q, got %q", tt.editor, r.editor)
			}
			if diff := cmp.Diff(tt.rest, rest); diff != "" {
				t.Errorf("residual mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTraceLogging(t *testing.T) {
	r := &record{}
	var out, trace bytes.Buffer
	p := newTestParser(r, &out).WithLogger(zerolog.New(&trace).Level(zerolog.DebugLevel))
	if _, err := p.Parse([]string{"--verbose", "site"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, want := range []string{`"option":"verbose"`, `"message":"assigned"`, `"message":"parse complete"`} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("Expected trace to contain %s, got:\n%s", want, trace.String())
		}
	}
}

func TestPackageParse(t *testing.T) {
	var name string
	var verbose bool
	opts := []Option{
		Filename('f', "file", &name, "path", "input"),
		Bool('v', "verbose", &verbose, "be verbose"),
	}
	rest, err := Parse([]string{"-f", "in.txt", "x", "-v"}, "/work", opts, nil, 0)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if name != "/work/in.txt" || !verbose {
		t.Errorf("Expected /work/in.txt and verbose, got %q %v", name, verbose)
	}
	if diff := cmp.Diff([]string{"x"}, rest); diff != "" {
		t.Errorf("residual mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	var b bool
	var s string
	var n uint
	tests := []struct {
		name string
		opts []Option
		ok   bool
	}{
		{"valid", []Option{Bool('a', "all", &b, ""), String('n', "name", &s, "", ""), End()}, true},
		{"entries after end ignored", []Option{Bool('a', "all", &b, ""), End(), Bool('a', "all", &b, "")}, true},
		{"duplicate short", []Option{Bool('a', "all", &b, ""), String('a', "name", &s, "", "")}, false},
		{"duplicate long", []Option{Bool('a', "all", &b, ""), Bool('b', "all", &b, "")}, false},
		{"nameless", []Option{Bool(0, "", &b, "")}, false},
		{"no destination", []Option{{Kind: KindSwitch, Long: "x"}}, false},
		{"dash short", []Option{Bool('-', "x", &b, "")}, false},
		{"nodash with long", []Option{Bool('a', "all", &b, "").With(FlagNoDash)}, false},
		{"optarg and noarg", []Option{OptString(0, "x", &s, "", "", "").With(FlagNoArg)}, false},
		{"noarg on string", []Option{String(0, "x", &s, "", "").With(FlagNoArg)}, false},
		{"noarg on uint", []Option{Uint(0, "x", &n, "", "").With(FlagNoArg)}, false},
		{"noarg on switch", []Option{Bool('a', "all", &b, "").With(FlagNoArg)}, true},
		{"nil bool pointer", []Option{Bool('v', "verbose", nil, "")}, false},
		{"nil string pointer", []Option{Filename('f', "file", nil, "", "")}, false},
		{"nil uint pointer", []Option{Uint[uint](0, "length", nil, "", "")}, false},
		{"nil cmdmode pointer", []Option{CmdMode('c', "create", nil, 1, "")}, false},
		{"existing-file on string", []Option{String(0, "x", &s, "", "").With(FlagExistingFile)}, false},
		{"cmdmode on string", []Option{String(0, "x", &s, "", "").With(FlagCmdMode)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.opts)
			if (err == nil) != tt.ok {
				t.Errorf("Check() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestNewPanicsOnMalformedTable(t *testing.T) {
	var b bool
	defer func() {
		if recover() == nil {
			t.Error("Expected New to panic on a duplicate short name")
		}
	}()
	New("prog", []Option{Bool('a', "all", &b, ""), Bool('a', "any", &b, "")}, nil)
}

func TestNewPanicsOnNilDestination(t *testing.T) {
	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, `option "verbose" has no destination`) {
			t.Errorf("Expected a destination panic, got %q", msg)
		}
	}()
	New("prog", []Option{Bool('v', "verbose", nil, "")}, nil)
}
